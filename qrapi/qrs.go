package qrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
	"github.com/jrsteele09/go-qr-portal/qrcodes"
)

// ListQRs returns the session's QR records. The API answers either with a
// bare array or with {"qrs": [...]}; any other shape is an empty list. A
// list of the right shape whose records cannot be decoded is a server error.
func (c *Client) ListQRs(ctx context.Context, token string) ([]qrcodes.QR, error) {
	req, err := c.newRequest(ctx, http.MethodGet, PathQRs, token, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, apperrors.ErrServer)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := decodeJSON(resp, &raw); err != nil {
		return nil, err
	}

	if isJSONObject(raw) {
		var wrapped struct {
			QRs json.RawMessage `json:"qrs"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrServer, "[qrapi] decoding QR list: %v", err)
		}
		raw = wrapped.QRs
	}
	if !isJSONArray(raw) {
		return []qrcodes.QR{}, nil
	}

	var list []qrcodes.QR
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrServer, "[qrapi] decoding QR list: %v", err)
	}
	return nonNil(list), nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func nonNil(list []qrcodes.QR) []qrcodes.QR {
	if list == nil {
		return []qrcodes.QR{}
	}
	return list
}

func (c *Client) CreateQR(ctx context.Context, token string, create qrcodes.CreateRequest) (*qrcodes.QR, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, PathQRs, token, create)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, apperrors.ErrServer)
	if err != nil {
		return nil, err
	}
	var qr qrcodes.QR
	if err := decodeJSON(resp, &qr); err != nil {
		return nil, err
	}
	return &qr, nil
}

func (c *Client) DeleteQR(ctx context.Context, token, id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing QR id", apperrors.ErrValidation)
	}
	req, err := c.newRequest(ctx, http.MethodDelete, PathQRs+"/"+url.PathEscape(id), token, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req, apperrors.ErrServer)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Upload sends a file as multipart field "image" and returns the URL the API
// stored it under.
func (c *Client) Upload(ctx context.Context, token, filename, contentType string, file io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("[qrapi] creating upload part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("[qrapi] copying upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("[qrapi] closing upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, PathUpload, token, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req, apperrors.ErrServer)
	if err != nil {
		return "", err
	}
	var uploaded struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(resp, &uploaded); err != nil {
		return "", err
	}
	if uploaded.URL == "" {
		return "", apperrors.Wrapf(apperrors.ErrServer, "[qrapi] upload response without url")
	}
	return uploaded.URL, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
