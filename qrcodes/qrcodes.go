package qrcodes

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
)

// QR is a generated QR-code record as returned by the API.
type QR struct {
	ID          string    `json:"_id"`
	URL         string    `json:"url"`         // Rendered QR image
	ResourceURL string    `json:"resourceUrl"` // What the code points at
	LogoURL     *string   `json:"logoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// createdAtLayouts are the date forms the API has been seen to send.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON accepts any createdAt the API sends. A date that cannot be
// read is left zero rather than failing the whole record.
func (q *QR) UnmarshalJSON(data []byte) error {
	type plain QR
	aux := struct {
		*plain
		CreatedAt json.RawMessage `json:"createdAt"`
	}{plain: (*plain)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	q.CreatedAt = parseCreatedAt(aux.CreatedAt)
	return nil
}

func parseCreatedAt(raw json.RawMessage) time.Time {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		for _, layout := range createdAtLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(text)); err == nil {
				return t
			}
		}
		return time.Time{}
	}
	// Epoch milliseconds
	var millis float64
	if err := json.Unmarshal(raw, &millis); err == nil {
		return time.UnixMilli(int64(millis)).UTC()
	}
	return time.Time{}
}

// CreateRequest is the body sent to create a QR record. URL is left empty,
// the API fills it in once the image is rendered.
type CreateRequest struct {
	URL         string  `json:"url"`
	ResourceURL string  `json:"resourceUrl"`
	LogoURL     *string `json:"logoUrl"`
}

var (
	ErrMissingURL = fmt.Errorf("%w: missing URL", apperrors.ErrValidation)
	ErrInvalidURL = fmt.Errorf("%w: invalid URL", apperrors.ErrValidation)
)

// ValidateTargetURL checks the URL a QR code will point at. It has to be an
// absolute URL: a scheme plus either a host or an opaque part.
func ValidateTargetURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrMissingURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme == "" || (u.Host == "" && u.Opaque == "" && u.Path == "") {
		return ErrInvalidURL
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// UploadKind distinguishes the two files the dashboard accepts.
type UploadKind string

const (
	UploadDocument UploadKind = "document"
	UploadLogo     UploadKind = "logo"
)

// UploadRule limits what may be uploaded for a kind.
type UploadRule struct {
	Kind         UploadKind
	AllowedTypes []string
	MaxSize      int64
}

var (
	ErrUnsupportedType = fmt.Errorf("%w: unsupported file type", apperrors.ErrValidation)
	ErrFileTooLarge    = fmt.Errorf("%w: file too large", apperrors.ErrValidation)
	ErrNoFile          = fmt.Errorf("%w: no file selected", apperrors.ErrValidation)
)

// Check validates a file's declared content type and size.
func (r UploadRule) Check(contentType string, size int64) error {
	if size <= 0 {
		return ErrNoFile
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	if !slices.Contains(r.AllowedTypes, strings.TrimSpace(strings.ToLower(mediaType))) {
		return ErrUnsupportedType
	}
	if size > r.MaxSize {
		return ErrFileTooLarge
	}
	return nil
}
