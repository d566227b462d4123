package qrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
)

// API endpoint paths
const (
	PathLogin          = "/api/auth/login"
	PathMe             = "/api/auth/me"
	PathChangePassword = "/api/auth/change-password"
	PathLogout         = "/api/auth/logout"
	PathQRs            = "/api/qrs"
	PathUpload         = "/api/upload/logo"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 * 1024

// User is the authenticated user as reported by the API.
type User struct {
	Email              string `json:"email"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

type userEnvelope struct {
	User *User `json:"user"`
}

// APIError is a non-2xx response. It unwraps to the taxonomy error of the
// endpoint that produced it.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.StatusCode)
	}
	return fmt.Sprintf("api status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// NewAPIError builds the error for a non-2xx response. kind is the taxonomy
// error it unwraps to.
func NewAPIError(statusCode int, message string, kind error) *APIError {
	return &APIError{StatusCode: statusCode, Message: message, kind: kind}
}

// MessageOf returns the server-provided message carried by err, or fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if apperrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Client talks to the Auth/QR API on behalf of a browser session. The
// session token travels as a cookie on every call.
type Client struct {
	baseURL    string
	cookieName string
	httpClient *http.Client
}

// New creates a client with a request timeout. Timeouts surface as ErrNetwork.
func New(baseURL, cookieName string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, cookieName, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL, cookieName string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		cookieName: cookieName,
		httpClient: httpClient,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrNetwork, "[qrapi] building %s %s: %v", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: token})
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path, token string, payload any) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("[qrapi] encoding %s body: %w", path, err)
	}
	req, err := c.newRequest(ctx, method, path, token, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends req. A 2xx response is returned open for the caller to read and
// close. Anything else is closed here and turned into an error of kind,
// except that a 5xx from an auth endpoint is a server error, not a rejection.
func (c *Client) do(req *http.Request, kind error) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrNetwork, "[qrapi] %s %s: %v", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 && apperrors.Is(kind, apperrors.ErrAuth) {
		kind = apperrors.ErrServer
	}
	apiErr := NewAPIError(resp.StatusCode, "", kind)
	var body struct {
		Message string `json:"message"`
	}
	if data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); err == nil {
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.Message
		}
	}
	return nil, apiErr
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return apperrors.Wrapf(apperrors.ErrServer, "[qrapi] decoding %s response: %v", resp.Request.URL.Path, err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}
