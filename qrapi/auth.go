package qrapi

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
)

// LoginResult is a successful login. Token is the session cookie the API set,
// empty when the response carried none.
type LoginResult struct {
	User  User
	Token string
}

// Login posts credentials. Rejected credentials come back as an *APIError
// wrapping ErrAuth.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, PathLogin, "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, apperrors.ErrAuth)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == c.cookieName && cookie.Value != "" {
			result.Token = cookie.Value
		}
	}

	var env userEnvelope
	if err := decodeJSON(resp, &env); err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, apperrors.Wrapf(apperrors.ErrServer, "[qrapi] login response without user")
	}
	result.User = *env.User
	return result, nil
}

// Me asks the API who the session belongs to.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, PathMe, token, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, apperrors.ErrUnauthenticated)
	if err != nil {
		return nil, err
	}
	var env userEnvelope
	if err := decodeJSON(resp, &env); err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthenticated, "[qrapi] me response without user")
	}
	return env.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, token, newPassword string) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, PathChangePassword, token, map[string]string{
		"newPassword": newPassword,
	})
	if err != nil {
		return err
	}
	resp, err := c.do(req, apperrors.ErrAuth)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, PathLogout, token, nil)
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
