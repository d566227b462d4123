package navigator

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
	"github.com/jrsteele09/go-qr-portal/qrapi"
	"github.com/rs/zerolog/log"
)

// LoginStage is where a login attempt ended up.
type LoginStage int

const (
	LoginIdle LoginStage = iota
	LoginSubmitting
	LoginSucceeded
	LoginFailed
)

func (s LoginStage) String() string {
	switch s {
	case LoginIdle:
		return "idle"
	case LoginSubmitting:
		return "submitting"
	case LoginSucceeded:
		return "succeeded"
	case LoginFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrMissingCredentials is returned before any request when e-mail or
// password is blank.
var ErrMissingCredentials = fmt.Errorf("%w: email and password are required", apperrors.ErrValidation)

// Authenticator is the part of the Auth Service the login flow needs.
type Authenticator interface {
	WhoAmI
	Login(ctx context.Context, email, password string) (*qrapi.LoginResult, error)
}

// LoginOutcome is the result of one submission. Token and Target are only set
// when the stage is LoginSucceeded.
type LoginOutcome struct {
	Stage  LoginStage
	Target ViewState
	Token  string
	User   *qrapi.User
	Err    error
}

// LoginFlow runs login then confirms the session with "who am I" before
// deciding where to navigate.
type LoginFlow struct {
	api      Authenticator
	sessions SessionContext
}

func NewLoginFlow(api Authenticator, sessions SessionContext) *LoginFlow {
	return &LoginFlow{api: api, sessions: sessions}
}

func failed(err error) LoginOutcome {
	return LoginOutcome{Stage: LoginFailed, Target: ViewLogin, Err: err}
}

// Submit runs one login attempt to completion. The caller must not navigate
// unless the outcome stage is LoginSucceeded.
func (f *LoginFlow) Submit(ctx context.Context, email, password string) LoginOutcome {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return failed(ErrMissingCredentials)
	}

	result, err := f.api.Login(ctx, email, password)
	if err != nil {
		return failed(err)
	}

	if result.Token != "" {
		if _, err := f.sessions.Remember(result.Token, result.User.Email, result.User.MustChangePassword); err != nil {
			log.Warn().Err(err).Msg("Failed to cache display email")
		}
	}

	confirmed, err := f.confirm(ctx, result.Token)
	if err != nil {
		if forgetErr := f.sessions.Forget(result.Token); forgetErr != nil {
			log.Warn().Err(forgetErr).Msg("Failed to clear unconfirmed session")
		}
		return failed(fmt.Errorf("%w: %w", apperrors.ErrSessionInconsistency, err))
	}

	if _, err := f.sessions.Remember(result.Token, confirmed.Email, confirmed.MustChangePassword); err != nil {
		log.Warn().Err(err).Msg("Failed to refresh session context")
	}
	return LoginOutcome{
		Stage:  LoginSucceeded,
		Target: TargetFor(confirmed),
		Token:  result.Token,
		User:   confirmed,
	}
}

func (f *LoginFlow) confirm(ctx context.Context, token string) (*qrapi.User, error) {
	if token == "" {
		return nil, fmt.Errorf("login response carried no session cookie")
	}
	return f.api.Me(ctx, token)
}
