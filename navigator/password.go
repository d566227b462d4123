package navigator

import (
	"context"
	"fmt"
	"time"
	"unicode/utf16"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
	"github.com/rs/zerolog/log"
)

var (
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", apperrors.ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password too short", apperrors.ErrValidation)
)

// PasswordChanger is the Auth Service's change-password call.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, token, newPassword string) error
}

// PasswordChangeRecorder flips the session's must-change flag once the API
// has accepted a new password.
type PasswordChangeRecorder interface {
	PasswordChanged(token string) error
}

// ChangePasswordOutcome tells the caller what to show. On success the
// navigation to Target must wait for Delay.
type ChangePasswordOutcome struct {
	Changed bool
	Target  ViewState
	Delay   time.Duration
	Err     error
}

type ChangePasswordFlow struct {
	api       PasswordChanger
	sessions  PasswordChangeRecorder
	minLength int
	delay     time.Duration
}

func NewChangePasswordFlow(api PasswordChanger, sessions PasswordChangeRecorder, minLength int, delay time.Duration) *ChangePasswordFlow {
	return &ChangePasswordFlow{api: api, sessions: sessions, minLength: minLength, delay: delay}
}

// Validate applies the local preconditions. Mismatch is reported before length.
func (f *ChangePasswordFlow) Validate(newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if passwordLength(newPassword) < f.minLength {
		return ErrPasswordTooShort
	}
	return nil
}

// passwordLength counts UTF-16 code units, the unit a browser's minlength
// check uses, so the form and the server agree.
func passwordLength(password string) int {
	return len(utf16.Encode([]rune(password)))
}

func (f *ChangePasswordFlow) Submit(ctx context.Context, token, newPassword, confirm string) ChangePasswordOutcome {
	if err := f.Validate(newPassword, confirm); err != nil {
		return ChangePasswordOutcome{Target: ViewChangePassword, Err: err}
	}
	if err := f.api.ChangePassword(ctx, token, newPassword); err != nil {
		return ChangePasswordOutcome{Target: ViewChangePassword, Err: err}
	}
	if err := f.sessions.PasswordChanged(token); err != nil {
		log.Warn().Err(err).Msg("Password changed but session context not updated")
	}
	return ChangePasswordOutcome{Changed: true, Target: ViewDashboard, Delay: f.delay}
}

func (f *ChangePasswordFlow) MinLength() int {
	return f.minLength
}
