package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the portal. Every failure surfaced to a user wraps one
// of these.
var (
	// Client-side checks that never reach the network
	ErrValidation = errors.New("validation failed")

	// 4xx from login or change-password
	ErrAuth = errors.New("authentication failed")

	// Login succeeded but the follow-up "who am I" did not
	ErrSessionInconsistency = errors.New("session could not be established")

	// The request could not be sent or no response arrived in time
	ErrNetwork = errors.New("network error")

	// Non-2xx from the QR or upload endpoints
	ErrServer = errors.New("server error")

	// Session errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
