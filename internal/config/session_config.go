package config

import "time"

type SessionConfig interface {
	GetSessionCookieName() string
	GetMaxSessionAge() time.Duration
	GetPasswordMinLength() int
	GetPasswordChangedRedirectDelay() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionCookieName is the cookie the API issues and the edge filter inspects.
func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE", "token")
}

func (Session) GetMaxSessionAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 24*time.Hour)
}

func (Session) GetPasswordMinLength() int {
	return GetEnvInt("PASSWORD_MIN_LENGTH", 8)
}

func (Session) GetPasswordChangedRedirectDelay() time.Duration {
	return GetEnvDuration("PASSWORD_CHANGED_REDIRECT_DELAY", 1500*time.Millisecond)
}
