package config

import (
	"strings"
	"time"
)

const (
	APIURLEnvVar     = "API_URL"
	APITimeoutEnvVar = "API_TIMEOUT"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIURL returns the base URL of the Auth/QR API without a trailing slash.
func (API) GetAPIURL() string {
	return strings.TrimRight(GetEnv(APIURLEnvVar, "http://localhost:4000"), "/")
}

func (API) GetAPITimeout() time.Duration {
	return GetEnvDuration(APITimeoutEnvVar, 10*time.Second)
}
