package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	UploadConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

// APIConfig describes how the portal reaches the remote Auth/QR API.
type APIConfig interface {
	GetAPIURL() string
	GetAPITimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	Session
	Upload
	Security
}

func New() Config {
	return mainConfig{}
}
