package config

type SecurityConfig interface {
	GetEdgeJWTSecret() string
	GetSecureCookies() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetEdgeJWTSecret enables signature and expiry checks in the edge filter.
// Empty means presence-only.
func (Security) GetEdgeJWTSecret() string {
	return GetEnv("EDGE_JWT_SECRET", "")
}

func (Security) GetSecureCookies() bool {
	return GetEnv("SECURE_COOKIES", "false") == "true"
}
