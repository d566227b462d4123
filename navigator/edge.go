package navigator

import (
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// EdgeDecision is the edge filter's verdict for a request.
type EdgeDecision struct {
	Allow      bool
	RedirectTo string
}

var allow = EdgeDecision{Allow: true}

func redirectTo(path string) EdgeDecision {
	return EdgeDecision{RedirectTo: path}
}

// EdgeMatches reports whether the edge filter applies to path.
func EdgeMatches(path string) bool {
	return path == PathRoot || path == PathLogin || isDashboardPath(path)
}

func isDashboardPath(path string) bool {
	return path == PathDashboard || strings.HasPrefix(path, PathDashboard+"/")
}

// EdgeFilter decides, from token presence alone, whether a page may be served.
// It is a total function over the matched paths; other paths are allowed.
func EdgeFilter(path string, tokenPresent bool) EdgeDecision {
	switch {
	case isDashboardPath(path):
		if !tokenPresent {
			return redirectTo(PathLogin)
		}
		return allow
	case path == PathLogin:
		if tokenPresent {
			return redirectTo(PathDashboard)
		}
		return allow
	case path == PathRoot:
		if tokenPresent {
			return redirectTo(PathDashboard)
		}
		return redirectTo(PathLogin)
	default:
		return allow
	}
}

// TokenChecker decides whether a cookie value counts as a present token at the
// edge. Implementations must not call the Auth Service; that is the
// resolver's job.
type TokenChecker interface {
	Present(token string) bool
}

// PresenceChecker treats any non-empty value as present.
type PresenceChecker struct{}

func (PresenceChecker) Present(token string) bool {
	return token != ""
}

// SignedTokenChecker verifies an HS256 signature and expiry locally.
// Tokens that fail verification are treated as absent.
type SignedTokenChecker struct {
	secret []byte
}

func NewSignedTokenChecker(secret string) *SignedTokenChecker {
	return &SignedTokenChecker{secret: []byte(secret)}
}

func (c *SignedTokenChecker) Present(token string) bool {
	if token == "" {
		return false
	}
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		return c.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithExpirationRequired())
	return err == nil && parsed.Valid
}

// NewTokenChecker returns the signed checker when a secret is configured and
// the presence checker otherwise.
func NewTokenChecker(secret string) TokenChecker {
	if secret == "" {
		return PresenceChecker{}
	}
	return NewSignedTokenChecker(secret)
}
