package navigator

import (
	"context"

	apperrors "github.com/jrsteele09/go-qr-portal/internal/errors"
	"github.com/jrsteele09/go-qr-portal/qrapi"
	"github.com/jrsteele09/go-qr-portal/sessionctx"
	"github.com/rs/zerolog/log"
)

// WhoAmI is the Auth Service's "who am I" call.
type WhoAmI interface {
	Me(ctx context.Context, token string) (*qrapi.User, error)
}

// SessionContext is the portal's per-session record of the confirmed user.
type SessionContext interface {
	Remember(token, email string, mustChangePassword bool) (sessionctx.Session, error)
	Forget(token string) error
}

// Resolution is the outcome of asking the Auth Service who a token belongs to.
type Resolution struct {
	User *qrapi.User
	Err  error
}

func (r Resolution) Authenticated() bool {
	return r.Err == nil && r.User != nil
}

// Resolver performs the full session check for a page render.
type Resolver struct {
	api      WhoAmI
	sessions SessionContext
}

func NewResolver(api WhoAmI, sessions SessionContext) *Resolver {
	return &Resolver{api: api, sessions: sessions}
}

// Resolve issues one "who am I" call. Without a token there is nothing to ask
// about and the result is unauthenticated. A confirmed user refreshes the
// session context.
func (r *Resolver) Resolve(ctx context.Context, token string) Resolution {
	if token == "" {
		return Resolution{Err: apperrors.ErrUnauthenticated}
	}
	user, err := r.api.Me(ctx, token)
	if err != nil {
		return Resolution{Err: err}
	}
	if _, err := r.sessions.Remember(token, user.Email, user.MustChangePassword); err != nil {
		log.Warn().Err(err).Msg("Failed to refresh session context")
	}
	return Resolution{User: user}
}

// Decide says whether a user rendering view may stay on it. When they may
// not, it returns the view to redirect to.
func Decide(view ViewState, res Resolution) (target ViewState, stay bool) {
	if !res.Authenticated() {
		if view == ViewLogin {
			return ViewLogin, true
		}
		return ViewLogin, false
	}
	target = TargetFor(res.User)
	return target, target == view
}
