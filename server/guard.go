package server

import (
	"net/http"

	"github.com/jrsteele09/go-qr-portal/navigator"
	"github.com/rs/zerolog"
)

// resolveView runs the full session check for a page. When the user does not
// belong on view the redirect has been written and ok is false.
func (s *Server) resolveView(w http.ResponseWriter, r *http.Request, view navigator.ViewState) (res navigator.Resolution, token string, ok bool) {
	token = s.sessionToken(r)
	res = s.resolver.Resolve(r.Context(), token)

	// A cookie the API no longer accepts would send the edge filter and the
	// resolver round in circles, so it goes.
	if !res.Authenticated() && token != "" {
		zerolog.Ctx(r.Context()).Debug().Err(res.Err).Str("view", view.String()).Msg("Session not confirmed")
		s.endSession(w, r, token)
		token = ""
	}

	target, stay := navigator.Decide(view, res)
	if !stay {
		redirectSuccess(w, r, target.Path())
		return res, token, false
	}
	return res, token, true
}

// endSession drops the session context and the browser cookie.
func (s *Server) endSession(w http.ResponseWriter, r *http.Request, token string) {
	if err := s.sessions.Forget(token); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("No session context to clear")
	}
	s.ClearSessionCookie(w, r)
}
