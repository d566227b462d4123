package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/jrsteele09/go-qr-portal/navigator"
	"github.com/rs/zerolog"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Email string // Preserve email on error
}

// ChangePasswordPageData is the change-password form model.
type ChangePasswordPageData struct {
	Email     string
	MinLength int
}

// PasswordChangedPageData drives the delayed hop to the dashboard.
type PasswordChangedPageData struct {
	Target string
	Delay  time.Duration
}

// IndexHandler only runs if the edge filter lets "/" through, which it never
// does; it repeats the filter's answer.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision := navigator.EdgeFilter(RouteIndex, s.edgeTokens.Present(s.sessionToken(r)))
		redirectSuccess(w, r, decision.RedirectTo)
	}
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := s.resolveView(w, r, navigator.ViewLogin); !ok {
			return
		}
		data := s.pageData(r, "Sign in", LoginPageData{Email: r.URL.Query().Get(queryEmail)})
		render(w, r, tmpl, http.StatusOK, data)
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		email := r.FormValue("email")

		outcome := s.login.Submit(r.Context(), email, r.FormValue("password"))
		if outcome.Stage != navigator.LoginSucceeded {
			zerolog.Ctx(r.Context()).Info().Err(outcome.Err).Str("stage", outcome.Stage.String()).Msg("Login failed")
			data := s.pageData(r, "Sign in", LoginPageData{Email: email})
			data.Error = loginMessage(outcome.Err)
			render(w, r, tmpl, statusFor(outcome.Err), data)
			return
		}

		s.SetSessionCookie(w, r, outcome.Token)
		zerolog.Ctx(r.Context()).Info().Str("target", outcome.Target.String()).Msg("Login succeeded")
		redirectSuccess(w, r, outcome.Target.Path())
	}
}

// LogoutHandler ends the session. The user lands on the login page whatever
// the API says.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.sessionToken(r)
		if token != "" {
			if err := s.api.Logout(r.Context(), token); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Logout call failed")
			}
		}
		s.endSession(w, r, token)
		redirectSuccess(w, r, RouteLogin)
	}
}

// ChangePasswordGetHandler renders the change-password form
func (s *Server) ChangePasswordGetHandler(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, _, ok := s.resolveView(w, r, navigator.ViewChangePassword)
		if !ok {
			return
		}
		data := s.pageData(r, "Change password", ChangePasswordPageData{
			Email:     res.User.Email,
			MinLength: s.changePassword.MinLength(),
		})
		render(w, r, tmpl, http.StatusOK, data)
	}
}

// ChangePasswordPostHandler submits a new password. Local checks run first;
// on success the confirmation page moves on to the dashboard after a delay.
func (s *Server) ChangePasswordPostHandler(form, changed *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.sessionToken(r)
		if token == "" {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		outcome := s.changePassword.Submit(r.Context(), token, r.FormValue("newPassword"), r.FormValue("confirmPassword"))
		if !outcome.Changed {
			zerolog.Ctx(r.Context()).Info().Err(outcome.Err).Msg("Password change rejected")
			page := ChangePasswordPageData{MinLength: s.changePassword.MinLength()}
			if session, found := s.sessions.Lookup(token); found {
				page.Email = session.Email
			}
			data := s.pageData(r, "Change password", page)
			data.Error = s.changePasswordMessage(outcome.Err)
			render(w, r, form, statusFor(outcome.Err), data)
			return
		}

		data := s.pageData(r, "Password changed", PasswordChangedPageData{
			Target: outcome.Target.Path(),
			Delay:  outcome.Delay,
		})
		data.Notice = msgPasswordChanged
		render(w, r, changed, http.StatusOK, data)
	}
}
