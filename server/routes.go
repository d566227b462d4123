package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() error {
	pages, err := s.parsePages()
	if err != nil {
		return err
	}

	// Edge-filtered pages
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.PageMiddleware(s.EdgeFilterMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(pages.login), s.PageMiddleware(s.EdgeFilterMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(pages.dashboard), s.PageMiddleware(s.EdgeFilterMiddleware)...))

	// LOGIN
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(pages.login), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.PageMiddleware()...))

	// PASSWORD GATE
	s.RegisterRouteHandler("GET "+RouteChangePassword, ChainMiddleware(s.ChangePasswordGetHandler(pages.changePassword), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteChangePassword, ChainMiddleware(s.ChangePasswordPostHandler(pages.changePassword, pages.passwordChanged), s.PageMiddleware()...))

	// DASHBOARD actions share the /dashboard edge rule
	s.RegisterRouteHandler("POST "+RouteDashboardUpload, ChainMiddleware(s.UploadHandler(UploadDocumentAction), s.PageMiddleware(s.EdgeFilterMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteDashboardLogo, ChainMiddleware(s.UploadHandler(UploadLogoAction), s.PageMiddleware(s.EdgeFilterMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteDashboardDraft, ChainMiddleware(s.ClearDraftHandler(), s.PageMiddleware(s.EdgeFilterMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteDashboardQRs, ChainMiddleware(s.GenerateQRHandler(), s.PageMiddleware(s.EdgeFilterMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteDashboardDelete, ChainMiddleware(s.DeleteQRHandler(), s.PageMiddleware(s.EdgeFilterMiddleware)...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.AssetMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.AssetMiddleware()...))
	return nil
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError(r.Method, filePath, err)
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

// HealthHandler reports that the process is serving.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			log.Err(err).Msg("Failed to write health response")
		}
	}
}

func logError(method, path string, err error) {
	log.Error().Err(err).Msgf("[%-19s] %s", colourMethod(method), path)
}
