package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-qr-portal/internal/config"
	"github.com/jrsteele09/go-qr-portal/navigator"
	"github.com/jrsteele09/go-qr-portal/qrcodes"
	"github.com/jrsteele09/go-qr-portal/sessionctx"
	"github.com/rs/zerolog/log"
)

// API is everything the portal asks of the Auth/QR API.
type API interface {
	navigator.Authenticator
	navigator.PasswordChanger
	Logout(ctx context.Context, token string) error
	ListQRs(ctx context.Context, token string) ([]qrcodes.QR, error)
	CreateQR(ctx context.Context, token string, create qrcodes.CreateRequest) (*qrcodes.QR, error)
	DeleteQR(ctx context.Context, token, id string) error
	Upload(ctx context.Context, token, filename, contentType string, file io.Reader) (string, error)
}

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config
	api    API

	sessions       *sessionctx.Manager
	edgeTokens     navigator.TokenChecker
	resolver       *navigator.Resolver
	login          *navigator.LoginFlow
	changePassword *navigator.ChangePasswordFlow
	uploadRules    map[qrcodes.UploadKind]qrcodes.UploadRule
}

func New(config config.Config, api API, sessionRepo sessionctx.Repo) (*Server, error) {
	if api == nil {
		return nil, fmt.Errorf("[Server New] api client is required")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("[Server New] session repo is required")
	}

	sessions := sessionctx.NewManager(sessionRepo, config.GetMaxSessionAge())
	s := &Server{
		env:            config.GetEnv(),
		mux:            http.NewServeMux(),
		config:         config,
		api:            api,
		sessions:       sessions,
		edgeTokens:     navigator.NewTokenChecker(config.GetEdgeJWTSecret()),
		resolver:       navigator.NewResolver(api, sessions),
		login:          navigator.NewLoginFlow(api, sessions),
		changePassword: navigator.NewChangePasswordFlow(api, sessions, config.GetPasswordMinLength(), config.GetPasswordChangedRedirectDelay()),
		uploadRules: map[qrcodes.UploadKind]qrcodes.UploadRule{
			qrcodes.UploadDocument: {
				Kind:         qrcodes.UploadDocument,
				AllowedTypes: config.GetDocumentTypes(),
				MaxSize:      config.GetMaxDocumentSize(),
			},
			qrcodes.UploadLogo: {
				Kind:         qrcodes.UploadLogo,
				AllowedTypes: config.GetLogoTypes(),
				MaxSize:      config.GetMaxLogoSize(),
			},
		},
	}

	if err := s.initRoutes(); err != nil {
		return nil, fmt.Errorf("[Server New] failed to initialise routes: %w", err)
	}
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
