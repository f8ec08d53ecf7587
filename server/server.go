package server

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/securenotes/auth-service/auth"
	"github.com/securenotes/auth-service/internal/config"
	"github.com/securenotes/auth-service/notes"
	"github.com/securenotes/auth-service/token"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config
	auth   *auth.Service
	tokens *token.Manager
	notes  notes.Repo
}

func New(cfg config.Config, authService *auth.Service, tokens *token.Manager, noteRepo notes.Repo) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[Server.New] auth service is required")
	}
	if tokens == nil {
		return nil, errors.New("[Server.New] token manager is required")
	}
	if noteRepo == nil {
		return nil, errors.New("[Server.New] note repo is required")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: cfg,
		auth:   authService,
		tokens: tokens,
		notes:  noteRepo,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
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
			log.Info().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Info().Str("path", parts[0]).Msg("route registered")
		}
	}
}
