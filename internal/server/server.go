package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/vector76/catchup/internal/markdown"
	"github.com/vector76/catchup/internal/model"
)

// Service answers catch-up requests. *catchup.Service implements it.
type Service interface {
	CatchUp(ctx context.Context, req model.CatchUpRequest) (model.CatchUpResponse, error)
	Catalog() *model.Catalog
}

// Config holds the server configuration.
type Config struct {
	Port    int
	Version string

	// Renderer turns summaries into HTML on the form page. Nil selects
	// markdown.Fragment.
	Renderer markdown.Renderer

	// RateLimit is the sustained number of submissions per second allowed
	// per client IP; zero disables limiting.
	RateLimit rate.Limit
	Burst     int

	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
}

// Server is the HTTP server for the catch-up API and form page.
type Server struct {
	Router  *chi.Mux
	svc     Service
	config  Config
	log     *slog.Logger
	limiter *rateLimiter
}

// New creates a new Server with the given config and service.
func New(cfg Config, svc Service, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("service must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = markdown.Fragment
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	srv := &Server{
		Router: chi.NewRouter(),
		svc:    svc,
		config: cfg,
		log:    logger,
	}
	if cfg.RateLimit > 0 {
		srv.limiter = newRateLimiter(cfg.RateLimit, cfg.Burst)
	}

	srv.Router.Use(middleware.RequestID)
	srv.Router.Use(middleware.RealIP)
	srv.Router.Use(requestLogger(logger))
	srv.Router.Use(middleware.Recoverer)
	srv.Router.Use(middleware.Compress(5))
	srv.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	srv.Router.Get("/", srv.handlePage)
	srv.Router.With(srv.rateLimit(srv.pageRateLimited)).Post("/", srv.handleSubmit)

	srv.Router.Route("/api", func(r chi.Router) {
		r.With(srv.rateLimit(apiRateLimited)).Post("/catchup", srv.handleCatchUp)
		r.Get("/health", srv.handleHealth)
		r.Get("/version", srv.handleVersion)
		r.Get("/options", srv.handleOptions)
	})

	srv.Router.Handle("/metrics", promhttp.Handler())

	return srv, nil
}

// ListenAddr returns the address the server should listen on.
func (s *Server) ListenAddr() string {
	return fmt.Sprintf(":%d", s.config.Port)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleVersion reports the server build version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{"version": s.config.Version})
}

// handleOptions returns the accepted industries and time periods.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, s.svc.Catalog())
}
