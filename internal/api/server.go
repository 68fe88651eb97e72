package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/vietddude/linkpay/internal/core/collection"
	"github.com/vietddude/linkpay/internal/metrics"
)

// HealthCheck reports the health of one dependency.
type HealthCheck func(ctx context.Context) error

// Config holds API server settings.
type Config struct {
	Port           int
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server serves the collection API, health and metrics endpoints.
type Server struct {
	manager collection.Manager
	auth    *Authenticator
	checks  map[string]HealthCheck
	server  *http.Server
	log     *slog.Logger
}

// NewServer creates a new API server.
func NewServer(
	cfg Config,
	manager collection.Manager,
	auth *Authenticator,
	checks map[string]HealthCheck,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		manager: manager,
		auth:    auth,
		checks:  checks,
		log:     log,
	}
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      newCORS(cfg.AllowedOrigins).Handler(s.Routes()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Routes returns the request multiplexer.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/reorder", s.instrument("reorder", s.auth.Require(s.handleReorder)))
	mux.HandleFunc("GET /api/v1/items/{collection}", s.instrument("list", s.auth.Require(s.handleList)))
	mux.HandleFunc("POST /api/v1/items/{collection}", s.instrument("create", s.auth.Require(s.handleCreate)))
	mux.HandleFunc("PUT /api/v1/items/{collection}/{id}", s.instrument("update", s.auth.Require(s.handleUpdate)))
	mux.HandleFunc("DELETE /api/v1/items/{collection}/{id}", s.instrument("delete", s.auth.Require(s.handleDelete)))
	mux.HandleFunc("GET /api/v1/profiles/{owner}/{collection}", s.instrument("public_list", s.handlePublicList))

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info("API server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		metrics.HTTPLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := make(map[string]string, len(s.checks))
	status := http.StatusOK

	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			report[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "ok"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "critical"
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": report})
}

func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	})
}
