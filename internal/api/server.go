package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pathforge/rolegraph/internal/config"
	"github.com/pathforge/rolegraph/internal/graph"
	"github.com/pathforge/rolegraph/internal/observability"
	"github.com/pathforge/rolegraph/internal/rolegraph"
)

// Server is the HTTP front end over the role graph. It owns the mux and the
// underlying http.Server; the repository and health checker are injected so
// the same server works against Neo4j or the in-memory fallback.
type Server struct {
	cfg    config.ServerConfig
	logger *slog.Logger
	repo   rolegraph.Repository
	health *graph.Checker

	httpServer *http.Server
}

// NewServer wires the handlers, middleware, and http.Server.
func NewServer(cfg config.ServerConfig, logger *slog.Logger, repo rolegraph.Repository, health *graph.Checker) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		health: health,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.withMiddleware(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/graph", s.handleGraphHealth)
	mux.HandleFunc("POST /roles", s.handleCreateRole)
	mux.HandleFunc("GET /roles", s.handleListRoles)
	mux.HandleFunc("GET /roles/{id}", s.handleGetRole)
	mux.HandleFunc("GET /role-adjacency", s.handleRoleAdjacency)
	return mux
}

// ListenAndServe blocks serving requests until the server is shut down.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the fully wrapped handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return s.logRequests(s.cors(next))
}

// statusRecorder captures the response code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		recorder.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(recorder, r)

		observability.WithTraceContext(r.Context(), s.logger).Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	origins := strings.TrimSpace(s.cfg.CORSAllowOrigins)
	if origins == "" {
		origins = "*"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
