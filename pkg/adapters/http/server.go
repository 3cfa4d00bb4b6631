package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/augtree/internal/compiler"
	"github.com/aretw0/augtree/pkg/host"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Runner executes host invocations.
type Runner interface {
	RunRaw(ctx context.Context, raw map[string]any) host.Response
}

// Server serves augtree runs over HTTP. Runs are serialized: a store handle
// is never shared and files under the root are edited by one run at a time.
type Server struct {
	Runner  Runner
	Logger  *slog.Logger
	metrics http.Handler
	mu      sync.Mutex
}

// Option configures the server.
type Option func(*Server)

// WithMetricsHandler replaces the default Prometheus handler on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// NewHandler creates a new HTTP handler for the runner.
func NewHandler(runner Runner, opts ...Option) http.Handler {
	server := &Server{
		Runner:  runner,
		Logger:  slog.Default(),
		metrics: promhttp.Handler(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Post("/run", server.Run)
	r.Post("/check", server.Check)
	r.Get("/spec", server.Spec)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", server.metrics)
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run handles POST /run. The body is the host argument dictionary.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Run: Invalid request body", "error", err)
		return
	}

	s.mu.Lock()
	resp := s.Runner.RunRaw(r.Context(), body)
	s.mu.Unlock()

	status := http.StatusOK
	if resp.Failed {
		status = http.StatusUnprocessableEntity
		s.Logger.Info("Run failed", "msg", resp.Msg)
	}
	writeJSON(w, status, resp)
}

// CheckRequest is the body of POST /check.
type CheckRequest struct {
	Commands string `json:"commands"`
}

// CheckResponse reports a parsed block in canonical form.
type CheckResponse struct {
	Commands string `json:"commands,omitempty"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`
}

// Check handles POST /check: it parses a block without running it.
func (s *Server) Check(w http.ResponseWriter, r *http.Request) {
	var body CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	seq, err := compiler.Parse(body.Commands)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, CheckResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{Commands: compiler.Format(seq), Count: len(seq)})
}

// Spec handles GET /spec: the accepted argument dictionary.
func (s *Server) Spec(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, host.Spec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
