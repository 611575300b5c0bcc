// Package http exposes machines and runs over a JSON HTTP API.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/utm/internal/dto"
	"github.com/aretw0/utm/internal/logging"
	"github.com/aretw0/utm/internal/presentation/graph"
	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/ports"
	"github.com/aretw0/utm/pkg/runner"
	"github.com/aretw0/utm/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the machine catalogue and run records.
type Server struct {
	Loader ports.MachineLoader
	Runs   *session.Manager
	Runner *runner.Runner

	gatherer prometheus.Gatherer
	logger   *slog.Logger
	version  string
}

// Option configures the Server.
type Option func(*Server)

// WithRunner sets the runner used by POST /runs. Its store is replaced by the server's.
func WithRunner(r *runner.Runner) Option {
	return func(s *Server) {
		s.Runner = r
	}
}

// WithGatherer exposes the given registry on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a Server over a machine loader and a run manager.
func NewServer(loader ports.MachineLoader, runs *session.Manager, opts ...Option) *Server {
	s := &Server{
		Loader:  loader,
		Runs:    runs,
		logger:  logging.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Runner == nil {
		s.Runner = runner.NewRunner(runner.WithLogger(s.logger))
	}
	if runs != nil {
		s.Runner.Store = runs
	}
	return s
}

// NewHandler creates the HTTP handler for the server.
func NewHandler(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/machines", s.ListMachines)
	r.Get("/machines/{name}", s.GetMachine)
	r.Get("/machines/{name}/graph", s.GetGraph)
	r.Post("/runs", s.CreateRun)
	r.Get("/runs", s.ListRuns)
	r.Get("/runs/{id}", s.GetRun)
	r.Delete("/runs/{id}", s.DeleteRun)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":       "utm-http",
		"version":   s.version,
		"variants":  domain.Variants(),
		"max_steps": s.Runner.MaxSteps,
	})
}

// ListMachines handles the GET /machines request.
func (s *Server) ListMachines(w http.ResponseWriter, r *http.Request) {
	names, err := s.Loader.List()
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// GetMachine handles the GET /machines/{name} request.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	desc, err := s.Loader.Load(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.FromDescription(desc))
}

// GetGraph handles the GET /machines/{name}/graph request.
// The response is Mermaid source.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	desc, err := s.Loader.Load(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(graph.GenerateMermaid(desc, nil))); err != nil {
		s.logger.Error("GetGraph write failed", "error", err)
	}
}

// CreateRun handles the POST /runs request.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	var body dto.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("CreateRun: invalid request body", "error", err)
		s.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		return
	}
	if body.Machine == "" {
		s.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "machine is required"})
		return
	}

	desc, err := s.Loader.Load(body.Machine)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	run := s.Runner
	if body.MaxSteps > 0 {
		bounded := *run
		bounded.MaxSteps = body.MaxSteps
		run = &bounded
	}
	rec, err := run.Run(r.Context(), desc, body.Input)
	if err != nil {
		s.writeError(w, r, err, rec)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

// ListRuns handles the GET /runs request.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Runs.Records(r.Context())
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	if recs == nil {
		recs = []*domain.RunRecord{}
	}
	s.writeJSON(w, http.StatusOK, recs)
}

// GetRun handles the GET /runs/{id} request.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Runs.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// DeleteRun handles the DELETE /runs/{id} request.
func (s *Server) DeleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Runs.Load(r.Context(), id); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	if err := s.Runs.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRunNotFound), errors.Is(err, domain.ErrMachineNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMalformedRuleTable), errors.Is(err, domain.ErrUnknownVariant):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStepBudgetExceeded), errors.Is(err, domain.ErrUndefinedTransition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, rec *domain.RunRecord) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, dto.ErrorResponse{Error: err.Error(), Run: rec})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
