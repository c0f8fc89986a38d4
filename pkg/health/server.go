package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cuemby/siloflow/pkg/metrics"
)

// ReadinessCheck reports whether a named collaborator is reachable.
type ReadinessCheck func(ctx context.Context) error

// CheckerFunc adapts a Checker (TCPChecker, HTTPChecker, ...) into a
// ReadinessCheck for RegisterCheck.
func CheckerFunc(c Checker) ReadinessCheck {
	return func(ctx context.Context) error {
		result := c.Check(ctx)
		if result.Healthy {
			return nil
		}
		return errors.New(result.Message)
	}
}

// Server exposes /health (liveness), /ready (readiness) and /metrics
// over HTTP for a single process (Control Service or Ingress Worker).
type Server struct {
	mux    *http.ServeMux
	checks map[string]ReadinessCheck
}

// NewServer builds a Server with no readiness checks registered yet;
// call RegisterCheck before Start.
func NewServer() *Server {
	mux := http.NewServeMux()
	s := &Server{mux: mux, checks: make(map[string]ReadinessCheck)}
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/ready", s.readyHandler)
	mux.Handle("/metrics", metrics.Handler())
	return s
}

// RegisterCheck adds a named readiness check evaluated on every /ready request.
func (s *Server) RegisterCheck(name string, check ReadinessCheck) {
	s.checks[name] = check
}

// Start runs the HTTP server; it blocks until the server stops or errors.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv.ListenAndServe()
}

// Handler returns the HTTP handler for embedding in another server.
func (s *Server) Handler() http.Handler { return s.mux }

// HealthResponse is the /health liveness response body.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse is the /ready readiness response body.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Message   string            `json:"message,omitempty"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy", Timestamp: time.Now()})
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.checks))
	ready := true
	var message string

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = "error: " + err.Error()
			ready = false
			if message == "" {
				message = "waiting for " + name
			}
			continue
		}
		checks[name] = "ok"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Message:   message,
	})
}
