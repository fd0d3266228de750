// Package api provides HTTP handlers and the main API server logic for
// DiagPipe.
//
// It exposes the session control surface a UI or CLI front end needs:
// starting a case, submitting text, approving or refining stage output,
// restarting, and reading status, results, and reports.
package api

import (
	"log/slog"
	"net/http"

	"github.com/MedCausal/DiagPipe/internal/session"
)

// DefaultAddr is the default listen address for the API server.
const DefaultAddr = ":8080"

// Opts holds configuration for the API server.
type Opts struct {
	Addr string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr overrides the default listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the session manager to the HTTP control surface.
type Server struct {
	addr     string
	sessions *session.Manager
}

// NewServer creates an API server over the given session manager.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{addr: cfg.Addr, sessions: sessions}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", s.sessionsHandler)
	mux.HandleFunc("/sessions/", s.sessionDispatchHandler)
	return mux
}

// Run starts the API server and blocks until it exits.
func (s *Server) Run() error {
	slog.Info("DiagPipe API running", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}
