// Package httpserver exposes the webhook and health endpoints
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hellausefulsoftware/codescribe/internal/logging"
)

// Server wraps the HTTP listener
type Server struct {
	srv *http.Server
}

// New creates a server listening on port
func New(port string, intake Intake, tasks TaskCounter) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + port,
		Handler:           newRouter(intake, tasks),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{srv: httpSrv}
}

// Start blocks serving requests until Stop is called
func (s *Server) Start() error {
	logging.Info("HTTP server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the listener down
func (s *Server) Stop(ctx context.Context) error {
	logging.Info("HTTP server stopping")
	return s.srv.Shutdown(ctx)
}
