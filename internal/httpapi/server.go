package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server runs the HTTP API.
type Server struct {
	http            *http.Server
	events          *EventStream
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewServer creates a Server for handler. events, if non-nil, is closed on
// Stop so open streams do not hold up shutdown.
func NewServer(handler http.Handler, events *EventStream, shutdownTimeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		events:          events,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// ListenAndServe listens on addr and serves until Stop.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Stop.
//
// Postcondition: Returns nil after Stop.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http api listening", zap.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// Stop closes event streams and shuts the server down, waiting up to the
// shutdown timeout for in-flight requests.
func (s *Server) Stop() {
	if s.events != nil {
		s.events.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown", zap.Error(err))
	}
	s.logger.Info("http api stopped")
}
