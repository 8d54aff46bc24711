package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/killallgit/easel/pkg/logger"
)

// Server exposes /metrics over HTTP
type Server struct {
	httpServer *http.Server
}

// NewServer creates a metrics server listening on addr
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &Server{httpServer: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start blocks serving until Shutdown is called
func (s *Server) Start() error {
	logger.Info("metrics: listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics: http server error: %w", err)
	}
	return nil
}

// Shutdown stops the server, waiting up to five seconds for scrapes in flight
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
