package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/consumergraph/consumergraph/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// DefaultPath is the scrape path used when none is configured
const DefaultPath = "/metrics"

// Server represents a standalone metrics HTTP server
type Server struct {
	httpServer *http.Server
	addr       string
	path       string
	registry   *prometheus.Registry
	listener   net.Listener
	log        zerolog.Logger
	ready      bool
	mu         sync.RWMutex
}

// NewServer creates a new metrics server serving registry on path
func NewServer(addr, path string, registry *prometheus.Registry) *Server {
	if path == "" {
		path = DefaultPath
	}
	return &Server{
		addr:     addr,
		path:     path,
		registry: registry,
		log:      logger.WithComponent("metrics.server"),
	}
}

// Handler returns the scrape handler for the server's registry
func (s *Server) Handler() http.Handler {
	if s.registry != nil {
		return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
	}
	return promhttp.Handler()
}

// Start binds the listen address and serves in the background
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(s.path, s.Handler())

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("Metrics server error")
		}
	}()

	s.ready = true
	s.log.Info().Str("addr", ln.Addr().String()).Str("path", s.path).Msg("Metrics server started")

	return nil
}

// Stop gracefully stops the metrics server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping metrics server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		//nolint:errcheck // Ignore close error if shutdown failed
		_ = s.httpServer.Close()
		return err
	}

	s.ready = false
	s.log.Info().Msg("Metrics server stopped")

	return nil
}

// Addr returns the bound address, or the configured one before Start
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Ready returns true if the server is ready
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}
