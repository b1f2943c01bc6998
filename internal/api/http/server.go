package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/consumergraph/consumergraph/internal/api/http/handlers"
	"github.com/consumergraph/consumergraph/internal/logger"
	"github.com/rs/zerolog"
)

// Server represents an HTTP server
type Server struct {
	httpServer *http.Server
	addr       string
	router     *Router
	hub        *handlers.Hub
	listener   net.Listener
	stopHub    context.CancelFunc
	hubDone    chan struct{}
	log        zerolog.Logger
	ready      bool
	mu         sync.RWMutex
}

// NewServer creates a new HTTP server. The hub in cfg, if any, is run for
// as long as the server is started.
func NewServer(addr string, cfg RouterConfig) (*Server, error) {
	router, err := NewRouter(cfg)
	if err != nil {
		return nil, err
	}

	return &Server{
		addr:   addr,
		router: router,
		hub:    cfg.Hub,
		httpServer: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logger.WithComponent("http"),
	}, nil
}

// Start binds the listen address and serves in the background
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln

	if s.hub != nil {
		hubCtx, cancel := context.WithCancel(context.Background())
		s.stopHub = cancel
		s.hubDone = make(chan struct{})
		go func() {
			defer close(s.hubDone)
			s.hub.Run(hubCtx)
		}()
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	s.ready = true
	s.log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server started")

	return nil
}

// Stop gracefully stops the HTTP server and disconnects WebSocket clients
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping HTTP server")

	if s.stopHub != nil {
		s.stopHub()
		<-s.hubDone
	}

	s.ready = false
	if err := s.httpServer.Shutdown(ctx); err != nil {
		//nolint:errcheck // Ignore close error if shutdown failed
		_ = s.httpServer.Close()
		return err
	}

	s.log.Info().Msg("HTTP server stopped")
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
