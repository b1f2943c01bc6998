package grpc

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/consumergraph/consumergraph/internal/logger"
	"github.com/consumergraph/consumergraph/internal/metrics"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server represents a gRPC server
type Server struct {
	grpcServer *grpc.Server
	addr       string
	listener   net.Listener
	healthSvc  *HealthService
	stopHealth context.CancelFunc
	healthDone chan struct{}
	log        zerolog.Logger
	ready      bool
	mu         sync.RWMutex
}

// NewServer creates a new gRPC server exposing health and reflection
func NewServer(addr string, probe ReadinessProbe, m *metrics.APIMetrics, healthInterval time.Duration) *Server {
	s := &Server{
		addr:      addr,
		log:       logger.WithComponent("grpc"),
		healthSvc: NewHealthService(probe, healthInterval),
	}

	s.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(unaryTracing(), unaryLogging(s.log, m)),
		grpc.ChainStreamInterceptor(streamLogging(s.log, m)),
	)

	healthpb.RegisterHealthServer(s.grpcServer, s.healthSvc.server)
	reflection.Register(s.grpcServer)

	return s
}

// Start starts the gRPC server
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	healthCtx, cancel := context.WithCancel(context.Background())
	s.stopHealth = cancel
	s.healthDone = make(chan struct{})
	go func() {
		defer close(s.healthDone)
		s.healthSvc.Run(healthCtx)
	}()

	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			s.log.Error().Err(err).Msg("gRPC server error")
		}
	}()

	s.ready = true
	s.log.Info().Str("addr", listener.Addr().String()).Msg("gRPC server started")

	return nil
}

// Stop gracefully stops the gRPC server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping gRPC server")

	// Watchers see NOT_SERVING before the listener closes
	s.stopHealth()
	<-s.healthDone

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	s.ready = false

	select {
	case <-ctx.Done():
		// Context expired, force stop
		s.grpcServer.Stop()
		return ctx.Err()
	case <-stopped:
	}

	s.log.Info().Msg("gRPC server stopped")

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

// Health returns the health service, for on-demand re-evaluation
func (s *Server) Health() *HealthService {
	return s.healthSvc
}
