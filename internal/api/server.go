package api

import (
	"context"
	"errors"
	"sync"
	"time"

	grpcapi "github.com/consumergraph/consumergraph/internal/api/grpc"
	httpapi "github.com/consumergraph/consumergraph/internal/api/http"
	"github.com/consumergraph/consumergraph/internal/api/http/handlers"
	"github.com/consumergraph/consumergraph/internal/logger"
	"github.com/consumergraph/consumergraph/internal/mapping"
	"github.com/consumergraph/consumergraph/internal/metrics"
	"github.com/rs/zerolog"
)

// Config holds configuration for the API server
type Config struct {
	HTTPAddr string

	// GRPCAddr enables the gRPC health server when set
	GRPCAddr string

	// MetricsAddr starts a standalone metrics server when set. Otherwise,
	// with MetricsEnabled, /metrics is served by the HTTP router.
	MetricsEnabled bool
	MetricsAddr    string
	MetricsPath    string

	ClusterName  string
	Style        string
	PushInterval time.Duration
}

// Server manages the HTTP, gRPC and metrics servers
type Server struct {
	httpServer    *httpapi.Server
	grpcServer    *grpcapi.Server
	metricsServer *metrics.Server
	log           zerolog.Logger
	ready         bool
	mu            sync.RWMutex
}

// NewServer creates a new API server over the mapping. probe reports
// whether the mapper is polling.
func NewServer(cfg Config, reader mapping.Reader, probe handlers.ReadinessProbe, collector *metrics.Collector) (*Server, error) {
	s := &Server{
		log: logger.WithComponent("api"),
	}

	var apiMetrics *metrics.APIMetrics
	if collector != nil {
		apiMetrics = metrics.NewAPIMetrics(collector)
	}

	routes := httpapi.RouterConfig{
		Reader:      reader,
		Ready:       probe,
		ClusterName: cfg.ClusterName,
		Style:       cfg.Style,
		Hub:         handlers.NewHub(reader, cfg.ClusterName, cfg.PushInterval, apiMetrics),
		Metrics:     apiMetrics,
	}

	if cfg.MetricsEnabled && collector != nil {
		if cfg.MetricsAddr != "" {
			s.metricsServer = metrics.NewServer(cfg.MetricsAddr, cfg.MetricsPath, collector.GetRegistry())
		} else {
			routes.Gatherer = collector.GetRegistry()
		}
	}

	httpServer, err := httpapi.NewServer(cfg.HTTPAddr, routes)
	if err != nil {
		return nil, err
	}
	s.httpServer = httpServer

	if cfg.GRPCAddr != "" {
		s.grpcServer = grpcapi.NewServer(cfg.GRPCAddr, probe, apiMetrics, grpcapi.DefaultHealthInterval)
	}

	return s, nil
}

// Start starts every configured server. On failure the ones already
// started are stopped again.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	s.log.Info().Msg("Starting API server")

	if s.metricsServer != nil {
		if err := s.metricsServer.Start(ctx); err != nil {
			return err
		}
	}

	if err := s.httpServer.Start(ctx); err != nil {
		_ = s.stopAll(ctx)
		return err
	}

	if s.grpcServer != nil {
		if err := s.grpcServer.Start(ctx); err != nil {
			_ = s.stopAll(ctx)
			return err
		}
	}

	s.ready = true
	s.log.Info().Msg("API server started")

	return nil
}

// Stop gracefully stops every server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping API server")
	err := s.stopAll(ctx)

	s.ready = false
	s.log.Info().Msg("API server stopped")

	return err
}

func (s *Server) stopAll(ctx context.Context) error {
	var errs []error

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Error stopping HTTP server")
		errs = append(errs, err)
	}

	if s.grpcServer != nil {
		if err := s.grpcServer.Stop(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Error stopping gRPC server")
			errs = append(errs, err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Stop(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Error stopping metrics server")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Ready returns true if every configured server is ready
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready || !s.httpServer.Ready() {
		return false
	}
	if s.grpcServer != nil && !s.grpcServer.Ready() {
		return false
	}
	if s.metricsServer != nil && !s.metricsServer.Ready() {
		return false
	}
	return true
}

// HTTPAddr returns the bound HTTP address
func (s *Server) HTTPAddr() string {
	return s.httpServer.Addr()
}

// GRPCAddr returns the bound gRPC address, or "" when gRPC is disabled
func (s *Server) GRPCAddr() string {
	if s.grpcServer == nil {
		return ""
	}
	return s.grpcServer.Addr()
}

// MetricsAddr returns the bound standalone metrics address, or ""
func (s *Server) MetricsAddr() string {
	if s.metricsServer == nil {
		return ""
	}
	return s.metricsServer.Addr()
}
