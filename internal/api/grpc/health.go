package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// MapperService is the health service name reporting the mapper state
const MapperService = "consumergraph.Mapper"

// DefaultHealthInterval is how often readiness is re-evaluated
const DefaultHealthInterval = time.Second

// ReadinessProbe reports whether the mapper is polling
type ReadinessProbe interface {
	Ready() bool
}

// HealthService publishes mapper readiness through grpc.health.v1.
// The server itself ("") is always SERVING while it runs.
type HealthService struct {
	server   *health.Server
	probe    ReadinessProbe
	interval time.Duration
}

// NewHealthService creates a new health service
func NewHealthService(probe ReadinessProbe, interval time.Duration) *HealthService {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	h := &HealthService{
		server:   health.NewServer(),
		probe:    probe,
		interval: interval,
	}
	h.server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.Sync()
	return h
}

// Sync re-evaluates the probe once
func (h *HealthService) Sync() {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if h.probe != nil && h.probe.Ready() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus(MapperService, status)
}

// Run keeps the mapper status current until ctx is done, then marks every
// service NOT_SERVING.
func (h *HealthService) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Sync()
		}
	}
}
