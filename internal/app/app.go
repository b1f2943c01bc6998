package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/consumergraph/consumergraph/internal/api"
	"github.com/consumergraph/consumergraph/internal/broker"
	"github.com/consumergraph/consumergraph/internal/config"
	"github.com/consumergraph/consumergraph/internal/filter"
	"github.com/consumergraph/consumergraph/internal/logger"
	"github.com/consumergraph/consumergraph/internal/mapper"
	"github.com/consumergraph/consumergraph/internal/mapping"
	"github.com/consumergraph/consumergraph/internal/metrics"
	"github.com/consumergraph/consumergraph/internal/tracing"
	"github.com/consumergraph/consumergraph/internal/version"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ClientFactory builds the broker client the mapper polls
type ClientFactory func(cfg broker.ConsumerConfig) (mapper.Client, error)

// ProbeFunc checks that every broker address accepts connections
type ProbeFunc func(ctx context.Context, addrs []string, timeout time.Duration) error

// NewBrokerClient is the default ClientFactory
func NewBrokerClient(cfg broker.ConsumerConfig) (mapper.Client, error) {
	return broker.NewConsumer(cfg)
}

// Option configures an App
type Option func(*App)

// WithClientFactory replaces the confluent-kafka-go client, mostly for tests
func WithClientFactory(f ClientFactory) Option {
	return func(a *App) {
		a.newClient = f
	}
}

// WithProbe replaces the TCP reachability probe
func WithProbe(p ProbeFunc) Option {
	return func(a *App) {
		a.probe = p
	}
}

// App wires the mapper, the mapping store and the serving layer together
type App struct {
	cfg       *config.Config
	store     *mapping.Store
	policy    *filter.Policy
	collector *metrics.Collector
	tracer    *tracing.Provider
	api       *api.Server
	mapper    atomic.Pointer[mapper.Mapper]
	newClient ClientFactory
	probe     ProbeFunc
	log       zerolog.Logger
}

// New builds the components described by cfg. cfg should already be
// validated; the filter patterns are compiled here regardless.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		store:     mapping.NewStore(),
		policy:    policy,
		newClient: NewBrokerClient,
		probe:     broker.Probe,
		log:       logger.WithComponent("app"),
	}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.Metrics.Enabled {
		a.collector = metrics.NewProcessCollector()
	}

	a.tracer, err = tracing.NewProvider(tracingConfig(cfg.Tracing))
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	a.api, err = api.NewServer(api.Config{
		HTTPAddr:       hostPort(cfg.Server.Host, cfg.Server.Port),
		GRPCAddr:       grpcAddr(cfg.Server),
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsAddr:    cfg.Metrics.Addr,
		MetricsPath:    cfg.Metrics.Path,
		ClusterName:    cfg.UI.ClusterName,
		Style:          cfg.UI.Style,
		PushInterval:   cfg.UI.PushInterval,
	}, a.store, a, a.collector)
	if err != nil {
		return nil, err
	}

	return a, nil
}

// Run probes the brokers, starts serving and runs the mapper until ctx is
// done or the mapper fails. A shutdown through ctx returns nil.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Probe.Enabled {
		addrs := broker.SplitAddrs(a.cfg.Kafka.BootstrapServers)
		if err := a.probe(ctx, addrs, a.cfg.Probe.Timeout); err != nil {
			return fmt.Errorf("broker probe: %w", err)
		}
		a.log.Info().Strs("brokers", addrs).Msg("Brokers reachable")
	}

	client, err := a.newClient(a.consumerConfig())
	if err != nil {
		return err
	}

	m := mapper.New(client, a.store, a.policy, mapper.Config{
		Topic:         a.cfg.Kafka.Topic,
		PollTimeoutMs: a.cfg.Kafka.PollTimeoutMs,
	},
		mapper.WithMetrics(a.mapperMetrics()),
		mapper.WithTracer(a.tracer.GetTracer("consumergraph.mapper")),
	)
	a.mapper.Store(m)

	if err := a.api.Start(ctx); err != nil {
		//nolint:errcheck // Client was never polled
		_ = client.Close()
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- m.Run(context.Background())
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info().Msg("Shutdown requested")
		m.Wakeup()
		runErr = <-done
	case runErr = <-done:
		if runErr != nil {
			a.log.Error().Err(runErr).Msg("Mapper failed")
		}
	}

	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.api.Stop(ctx); err != nil {
		a.log.Warn().Err(err).Msg("Error stopping API server")
	}
	if err := a.tracer.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		a.log.Warn().Err(err).Msg("Error shutting down tracing")
	}
}

// Ready reports whether the mapper is polling
func (a *App) Ready() bool {
	m := a.mapper.Load()
	return m != nil && m.State() == mapper.StatePolling
}

// Mapping returns the live mapping
func (a *App) Mapping() mapping.Reader {
	return a.store
}

// HTTPAddr returns the bound HTTP address once Run has started serving
func (a *App) HTTPAddr() string {
	return a.api.HTTPAddr()
}

func (a *App) mapperMetrics() *metrics.MapperMetrics {
	if a.collector == nil {
		return nil
	}
	return metrics.NewMapperMetrics(a.collector)
}

func (a *App) consumerConfig() broker.ConsumerConfig {
	clientID := a.cfg.Kafka.ClientID
	if clientID == "" {
		clientID = "consumergraph-" + uuid.NewString()
	}
	return broker.ConsumerConfig{
		BootstrapServers: a.cfg.Kafka.BootstrapServers,
		GroupID:          a.cfg.Kafka.GroupID,
		ClientID:         clientID,
		MaxBatch:         a.cfg.Kafka.MaxBatch,
		Properties:       a.cfg.Kafka.Properties,
	}
}

func tracingConfig(c config.TracingConfig) tracing.TracingConfig {
	tc := tracing.DefaultTracingConfig()
	tc.Enabled = c.Enabled
	tc.Endpoint = c.Endpoint
	tc.Insecure = c.Insecure
	tc.ExporterType = c.ExporterType
	tc.SamplingStrategy = c.SamplingStrategy
	tc.SamplingRate = c.SamplingRate
	tc.ServiceVersion = version.Version
	return tc
}

func grpcAddr(s config.ServerConfig) string {
	if s.GRPCPort <= 0 {
		return ""
	}
	return hostPort(s.Host, s.GRPCPort)
}

func hostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
