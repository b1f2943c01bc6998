package mapper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/consumergraph/consumergraph/internal/broker"
	"github.com/consumergraph/consumergraph/internal/filter"
	"github.com/consumergraph/consumergraph/internal/logger"
	"github.com/consumergraph/consumergraph/internal/mapping"
	"github.com/consumergraph/consumergraph/internal/metrics"
	"github.com/consumergraph/consumergraph/internal/offsets"
	"github.com/consumergraph/consumergraph/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Client is the broker consumer the mapper drives. Implementations are
// used from the Run goroutine only.
type Client interface {
	Subscribe(topic string, listener broker.RebalanceListener) error
	SeekToBeginning(partitions []broker.Partition) error
	Poll(ctx context.Context, timeout time.Duration) ([]broker.Record, error)
	Close() error
}

var _ Client = (*broker.Consumer)(nil)

// sizer is implemented by stores that can report their size
type sizer interface {
	Len() (topics, edges int)
}

// Option configures a Mapper
type Option func(*Mapper)

// WithMetrics records poll loop metrics
func WithMetrics(m *metrics.MapperMetrics) Option {
	return func(mp *Mapper) {
		mp.metrics = m
	}
}

// WithTracer records a span per polled batch
func WithTracer(t trace.Tracer) Option {
	return func(mp *Mapper) {
		mp.tracer = t
	}
}

// Mapper tails the offsets topic and records which groups consume which
// topics. It is the only writer of its store.
type Mapper struct {
	client  Client
	store   mapping.Writer
	policy  *filter.Policy
	cfg     Config
	metrics *metrics.MapperMetrics
	tracer  trace.Tracer
	log     zerolog.Logger

	state   atomic.Int32
	started atomic.Bool

	wakeCtx context.Context
	wake    context.CancelFunc
}

// New creates a Mapper. A nil policy accepts every edge.
func New(client Client, store mapping.Writer, policy *filter.Policy, cfg Config, opts ...Option) *Mapper {
	wakeCtx, wake := context.WithCancel(context.Background())
	m := &Mapper{
		client:  client,
		store:   store,
		policy:  policy,
		cfg:     cfg,
		tracer:  noop.NewTracerProvider().Tracer("mapper"),
		log:     logger.WithComponent("mapper"),
		wakeCtx: wakeCtx,
		wake:    wake,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics.SetState(StateCreated.String(), allStates)
	return m
}

// State returns the current lifecycle state
func (m *Mapper) State() State {
	return State(m.state.Load())
}

// Wakeup asks a running (or not yet started) Run to stop. It is safe to
// call from any goroutine and any number of times.
func (m *Mapper) Wakeup() {
	m.wake()
}

// Run subscribes to the offsets topic and polls until woken up, ctx is
// done, or the client reports a fatal error. A wakeup returns nil; a poll
// fault is returned unchanged. The client is closed on every exit path.
func (m *Mapper) Run(ctx context.Context) (err error) {
	if !m.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(m.wakeCtx, cancel)
	defer stop()
	if m.wakeCtx.Err() != nil {
		cancel()
	}

	defer func() {
		if cerr := m.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	topic := m.cfg.EffectiveTopic()
	if err := m.client.Subscribe(topic, &rebalanceListener{m: m}); err != nil {
		m.setState(StateShuttingDown)
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	m.setState(StateSubscribed)

	timeout := m.cfg.EffectiveTimeout()
	m.log.Info().
		Str("topic", topic).
		Dur("poll_timeout", timeout).
		Str("topic_filter", m.topicPattern()).
		Str("group_filter", m.groupPattern()).
		Msg("Mapper started")

	m.setState(StatePolling)
	for {
		start := time.Now()
		records, err := m.client.Poll(ctx, timeout)
		m.metrics.RecordPoll(len(records), time.Since(start))

		if err != nil {
			m.setState(StateShuttingDown)
			if errors.Is(err, broker.ErrWakeup) {
				m.log.Info().Msg("Wakeup received, shutting down")
				return nil
			}
			m.log.Error().Err(err).Msg("Poll failed")
			return err
		}

		if len(records) > 0 {
			m.processBatch(ctx, records)
		}
	}
}

func (m *Mapper) processBatch(ctx context.Context, records []broker.Record) {
	_, span := m.tracer.Start(ctx, "mapper.batch",
		trace.WithAttributes(attribute.Int(tracing.AttrBatchSize, len(records))))
	defer span.End()

	var added, skipped int
	for _, rec := range records {
		isNew, reason := m.handle(rec)
		switch {
		case reason != "":
			skipped++
			m.metrics.RecordSkipped(reason)
		case isNew:
			added++
			m.metrics.RecordEdge()
		}
	}

	if s, ok := m.store.(sizer); ok {
		m.metrics.UpdateMappingSize(s.Len())
	}

	span.SetAttributes(
		attribute.Int(tracing.AttrEdgesAdded, added),
		attribute.Int(tracing.AttrSkipped, skipped),
	)
	span.SetStatus(codes.Ok, "")

	if added > 0 {
		m.log.Debug().Int("records", len(records)).Int("edges_added", added).Msg("Batch applied")
	}
}

// handle applies one record. It reports whether a new edge was recorded,
// or the reason the record produced no edge.
func (m *Mapper) handle(rec broker.Record) (bool, string) {
	m.metrics.RecordObserved(m.store.RecordObservation())

	key, err := offsets.DecodeKey(rec.Key)
	if err != nil {
		m.log.Debug().
			Err(err).
			Int32("partition", rec.Partition).
			Int64("offset", rec.Offset).
			Msg("Skipping undecodable key")
		return false, metrics.SkipDecodeError
	}

	switch k := key.(type) {
	case offsets.OffsetCommitKey:
		if !m.policy.Accept(k.Topic, k.Group) {
			return false, metrics.SkipFiltered
		}
		isNew := m.store.RecordEdge(k.Topic, k.Group)
		if isNew {
			m.log.Debug().Str("topic", k.Topic).Str("group", k.Group).Msg("New edge")
		}
		return isNew, ""
	case offsets.GroupMetadataKey:
		return false, metrics.SkipGroupMetadata
	default:
		m.log.Debug().Int16("version", key.SchemaVersion()).Msg("Skipping unknown key schema")
		return false, metrics.SkipUnknownSchema
	}
}

func (m *Mapper) close() error {
	if m.State() != StateShuttingDown {
		m.setState(StateShuttingDown)
	}
	err := m.client.Close()
	m.setState(StateClosed)
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to close consumer")
		return fmt.Errorf("close consumer: %w", err)
	}
	m.log.Info().Msg("Mapper closed")
	return nil
}

func (m *Mapper) setState(s State) {
	m.state.Store(int32(s))
	m.metrics.SetState(s.String(), allStates)
}

func (m *Mapper) topicPattern() string {
	if m.policy == nil {
		return ""
	}
	return m.policy.Topic.String()
}

func (m *Mapper) groupPattern() string {
	if m.policy == nil {
		return ""
	}
	return m.policy.Group.String()
}

// rebalanceListener rewinds every newly assigned partition so the full
// retained history of the offsets topic is replayed
type rebalanceListener struct {
	m *Mapper
}

func (l *rebalanceListener) PartitionsAssigned(partitions []broker.Partition) error {
	l.m.metrics.RecordRebalance(metrics.RebalanceAssigned)
	l.m.log.Info().Int("partitions", len(partitions)).Msg("Seeking assigned partitions to beginning")
	return l.m.client.SeekToBeginning(partitions)
}

func (l *rebalanceListener) PartitionsRevoked(partitions []broker.Partition) error {
	l.m.metrics.RecordRebalance(metrics.RebalanceRevoked)
	l.m.log.Info().Int("partitions", len(partitions)).Msg("Partitions revoked")
	return nil
}
