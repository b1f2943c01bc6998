package tracing

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/metadata"
)

func TestRateProbability(t *testing.T) {
	tests := []struct {
		rate float64
		want float64
	}{
		{rate: 50, want: 0.5},
		{rate: 25, want: 0.25},
		{rate: 10, want: 0.1},
		{rate: 100, want: 1},
		{rate: 150, want: 1},
		{rate: -5, want: 0},
	}

	for _, tc := range tests {
		assert.InDelta(t, tc.want, rateProbability(tc.rate), 1e-9, "rate %v", tc.rate)
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name     string
		config   TracingConfig
		contains string
	}{
		{name: "default", config: TracingConfig{}, contains: "AlwaysOnSampler"},
		{name: "never", config: TracingConfig{SamplingStrategy: SamplingNever}, contains: "AlwaysOffSampler"},
		{name: "ratio", config: TracingConfig{SamplingStrategy: SamplingRatio, SamplingRate: 0.25}, contains: "TraceIDRatioBased{0.25}"},
		{name: "rate", config: TracingConfig{SamplingStrategy: SamplingRate, SamplingRate: 50}, contains: "TraceIDRatioBased{0.5}"},
		{name: "rate capped", config: TracingConfig{SamplingStrategy: SamplingRate, SamplingRate: 200}, contains: "AlwaysOnSampler"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, newSampler(tc.config).Description(), tc.contains)
		})
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(DefaultTracingConfig())
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NotNil(t, p.GetTracer("test"))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_RequiresEndpoint(t *testing.T) {
	cfg := DefaultTracingConfig()
	cfg.Enabled = true

	_, err := NewProvider(cfg)
	assert.Error(t, err)
}

func TestNewProvider_Enabled(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	for _, exporter := range []string{"grpc", "http"} {
		t.Run(exporter, func(t *testing.T) {
			cfg := DefaultTracingConfig()
			cfg.Enabled = true
			cfg.Endpoint = "localhost:4317"
			cfg.Insecure = true
			cfg.ExporterType = exporter
			cfg.SamplingStrategy = SamplingNever

			p, err := NewProvider(cfg)
			require.NoError(t, err)
			assert.True(t, p.IsEnabled())

			_, span := p.GetTracer("test").Start(context.Background(), "unsampled")
			assert.False(t, span.SpanContext().IsSampled())
			span.End()

			assert.NoError(t, p.Shutdown(context.Background()))
		})
	}
}

func TestExtract(t *testing.T) {
	prevProp := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prevProp) })

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
	defer span.End()

	h := http.Header{}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(h))
	require.NotEmpty(t, h.Get("traceparent"))

	got := trace.SpanContextFromContext(ExtractHTTP(context.Background(), h))
	assert.Equal(t, span.SpanContext().TraceID(), got.TraceID())

	md := metadata.MD{}
	otel.GetTextMapPropagator().Inject(ctx, MetadataCarrier(md))
	incoming := metadata.NewIncomingContext(context.Background(), md)
	got = trace.SpanContextFromContext(ExtractGRPC(incoming))
	assert.Equal(t, span.SpanContext().TraceID(), got.TraceID())

	assert.Equal(t, context.Background(), ExtractGRPC(context.Background()))
}
