package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"google.golang.org/grpc/metadata"
)

// ExtractHTTP returns ctx carrying the remote span context found in h
func ExtractHTTP(ctx context.Context, h http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(h))
}

// ExtractGRPC returns ctx carrying the remote span context found in the
// incoming gRPC metadata
func ExtractGRPC(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, MetadataCarrier(md))
}

// MetadataCarrier adapts gRPC metadata to a TextMapCarrier
type MetadataCarrier metadata.MD

// Get returns the first value for key
func (c MetadataCarrier) Get(key string) string {
	vals := metadata.MD(c).Get(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// Set replaces the values for key
func (c MetadataCarrier) Set(key, value string) {
	metadata.MD(c).Set(key, value)
}

// Keys lists the carrier's keys
func (c MetadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
