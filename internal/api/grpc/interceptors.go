package grpc

import (
	"context"
	"time"

	"github.com/consumergraph/consumergraph/internal/metrics"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const transportGRPC = "grpc"

// unaryLogging logs and measures unary calls
func unaryLogging(log zerolog.Logger, m *metrics.APIMetrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		observe(log, m, "unary", info.FullMethod, err, time.Since(start))
		return resp, err
	}
}

// streamLogging logs and measures streaming calls such as health Watch
func streamLogging(log zerolog.Logger, m *metrics.APIMetrics) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		observe(log, m, "stream", info.FullMethod, err, time.Since(start))
		return err
	}
}

func observe(log zerolog.Logger, m *metrics.APIMetrics, kind, method string, err error, dur time.Duration) {
	code := status.Code(err)
	m.RecordRequest(transportGRPC, kind, method, code.String(), dur)

	ev := log.Debug()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Str("method", method).
		Str("code", code.String()).
		Dur("duration", dur).
		Msg("gRPC request completed")
}
