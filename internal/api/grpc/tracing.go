package grpc

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/consumergraph/consumergraph/internal/tracing"
)

// unaryTracing starts a server span per unary call
func unaryTracing() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx = tracing.ExtractGRPC(ctx)

		service, method := splitMethodName(info.FullMethod)
		ctx, span := otel.Tracer("consumergraph.grpc").Start(ctx, info.FullMethod,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("rpc.system", "grpc"),
				attribute.String(tracing.AttrRPCService, service),
				attribute.String(tracing.AttrRPCMethod, method),
			),
		)
		defer span.End()

		resp, err := handler(ctx, req)

		st := status.Convert(err)
		span.SetAttributes(attribute.String(tracing.AttrRPCStatus, st.Code().String()))
		if err != nil {
			span.SetStatus(codes.Error, st.Message())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return resp, err
	}
}

// splitMethodName splits "/package.Service/Method" into its service and
// method parts
func splitMethodName(fullMethod string) (string, string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[:i], fullMethod[i+1:]
	}
	return "", fullMethod
}
