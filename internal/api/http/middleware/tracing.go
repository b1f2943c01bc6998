package middleware

import (
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/consumergraph/consumergraph/internal/tracing"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Tracing creates tracing middleware for HTTP requests. WebSocket upgrades
// are passed through untraced.
func Tracing() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") != "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := tracing.ExtractHTTP(r.Context(), r.Header)
			ctx, span := otel.Tracer("consumergraph.http").Start(ctx, "HTTP "+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String(tracing.AttrHTTPMethod, r.Method),
					attribute.String("http.target", r.URL.Path),
					attribute.String(tracing.AttrHTTPUserAgent, r.UserAgent()),
				),
			)
			defer span.End()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(ctx)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			span.SetName("HTTP " + r.Method + " " + route)
			span.SetAttributes(
				attribute.String(tracing.AttrHTTPRoute, route),
				attribute.Int(tracing.AttrHTTPStatusCode, status),
			)

			if status >= http.StatusBadRequest {
				span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}
