package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/consumergraph/consumergraph/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Logging logs HTTP requests and records request metrics. m may be nil.
func Logging(log zerolog.Logger, m *metrics.APIMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)
			route := routePattern(r)

			m.RecordRequest("http", r.Method, route, strconv.Itoa(status), duration)

			evt := log.Info()
			if status >= http.StatusInternalServerError {
				evt = log.Warn()
			}
			evt.
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Str("remote_addr", r.RemoteAddr).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", duration).
				Msg("HTTP request")
		})
	}
}

// routePattern returns the matched chi route, falling back to the path
// for unmatched requests so that labels stay bounded
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
