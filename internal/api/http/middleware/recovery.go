package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recovery recovers from panics and returns a 500 error
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error().
						Interface("error", err).
						Str("path", r.URL.Path).
						Bytes("stack", debug.Stack()).
						Msg("HTTP handler panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					//nolint:errcheck // best effort
					_, _ = w.Write([]byte(`{"error":"internal server error","status":500}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
