package handlers

import (
	"net/http"
)

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ReadinessProbe reports whether the service can answer with live data
type ReadinessProbe interface {
	Ready() bool
}

// ReadyFunc adapts a function to ReadinessProbe
type ReadyFunc func() bool

// Ready calls f
func (f ReadyFunc) Ready() bool { return f() }

// HealthCheck handles liveness requests
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// ReadinessCheck returns a handler that reports ready while probe is ready
func ReadinessCheck(probe ReadinessProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if probe == nil || !probe.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not ready",
				Message: "offsets consumer is not polling",
			})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
	}
}
