package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics tracks HTTP and gRPC serving
type APIMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	websocketClients *prometheus.GaugeVec
}

// NewAPIMetrics initializes API metrics with the collector
func NewAPIMetrics(collector *Collector) *APIMetrics {
	return &APIMetrics{
		requestsTotal: collector.RegisterCounter(
			MetricAPIRequestsTotal,
			"Total HTTP/gRPC requests by transport, method, endpoint, and status",
			[]string{LabelTransport, LabelMethod, LabelEndpoint, LabelStatus},
		),
		requestDuration: collector.RegisterHistogram(
			MetricAPIRequestDuration,
			"API request latency in seconds",
			[]string{LabelTransport, LabelMethod, LabelEndpoint},
			prometheus.DefBuckets,
		),
		websocketClients: collector.RegisterGauge(
			MetricWebSocketClients,
			"Connected WebSocket clients",
			nil,
		),
	}
}

// RecordRequest records one served request
func (m *APIMetrics) RecordRequest(transport, method, endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(transport, method, endpoint).Observe(duration.Seconds())
	m.requestsTotal.WithLabelValues(transport, method, endpoint, status).Inc()
}

// SetWebSocketClients sets the connected client gauge
func (m *APIMetrics) SetWebSocketClients(n int) {
	if m == nil {
		return
	}
	m.websocketClients.WithLabelValues().Set(float64(n))
}
