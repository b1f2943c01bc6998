package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MapperMetrics tracks the offsets tailer. A nil *MapperMetrics is valid and
// records nothing.
type MapperMetrics struct {
	recordsObserved *prometheus.CounterVec
	recordsSkipped  *prometheus.CounterVec
	edgesAdded      *prometheus.CounterVec
	rebalances      *prometheus.CounterVec
	pollDuration    *prometheus.HistogramVec
	pollBatchSize   *prometheus.HistogramVec
	lastUpdated     *prometheus.GaugeVec
	topics          *prometheus.GaugeVec
	edges           *prometheus.GaugeVec
	state           *prometheus.GaugeVec
}

// NewMapperMetrics initializes mapper metrics with the collector
func NewMapperMetrics(collector *Collector) *MapperMetrics {
	return &MapperMetrics{
		recordsObserved: collector.RegisterCounter(
			MetricRecordsObserved,
			"Total records read from the offsets topic",
			nil,
		),
		recordsSkipped: collector.RegisterCounter(
			MetricRecordsSkipped,
			"Records that did not produce an edge, by reason",
			[]string{LabelReason},
		),
		edgesAdded: collector.RegisterCounter(
			MetricEdgesAdded,
			"Total new topic to group edges",
			nil,
		),
		rebalances: collector.RegisterCounter(
			MetricRebalances,
			"Rebalance notifications, by kind",
			[]string{LabelKind},
		),
		pollDuration: collector.RegisterHistogram(
			MetricPollDuration,
			"Time spent in one bounded poll in seconds",
			nil,
			[]float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		),
		pollBatchSize: collector.RegisterHistogram(
			MetricPollBatchSize,
			"Records returned by one poll",
			nil,
			prometheus.ExponentialBuckets(1, 4, 6),
		),
		lastUpdated: collector.RegisterGauge(
			MetricLastUpdated,
			"Wall time of the most recent observed record",
			nil,
		),
		topics: collector.RegisterGauge(
			MetricMappingTopics,
			"Number of topics in the mapping",
			nil,
		),
		edges: collector.RegisterGauge(
			MetricMappingEdges,
			"Number of topic to group edges in the mapping",
			nil,
		),
		state: collector.RegisterGauge(
			MetricMapperState,
			"Current mapper state, 1 for the active state",
			[]string{LabelState},
		),
	}
}

// RecordPoll records the outcome of one bounded poll
func (m *MapperMetrics) RecordPoll(records int, duration time.Duration) {
	if m == nil {
		return
	}
	m.pollDuration.WithLabelValues().Observe(duration.Seconds())
	m.pollBatchSize.WithLabelValues().Observe(float64(records))
}

// RecordObserved increments the observed record counter and sets the
// freshness gauge to lastUpdatedMs
func (m *MapperMetrics) RecordObserved(lastUpdatedMs int64) {
	if m == nil {
		return
	}
	m.recordsObserved.WithLabelValues().Inc()
	m.lastUpdated.WithLabelValues().Set(float64(lastUpdatedMs) / 1000)
}

// RecordSkipped increments the skip counter for reason
func (m *MapperMetrics) RecordSkipped(reason string) {
	if m == nil {
		return
	}
	m.recordsSkipped.WithLabelValues(reason).Inc()
}

// RecordEdge increments the new edge counter
func (m *MapperMetrics) RecordEdge() {
	if m == nil {
		return
	}
	m.edgesAdded.WithLabelValues().Inc()
}

// RecordRebalance increments the rebalance counter for kind
func (m *MapperMetrics) RecordRebalance(kind string) {
	if m == nil {
		return
	}
	m.rebalances.WithLabelValues(kind).Inc()
}

// UpdateMappingSize sets the topic and edge gauges
func (m *MapperMetrics) UpdateMappingSize(topics, edges int) {
	if m == nil {
		return
	}
	m.topics.WithLabelValues().Set(float64(topics))
	m.edges.WithLabelValues().Set(float64(edges))
}

// SetState marks state as the active one among all
func (m *MapperMetrics) SetState(state string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		v := 0.0
		if s == state {
			v = 1
		}
		m.state.WithLabelValues(s).Set(v)
	}
}
