package metrics

// Metric name constants following Prometheus naming conventions
// Format: consumergraph_{component}_{metric}_{unit}

// Mapper metrics
const (
	MetricRecordsObserved = "consumergraph_mapper_records_observed_total"
	MetricRecordsSkipped  = "consumergraph_mapper_records_skipped_total"
	MetricEdgesAdded      = "consumergraph_mapper_edges_added_total"
	MetricRebalances      = "consumergraph_mapper_rebalances_total"
	MetricPollDuration    = "consumergraph_mapper_poll_duration_seconds"
	MetricPollBatchSize   = "consumergraph_mapper_poll_batch_records"
	MetricLastUpdated     = "consumergraph_mapping_last_updated_timestamp_seconds"
	MetricMappingTopics   = "consumergraph_mapping_topics"
	MetricMappingEdges    = "consumergraph_mapping_edges"
	MetricMapperState     = "consumergraph_mapper_state"
)

// API metrics
const (
	MetricAPIRequestsTotal   = "consumergraph_api_requests_total"
	MetricAPIRequestDuration = "consumergraph_api_request_duration_seconds"
	MetricWebSocketClients   = "consumergraph_websocket_clients"
)

// Label name constants
const (
	LabelReason    = "reason"
	LabelKind      = "kind"
	LabelState     = "state"
	LabelMethod    = "method"
	LabelEndpoint  = "endpoint"
	LabelStatus    = "status"
	LabelTransport = "transport"
)

// Skip reasons for records that do not produce an edge
const (
	SkipDecodeError   = "decode_error"
	SkipGroupMetadata = "group_metadata"
	SkipUnknownSchema = "unknown_schema"
	SkipFiltered      = "filtered"
)

// Rebalance kinds
const (
	RebalanceAssigned = "assigned"
	RebalanceRevoked  = "revoked"
)
