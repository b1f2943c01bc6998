package tracing

// Span attribute keys
const (
	AttrClusterName = "consumergraph.cluster"
	AttrTopic       = "messaging.destination.name"
	AttrGroup       = "messaging.consumer.group.name"
	AttrPartition   = "messaging.destination.partition.id"

	AttrBatchSize    = "consumergraph.batch.records"
	AttrEdgesAdded   = "consumergraph.batch.edges_added"
	AttrSkipped      = "consumergraph.batch.skipped"
	AttrObservations = "consumergraph.mapping.observations"
	AttrMapperState  = "consumergraph.mapper.state"

	// HTTP attributes (OpenTelemetry semantic conventions)
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"
	AttrHTTPUserAgent  = "http.user_agent"

	// gRPC attributes (OpenTelemetry semantic conventions)
	AttrRPCService = "rpc.service"
	AttrRPCMethod  = "rpc.method"
	AttrRPCStatus  = "rpc.status_code"
)
