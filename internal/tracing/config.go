package tracing

// Sampling strategies
const (
	SamplingAlways = "always"
	SamplingNever  = "never"
	SamplingRatio  = "ratio"
	// SamplingRate treats SamplingRate as traces per second against a
	// baseline of BaselineRate poll batches or requests per second
	SamplingRate = "rate"
)

// BaselineRate is the assumed span rate used to turn a per-second rate into
// a sampling probability
const BaselineRate = 100.0

// TracingConfig holds configuration for OpenTelemetry tracing
type TracingConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP collector host:port
	Endpoint string
	Insecure bool
	Headers  map[string]string

	// ExporterType is "grpc" or "http"
	ExporterType string

	// SamplingStrategy is one of always, never, ratio, rate
	SamplingStrategy string

	// SamplingRate is a probability for "ratio" and traces per second for "rate"
	SamplingRate float64
}

// DefaultTracingConfig returns a default tracing configuration
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Enabled:          false,
		ServiceName:      "consumergraph",
		ServiceVersion:   "dev",
		Headers:          make(map[string]string),
		ExporterType:     "grpc",
		SamplingStrategy: SamplingAlways,
		SamplingRate:     1.0,
	}
}
