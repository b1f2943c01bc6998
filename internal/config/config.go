package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/consumergraph/consumergraph/internal/filter"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "CONSUMERGRAPH_"

// Config represents the application configuration
type Config struct {
	Kafka   KafkaConfig   `envPrefix:"KAFKA_"`
	Filters FilterConfig  `envPrefix:"FILTERS_"`
	Server  ServerConfig  `envPrefix:"SERVER_"`
	UI      UIConfig      `envPrefix:"UI_"`
	Probe   ProbeConfig   `envPrefix:"PROBE_"`
	Logging LoggingConfig `envPrefix:"LOG_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
	Tracing TracingConfig `envPrefix:"TRACING_"`

	// Configuration file path
	ConfigFile string `env:"CONFIG_FILE"`
}

// KafkaConfig holds the offsets consumer settings
type KafkaConfig struct {
	// Comma separated host:port list
	BootstrapServers string `env:"BOOTSTRAP_SERVERS"`

	GroupID  string `env:"GROUP_ID" envDefault:"topic-consumer-mapper"`
	ClientID string `env:"CLIENT_ID"`
	Topic    string `env:"TOPIC" envDefault:"__consumer_offsets"`

	// Poll timeout in milliseconds, values below 1 mean 5000
	PollTimeoutMs int `env:"POLL_TIMEOUT_MS" envDefault:"5000"`

	MaxBatch int `env:"MAX_BATCH" envDefault:"500"`

	// Extra librdkafka properties, e.g. security.protocol
	Properties map[string]string `env:"PROPERTIES"`
}

// FilterConfig holds the exclude patterns
type FilterConfig struct {
	Topic    string `env:"TOPIC"`
	Consumer string `env:"CONSUMER"`
}

// ServerConfig holds serving configuration
type ServerConfig struct {
	Host string `env:"HOST"`

	// HTTP port, required
	Port int `env:"PORT"`

	// gRPC health port, 0 disables the gRPC server
	GRPCPort int `env:"GRPC_PORT" envDefault:"0"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// UIConfig holds rendering options
type UIConfig struct {
	ClusterName string `env:"CLUSTER_NAME" envDefault:"Kafka"`

	// Style is "graph" or "tree"
	Style string `env:"STYLE" envDefault:"graph"`

	// How often WebSocket clients are checked for a changed mapping
	PushInterval time.Duration `env:"PUSH_INTERVAL" envDefault:"2s"`
}

// ProbeConfig holds the startup reachability check
type ProbeConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"1s"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	// Log level: "debug", "info", "warn", "error"
	Level string `env:"LEVEL" envDefault:"info"`

	// Log format: "json", "text"
	Format string `env:"FORMAT" envDefault:"json"`

	// Log file path (empty for stdout)
	Output string `env:"OUTPUT" envDefault:""`

	Rotation   bool `env:"ROTATION" envDefault:"true"`
	MaxSize    int  `env:"MAX_SIZE" envDefault:"100"`
	MaxBackups int  `env:"MAX_BACKUPS" envDefault:"7"`
	MaxAge     int  `env:"MAX_AGE" envDefault:"30"`
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Addr    string `env:"ADDR" envDefault:":9090"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled          bool    `env:"ENABLED" envDefault:"false"`
	Endpoint         string  `env:"ENDPOINT"`
	ExporterType     string  `env:"EXPORTER" envDefault:"grpc"`
	Insecure         bool    `env:"INSECURE" envDefault:"false"`
	SamplingStrategy string  `env:"SAMPLING_STRATEGY" envDefault:"always"`
	SamplingRate     float64 `env:"SAMPLING_RATE" envDefault:"1.0"`
}

// Default returns the configuration built from defaults only
func Default() *Config {
	cfg := &Config{}
	// Parsing an empty environment only applies envDefault tags
	if err := env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from, in increasing precedence:
// 1. Default values
// 2. Environment variables
// 3. Configuration file (.properties, .yaml or .yml)
//
// Command line flags are applied afterwards with ApplyFlags. The result is
// not validated.
func Load(path string) (*Config, error) {
	return load(path, nil)
}

func load(path string, environ map[string]string) (*Config, error) {
	cfg := &Config{}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if path == "" {
		path = cfg.ConfigFile
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.ConfigFile = path
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Kafka.BootstrapServers) == "" {
		missing = append(missing, KeyBootstrapServers)
	}
	if c.Server.Port == 0 {
		missing = append(missing, KeyPort)
	}
	if len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &InvalidValueError{Key: KeyPort, Value: fmt.Sprint(c.Server.Port), Reason: "must be between 1 and 65535"}
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return &InvalidValueError{Key: KeyGRPCPort, Value: fmt.Sprint(c.Server.GRPCPort), Reason: "must be between 0 and 65535"}
	}
	if c.Server.GRPCPort != 0 && c.Server.GRPCPort == c.Server.Port {
		return &InvalidValueError{Key: KeyGRPCPort, Value: fmt.Sprint(c.Server.GRPCPort), Reason: "must differ from the HTTP port"}
	}
	if c.Kafka.GroupID == "" {
		return &InvalidValueError{Key: KeyGroupID, Reason: "cannot be empty"}
	}
	if c.Probe.Timeout <= 0 {
		return &InvalidValueError{Key: KeyProbeTimeout, Value: c.Probe.Timeout.String(), Reason: "must be positive"}
	}

	if err := oneOf(KeyUIStyle, c.UI.Style, "graph", "tree"); err != nil {
		return err
	}
	if err := oneOf(KeyLogLevel, c.Logging.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	if err := oneOf(KeyLogFormat, c.Logging.Format, "json", "text"); err != nil {
		return err
	}

	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			return &InvalidValueError{Key: KeyTracingEndpoint, Reason: "is required when tracing is enabled"}
		}
		if err := oneOf(KeyTracingExporter, c.Tracing.ExporterType, "grpc", "http"); err != nil {
			return err
		}
		if err := oneOf(KeyTracingSampling, c.Tracing.SamplingStrategy, "always", "never", "ratio", "rate"); err != nil {
			return err
		}
	}

	if _, err := c.Policy(); err != nil {
		return err
	}

	return nil
}

// Policy compiles the exclude filters
func (c *Config) Policy() (*filter.Policy, error) {
	return filter.NewPolicy(c.Filters.Topic, c.Filters.Consumer)
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return &InvalidValueError{
		Key:    key,
		Value:  value,
		Reason: "must be one of " + strings.Join(allowed, ", "),
	}
}
