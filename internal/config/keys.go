package config

import (
	"strconv"
	"strings"
	"time"
)

// Config file keys
const (
	KeyBootstrapServers = "bootstrap.servers"
	KeyPort             = "port"
	KeyHost             = "host"
	KeyGRPCPort         = "grpc.port"
	KeyTopicFilter      = "filters.topic"
	KeyConsumerFilter   = "filters.consumer"
	KeyClusterName      = "cluster.name"
	KeyUIStyle          = "ui.style"
	KeyPushInterval     = "ui.push.interval"
	KeyTimeout          = "timeout"
	KeyGroupID          = "group.id"
	KeyClientID         = "client.id"
	KeyTopic            = "topic"
	KeyMaxBatch         = "max.batch"
	KeyProbeEnabled     = "probe.enabled"
	KeyProbeTimeout     = "probe.timeout"
	KeyShutdownTimeout  = "shutdown.timeout"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyLogOutput        = "log.output"
	KeyMetricsEnabled   = "metrics.enabled"
	KeyMetricsAddr      = "metrics.addr"
	KeyMetricsPath      = "metrics.path"
	KeyTracingEnabled   = "tracing.enabled"
	KeyTracingEndpoint  = "tracing.endpoint"
	KeyTracingExporter  = "tracing.exporter"
	KeyTracingInsecure  = "tracing.insecure"
	KeyTracingSampling  = "tracing.sampling.strategy"
	KeyTracingRate      = "tracing.sampling.rate"

	// KafkaPropertyPrefix marks keys passed through to the Kafka client
	KafkaPropertyPrefix = "kafka."
)

type setter func(cfg *Config, value string) error

var setters = map[string]setter{
	KeyBootstrapServers: setString(func(c *Config) *string { return &c.Kafka.BootstrapServers }),
	KeyPort:             setInt(KeyPort, func(c *Config) *int { return &c.Server.Port }),
	KeyHost:             setString(func(c *Config) *string { return &c.Server.Host }),
	KeyGRPCPort:         setInt(KeyGRPCPort, func(c *Config) *int { return &c.Server.GRPCPort }),
	KeyTopicFilter:      setString(func(c *Config) *string { return &c.Filters.Topic }),
	KeyConsumerFilter:   setString(func(c *Config) *string { return &c.Filters.Consumer }),
	KeyClusterName:      setString(func(c *Config) *string { return &c.UI.ClusterName }),
	KeyUIStyle:          setString(func(c *Config) *string { return &c.UI.Style }),
	KeyPushInterval:     setDuration(KeyPushInterval, func(c *Config) *time.Duration { return &c.UI.PushInterval }),
	KeyTimeout:          setInt(KeyTimeout, func(c *Config) *int { return &c.Kafka.PollTimeoutMs }),
	KeyGroupID:          setString(func(c *Config) *string { return &c.Kafka.GroupID }),
	KeyClientID:         setString(func(c *Config) *string { return &c.Kafka.ClientID }),
	KeyTopic:            setString(func(c *Config) *string { return &c.Kafka.Topic }),
	KeyMaxBatch:         setInt(KeyMaxBatch, func(c *Config) *int { return &c.Kafka.MaxBatch }),
	KeyProbeEnabled:     setBool(KeyProbeEnabled, func(c *Config) *bool { return &c.Probe.Enabled }),
	KeyProbeTimeout:     setDuration(KeyProbeTimeout, func(c *Config) *time.Duration { return &c.Probe.Timeout }),
	KeyShutdownTimeout:  setDuration(KeyShutdownTimeout, func(c *Config) *time.Duration { return &c.Server.ShutdownTimeout }),
	KeyLogLevel:         setString(func(c *Config) *string { return &c.Logging.Level }),
	KeyLogFormat:        setString(func(c *Config) *string { return &c.Logging.Format }),
	KeyLogOutput:        setString(func(c *Config) *string { return &c.Logging.Output }),
	KeyMetricsEnabled:   setBool(KeyMetricsEnabled, func(c *Config) *bool { return &c.Metrics.Enabled }),
	KeyMetricsAddr:      setString(func(c *Config) *string { return &c.Metrics.Addr }),
	KeyMetricsPath:      setString(func(c *Config) *string { return &c.Metrics.Path }),
	KeyTracingEnabled:   setBool(KeyTracingEnabled, func(c *Config) *bool { return &c.Tracing.Enabled }),
	KeyTracingEndpoint:  setString(func(c *Config) *string { return &c.Tracing.Endpoint }),
	KeyTracingExporter:  setString(func(c *Config) *string { return &c.Tracing.ExporterType }),
	KeyTracingInsecure:  setBool(KeyTracingInsecure, func(c *Config) *bool { return &c.Tracing.Insecure }),
	KeyTracingSampling:  setString(func(c *Config) *string { return &c.Tracing.SamplingStrategy }),
	KeyTracingRate:      setFloat(KeyTracingRate, func(c *Config) *float64 { return &c.Tracing.SamplingRate }),
}

// Set assigns one key in the flat config file namespace. Keys under
// "kafka." are passed through to the Kafka client; unknown keys are
// reported as false.
func (c *Config) Set(key, value string) (bool, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	if prop, ok := strings.CutPrefix(key, KafkaPropertyPrefix); ok && prop != "" {
		if c.Kafka.Properties == nil {
			c.Kafka.Properties = make(map[string]string)
		}
		c.Kafka.Properties[prop] = value
		return true, nil
	}

	set, ok := setters[key]
	if !ok {
		return false, nil
	}
	return true, set(c, value)
}

func setString(field func(*Config) *string) setter {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(key string, field func(*Config) *int) setter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &InvalidValueError{Key: key, Value: v, Err: err}
		}
		*field(c) = n
		return nil
	}
}

func setBool(key string, field func(*Config) *bool) setter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &InvalidValueError{Key: key, Value: v, Err: err}
		}
		*field(c) = b
		return nil
	}
}

func setFloat(key string, field func(*Config) *float64) setter {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return &InvalidValueError{Key: key, Value: v, Err: err}
		}
		*field(c) = f
		return nil
	}
}

// setDuration accepts Go durations and bare integers as milliseconds
func setDuration(key string, field func(*Config) *time.Duration) setter {
	return func(c *Config, v string) error {
		if ms, err := strconv.Atoi(v); err == nil {
			*field(c) = time.Duration(ms) * time.Millisecond
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return &InvalidValueError{Key: key, Value: v, Err: err}
		}
		*field(c) = d
		return nil
	}
}
