package config

import (
	"github.com/spf13/pflag"
)

// flagKeys maps command line flags to config file keys
var flagKeys = map[string]string{
	"bootstrap-servers": KeyBootstrapServers,
	"port":              KeyPort,
	"host":              KeyHost,
	"grpc-port":         KeyGRPCPort,
	"filter-topic":      KeyTopicFilter,
	"filter-consumer":   KeyConsumerFilter,
	"cluster-name":      KeyClusterName,
	"ui-style":          KeyUIStyle,
	"timeout":           KeyTimeout,
	"group-id":          KeyGroupID,
	"probe-timeout":     KeyProbeTimeout,
	"log-level":         KeyLogLevel,
	"log-format":        KeyLogFormat,
	"metrics-addr":      KeyMetricsAddr,
}

// RegisterFlags defines the override flags on fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("bootstrap-servers", "", "Comma separated Kafka bootstrap servers")
	fs.Int("port", 0, "HTTP port")
	fs.String("host", "", "HTTP listen host")
	fs.Int("grpc-port", 0, "gRPC health port (0 disables)")
	fs.String("filter-topic", "", "Regex of topics to exclude")
	fs.String("filter-consumer", "", "Regex of consumer groups to exclude")
	fs.String("cluster-name", "", "Cluster name shown as the tree root")
	fs.String("ui-style", "", "Page style: graph or tree")
	fs.Int("timeout", 0, "Poll timeout in milliseconds")
	fs.String("group-id", "", "Consumer group used to read the offsets topic")
	fs.Duration("probe-timeout", 0, "Broker reachability probe timeout")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("log-format", "", "Log format (json, text)")
	fs.String("metrics-addr", "", "Metrics listen address")
}

// ApplyFlags overlays every flag the user set on cfg
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		_, err = c.Set(key, f.Value.String())
	})
	return err
}
