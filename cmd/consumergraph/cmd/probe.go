package cmd

import (
	"fmt"

	"github.com/consumergraph/consumergraph/internal/broker"
	"github.com/consumergraph/consumergraph/internal/config"
	"github.com/spf13/cobra"
)

func newProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that every bootstrap server accepts TCP connections",
		Long: `Open and close one TCP connection to each bootstrap server, bounded by
probe.timeout, and exit non-zero on the first one that fails.

Examples:
  consumergraph probe -c consumergraph.properties
  consumergraph probe --bootstrap-servers kafka-1:9092,kafka-2:9092`,
		Args: cobra.NoArgs,
		RunE: runProbe,
	}
}

func runProbe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	addrs := broker.SplitAddrs(cfg.Kafka.BootstrapServers)
	if len(addrs) == 0 {
		return &config.MissingKeysError{Keys: []string{config.KeyBootstrapServers}}
	}

	if err := broker.Probe(cmd.Context(), addrs, cfg.Probe.Timeout); err != nil {
		return err
	}

	for _, addr := range addrs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s reachable\n", addr)
	}
	return nil
}
