package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/consumergraph/consumergraph/internal/offsets"
	"github.com/spf13/cobra"
)

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex-key>",
		Short: "Decode one __consumer_offsets record key",
		Long: `Decode a record key of the offsets topic given as hex, as printed by
kafka-console-consumer --property print.key=true with a hex key deserializer.

Examples:
  consumergraph decode 000100026731000174000000ff`,
		Args: cobra.ExactArgs(1),
		RunE: runDecode,
	}
}

func runDecode(cmd *cobra.Command, args []string) error {
	raw := strings.TrimPrefix(strings.TrimSpace(args[0]), "0x")
	key, err := hex.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("invalid hex key: %w", err)
	}

	decoded, err := offsets.DecodeKey(key)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), decoded)
	return nil
}
