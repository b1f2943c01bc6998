package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/consumergraph/consumergraph/internal/app"
	"github.com/consumergraph/consumergraph/internal/config"
	"github.com/consumergraph/consumergraph/internal/logger"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Running the root command starts
// the service.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "consumergraph",
		Short: "Map Kafka topics to the consumer groups committing offsets on them",
		Long: `consumergraph reads the __consumer_offsets topic from the beginning and
keeps a live topic -> consumer group mapping, served as an HTML page, JSON
and a WebSocket feed.

Configuration is read from defaults, CONSUMERGRAPH_* environment variables,
the file given with -c (.properties, .yaml or .yml) and flags, in that order.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.PersistentFlags().StringP("config", "c", "", "Config file (.properties, .yaml, .yml)")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newProbeCommand())
	root.AddCommand(newDecodeCommand())
	root.AddCommand(newVersionCommand())

	return root
}

// Execute runs the root command against os.Args
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// loadConfig merges the config sources, flags last
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(&logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		Rotation:   cfg.Logging.Rotation,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Run(ctx)
}
