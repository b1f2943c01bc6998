package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ServiceName is attached to every log line as the root component
const ServiceName = "consumergraph"

// Config holds logger configuration
type Config struct {
	Level      string
	Format     string
	Output     string
	Rotation   bool
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

// Init initializes the global logger based on configuration
func Init(cfg *Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	writer, err := output(cfg)
	if err != nil {
		return err
	}

	if strings.EqualFold(cfg.Format, "text") {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
		}
	}

	log.Logger = New(writer)
	return nil
}

// New builds a logger writing JSON lines to w, tagged with the service name
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
}

func output(cfg *Config) (io.Writer, error) {
	switch cfg.Output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	if cfg.Rotation {
		return &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   true,
		}, nil
	}

	//nolint:gosec // log files are meant to be readable by operators
	file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log output: %w", err)
	}
	return file, nil
}

// Logger returns the global logger
func Logger() zerolog.Logger {
	return log.Logger
}

// WithComponent returns a logger with a component name
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}
