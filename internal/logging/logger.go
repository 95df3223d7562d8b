package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"shareit/internal/config"

	"github.com/rs/zerolog"
)

// New builds the process logger for one binary (service is "api" or "gateway").
// Empty settings mean JSON at info level on stdout.
func New(cfg config.LoggingConfig, app config.AppConfig, service string) (*zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level))); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	output, closer, err := openOutput(cfg)
	if err != nil {
		return nil, nil, err
	}

	if strings.EqualFold(strings.TrimSpace(cfg.Format), "console") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	ctx := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("app", app.Name).
		Str("env", app.Environment).
		Str("version", app.Version)
	if service != "" {
		ctx = ctx.Str("service", service)
	}
	base := ctx.Logger()

	return &base, closer, nil
}

func openOutput(cfg config.LoggingConfig) (io.Writer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logging.output=file requires logging.file_path")
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return file, file, nil
	default:
		return nil, nil, fmt.Errorf("unsupported logging.output %q", cfg.Output)
	}
}

// Component returns a child logger tagged with the component name. A nil base
// yields a disabled logger so constructors can accept optional loggers.
func Component(base *zerolog.Logger, name string) *zerolog.Logger {
	if base == nil {
		nop := zerolog.Nop()
		return &nop
	}
	l := base.With().Str("component", name).Logger()
	return &l
}
