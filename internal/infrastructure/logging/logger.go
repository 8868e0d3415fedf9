package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gridwatch/gridwatch-core/internal/infrastructure/config"
)

// Logger wraps slog.Logger for structured, levelled logging across
// GridWatch. Every line carries the service name and version so log
// aggregation can separate instances.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New builds a logger from configuration.
//
// Format selects the handler (json for production ingestion, text for
// local development), output selects stdout or stderr, and level
// filters below the configured threshold.
//
// Parameters:
//   - cfg: Logging configuration from config.yaml
//   - version: Application version stamped onto every record
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "gridwatch"),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// parseLevel maps a config string to a slog level. Unrecognised values
// fall back to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger carrying additional default attributes.
//
// Parameters:
//   - args: Key-value pairs added to every record
//
// Returns:
//   - *Logger: New logger with the added attributes
//
// Example:
//
//	engineLogger := logger.With("component", "liveness")
//	engineLogger.Info("sweep complete") // Includes component=liveness
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Default returns a logger for use before configuration is loaded:
// JSON to stdout at info level.
//
// Returns:
//   - *Logger: Default logger
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
