// Package logging provides structured logging for GridWatch Core.
//
// It wraps log/slog with configuration-driven level, format and output
// selection, and stamps the service name and version onto every
// record.
//
// # Configuration
//
// Logging is configured through the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("starting service", "port", 8080)
//
//	sweepLogger := logger.With("component", "sweep")
//	sweepLogger.Warn("device has no resolvable owner, skipped", "mac", mac)
//
// Never log secrets, tokens, passwords, or API keys.
package logging
