// Package logging provides structured logging for the colo planner.
//
// It wraps log/slog with JSON output for deployments and text output for
// local work. Every record carries the service name and version.
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Component("api").Info("listening", "port", 8080)
package logging
