// Package logging provides structured logging for the EOD chart core.
//
// It wraps log/slog so every component logs with the same handler, level
// filter and default fields (service, version).
//
// Logging is configured via the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Component("chartconfig").Info("config assembled", "building_id", 31)
//
// Never log the InfluxDB token or MQTT credentials.
package logging
