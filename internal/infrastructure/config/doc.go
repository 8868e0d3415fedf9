// Package config loads and validates GridWatch Core configuration.
//
// Configuration is read from a YAML file, with hardcoded defaults applied
// first and environment variable overrides (GRIDWATCH_*) applied last.
//
// # Sections
//
//   - database: SQLite path and pragmas
//   - api / websocket: HTTP server and event stream settings
//   - mqtt / influxdb: optional notification and telemetry sinks
//   - logging: level, format, destination
//   - security: JWT signing secret and token TTL
//   - liveness: ping staleness threshold and sweep interval
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	timeout := cfg.GetPingTimeout()
package config
