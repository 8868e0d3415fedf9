// Package influxdb provides time-series telemetry writes for GridWatch.
//
// This package manages:
//   - Connection to InfluxDB v2 with token authentication
//   - Non-blocking batched writes of grid state and device telemetry
//   - Health monitoring and graceful flush on shutdown
//
// InfluxDB is an optional sink; the service runs without it and the
// liveness engine simply skips telemetry when no writer is configured.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteGridState("usr-a1b2c3d4", true, time.Now().UTC())
package influxdb
