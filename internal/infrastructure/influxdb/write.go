package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteGridState records a grid power transition for a user.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - userID: User whose grid state changed
//   - gridState: The new state (true = power on)
//   - at: When the transition was inferred
//
// Example:
//
//	client.WriteGridState("usr-a1b2c3d4", false, time.Now().UTC())
func (c *Client) WriteGridState(userID string, gridState bool, at time.Time) {
	if !c.IsConnected() {
		return
	}

	value := 0
	if gridState {
		value = 1
	}

	point := write.NewPoint(
		"grid_state",
		map[string]string{
			"user_id": userID,
		},
		map[string]interface{}{
			"state": value,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceUptime records a device's reported uptime counter.
//
// Uptime resets on reboot, so a sawtooth in this series marks device
// restarts.
//
// Parameters:
//   - mac: Device hardware address
//   - userID: Owning user
//   - uptime: Reported uptime in seconds
//   - at: Heartbeat arrival time
func (c *Client) WriteDeviceUptime(mac, userID string, uptime int64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_heartbeat",
		map[string]string{
			"mac":     mac,
			"user_id": userID,
		},
		map[string]interface{}{
			"uptime_seconds": uptime,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
