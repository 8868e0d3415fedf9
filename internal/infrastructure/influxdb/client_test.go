package influxdb

import (
	"errors"
	"testing"
	"time"

	"github.com/gridwatch/gridwatch-core/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got: %v", err)
	}
}

func TestCloseNil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close on unconnected client: %v", err)
	}
}

func TestWritesOnDisconnectedClientAreNoOps(t *testing.T) {
	c := &Client{}

	// None of these may panic or block when disconnected.
	c.WriteGridState("usr-1", true, time.Now().UTC())
	c.WriteDeviceUptime("AA:BB", "usr-1", 42, time.Now().UTC())
	c.WritePoint("custom", map[string]string{"k": "v"}, map[string]interface{}{"f": 1})
	c.Flush()
}

func TestIsConnectedInitialState(t *testing.T) {
	c := &Client{}
	if c.IsConnected() {
		t.Error("zero-value client reports connected")
	}
}
