// Package mqtt provides MQTT client connectivity for GridWatch.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// GridWatch publishes liveness events to MQTT as an optional secondary
// notification channel alongside the WebSocket hub. Home automation
// systems and dashboards subscribe to the broker rather than holding a
// WebSocket open to the backend.
//
//	GridWatch Core → MQTT Broker → Subscribers (dashboards, automations)
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.Event("ext_data_updated")
//	client.Publish(topic, []byte(`{}`), 1, false)
package mqtt
