// Package notify provides delivery sinks for liveness events.
//
// The liveness engine announces state changes through a single Notifier
// collaborator; this package supplies the concrete sinks (MQTT) and a
// fan-out that combines several sinks into one. The MQTT sink also
// doubles as a telemetry writer, publishing retained grid state and
// per-device heartbeat topics. Delivery is best-effort everywhere: a
// failed or slow sink is logged and never reaches the engine.
package notify
