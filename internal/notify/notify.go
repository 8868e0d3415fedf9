package notify

import (
	"time"

	"github.com/gridwatch/gridwatch-core/internal/infrastructure/logging"
	"github.com/gridwatch/gridwatch-core/internal/infrastructure/mqtt"
	"github.com/gridwatch/gridwatch-core/internal/liveness"
)

// Multi fans one event out to several sinks in order.
type Multi struct {
	sinks []liveness.Notifier
}

// NewMulti combines sinks into a single Notifier. Nil sinks are skipped,
// so optional channels can be passed unconditionally.
func NewMulti(sinks ...liveness.Notifier) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// NotifyUser delivers a user-scoped event to every sink.
func (m *Multi) NotifyUser(userID, event string) {
	for _, s := range m.sinks {
		s.NotifyUser(userID, event)
	}
}

// Broadcast delivers an event to every sink.
func (m *Multi) Broadcast(event string) {
	for _, s := range m.sinks {
		s.Broadcast(event)
	}
}

// MQTTSink publishes liveness events to the MQTT broker.
//
// Publishes happen on their own goroutine so a slow broker never stalls
// the engine; failures are logged and dropped.
type MQTTSink struct {
	client *mqtt.Client
	topics mqtt.Topics
	logger *logging.Logger
}

// NewMQTTSink creates a sink over a connected MQTT client.
//
// Parameters:
//   - client: Connected MQTT client
//   - logger: Structured logger for delivery failures
//
// Returns:
//   - *MQTTSink: Sink ready for use
func NewMQTTSink(client *mqtt.Client, logger *logging.Logger) *MQTTSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &MQTTSink{
		client: client,
		logger: logger.With("component", "notify_mqtt"),
	}
}

type eventPayload struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
}

// NotifyUser publishes a user-scoped event to gridwatch/user/{id}/{event}.
func (s *MQTTSink) NotifyUser(userID, event string) {
	topic := s.topics.UserEvent(userID, event)
	s.publish(topic, event)
}

// Broadcast publishes an event to gridwatch/event/{event}.
func (s *MQTTSink) Broadcast(event string) {
	topic := s.topics.Event(event)
	s.publish(topic, event)
}

type gridStatePayload struct {
	UserID    string `json:"userId"`
	GridState bool   `json:"gridState"`
	Timestamp string `json:"timestamp"`
}

// WriteGridState publishes the current grid state for a user as a
// retained message, so late subscribers receive the latest state on
// connect. Implements liveness.MetricsWriter.
func (s *MQTTSink) WriteGridState(userID string, gridState bool, at time.Time) {
	topic := s.topics.GridState(userID)
	payload := gridStatePayload{
		UserID:    userID,
		GridState: gridState,
		Timestamp: at.UTC().Format(time.RFC3339),
	}

	go func() {
		if err := s.client.PublishJSON(topic, payload, true); err != nil {
			s.logger.Warn("grid state publish failed",
				"topic", topic,
				"error", err,
			)
		}
	}()
}

type deviceUpdatePayload struct {
	MACAddress string `json:"macAddress"`
	UserID     string `json:"userId"`
	Uptime     int64  `json:"uptime"`
	Timestamp  string `json:"timestamp"`
}

// WriteDeviceUptime publishes per-device heartbeat telemetry.
// Implements liveness.MetricsWriter.
func (s *MQTTSink) WriteDeviceUptime(mac, userID string, uptime int64, at time.Time) {
	topic := s.topics.DeviceUpdate(mac)
	payload := deviceUpdatePayload{
		MACAddress: mac,
		UserID:     userID,
		Uptime:     uptime,
		Timestamp:  at.UTC().Format(time.RFC3339),
	}

	go func() {
		if err := s.client.PublishJSON(topic, payload, false); err != nil {
			s.logger.Warn("device update publish failed",
				"topic", topic,
				"error", err,
			)
		}
	}()
}

// MultiMetrics fans metric writes out to several writers.
type MultiMetrics struct {
	writers []liveness.MetricsWriter
}

// NewMultiMetrics combines metric writers into one. Nil writers are
// skipped, so optional sinks can be passed unconditionally.
func NewMultiMetrics(writers ...liveness.MetricsWriter) *MultiMetrics {
	m := &MultiMetrics{}
	for _, w := range writers {
		if w != nil {
			m.writers = append(m.writers, w)
		}
	}
	return m
}

// WriteGridState delivers a grid state point to every writer.
func (m *MultiMetrics) WriteGridState(userID string, gridState bool, at time.Time) {
	for _, w := range m.writers {
		w.WriteGridState(userID, gridState, at)
	}
}

// WriteDeviceUptime delivers a device uptime point to every writer.
func (m *MultiMetrics) WriteDeviceUptime(mac, userID string, uptime int64, at time.Time) {
	for _, w := range m.writers {
		w.WriteDeviceUptime(mac, userID, uptime, at)
	}
}

func (s *MQTTSink) publish(topic, event string) {
	payload := eventPayload{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	go func() {
		if err := s.client.PublishJSON(topic, payload, false); err != nil {
			s.logger.Warn("event publish failed",
				"topic", topic,
				"error", err,
			)
		}
	}()
}
