package mqtt

import "fmt"

// Topic prefixes for GridWatch MQTT publications.
//
// All topics live under the gridwatch/ root:
//
//	gridwatch/event/{event}              broadcast liveness events
//	gridwatch/user/{user_id}/{event}     user-scoped events
//	gridwatch/grid/{user_id}/state       retained current grid state
//	gridwatch/device/{mac}/updated       per-device heartbeat telemetry
//	gridwatch/system/status              service online/offline status
const (
	// TopicPrefix is the base for all GridWatch topics.
	TopicPrefix = "gridwatch"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "gridwatch/system"
)

// Topics provides builders for GridWatch MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.GridState("usr-a1b2c3d4")
//	// Returns: "gridwatch/grid/usr-a1b2c3d4/state"
type Topics struct{}

// Event returns the broadcast topic for a liveness event.
//
// Example: gridwatch/event/ext_data_updated
func (Topics) Event(event string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, event)
}

// UserEvent returns the user-scoped topic for a liveness event.
//
// Example: gridwatch/user/usr-a1b2c3d4/ext_device_updated
func (Topics) UserEvent(userID, event string) string {
	return fmt.Sprintf("%s/user/%s/%s", TopicPrefix, userID, event)
}

// GridState returns the retained grid state topic for a user.
//
// Example: gridwatch/grid/usr-a1b2c3d4/state
func (Topics) GridState(userID string) string {
	return fmt.Sprintf("%s/grid/%s/state", TopicPrefix, userID)
}

// DeviceUpdate returns the per-device heartbeat topic.
//
// Example: gridwatch/device/a4:cf:12:9f:00:01/updated
func (Topics) DeviceUpdate(mac string) string {
	return fmt.Sprintf("%s/device/%s/updated", TopicPrefix, mac)
}

// SystemStatus returns the service status topic.
//
// Example: gridwatch/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllEvents returns a pattern matching all broadcast events.
//
// Pattern: gridwatch/event/+
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/event/+", TopicPrefix)
}

// AllGridStates returns a pattern matching every user's grid state.
//
// Pattern: gridwatch/grid/+/state
func (Topics) AllGridStates() string {
	return fmt.Sprintf("%s/grid/+/state", TopicPrefix)
}
