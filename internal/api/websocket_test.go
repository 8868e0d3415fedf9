package api

import (
	"encoding/json"
	"testing"

	"github.com/gridwatch/gridwatch-core/internal/infrastructure/config"
	"github.com/gridwatch/gridwatch-core/internal/infrastructure/logging"
)

// newTestClient attaches a connection-less client to the hub for
// delivery tests.
func newTestClient(hub *Hub, userID string, channels ...string) *WSClient {
	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
		userID:        userID,
	}
	for _, ch := range channels {
		client.subscriptions[ch] = struct{}{}
	}
	hub.Register(client)
	return client
}

// drain returns the event types queued on a client's send channel.
func drain(t *testing.T, client *WSClient) []string {
	t.Helper()

	var events []string
	for {
		select {
		case data := <-client.send:
			var msg WSMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("unmarshalling queued message: %v", err)
			}
			events = append(events, msg.EventType)
		default:
			return events
		}
	}
}

func newTestHub() *Hub {
	return NewHub(config.WebSocketConfig{
		MaxMessageSize: 4096,
		PingInterval:   30,
		PongTimeout:    60,
	}, logging.Default())
}

func TestHubBroadcastReachesSubscribers(t *testing.T) {
	hub := newTestHub()
	subscribed := newTestClient(hub, "usr-1", "ext_data_updated")
	unsubscribed := newTestClient(hub, "usr-2")

	hub.Broadcast("ext_data_updated")

	if got := drain(t, subscribed); len(got) != 1 || got[0] != "ext_data_updated" {
		t.Errorf("subscribed client got %v, want one ext_data_updated", got)
	}
	if got := drain(t, unsubscribed); len(got) != 0 {
		t.Errorf("unsubscribed client got %v, want none", got)
	}
}

func TestHubNotifyUserScopesDelivery(t *testing.T) {
	hub := newTestHub()
	owner := newTestClient(hub, "usr-1", "ext_device_updated")
	other := newTestClient(hub, "usr-2", "ext_device_updated")

	hub.NotifyUser("usr-1", "ext_device_updated")

	if got := drain(t, owner); len(got) != 1 {
		t.Errorf("owner got %v, want one event", got)
	}
	if got := drain(t, other); len(got) != 0 {
		t.Errorf("other user got %v, want none", got)
	}
}

func TestHubNotifyUserEmptyIDIsNoOp(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "", "ext_device_updated")

	hub.NotifyUser("", "ext_device_updated")

	if got := drain(t, client); len(got) != 0 {
		t.Errorf("anonymous client got %v, want none", got)
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "usr-1")

	hub.Unregister(client)

	if _, ok := <-client.send; ok {
		t.Error("send channel still open after unregister")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", hub.ClientCount())
	}

	// A second unregister must not panic on double close.
	hub.Unregister(client)
}

func TestClientSubscribeProtocol(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "usr-1")

	client.handleMessage([]byte(`{"type":"subscribe","id":"1","payload":{"channels":["ext_data_updated"]}}`))

	if !client.isSubscribed("ext_data_updated") {
		t.Error("client not subscribed after subscribe message")
	}

	// The acknowledgement should be queued.
	if got := len(client.send); got != 1 {
		t.Errorf("queued messages = %d, want 1 ack", got)
	}

	client.handleMessage([]byte(`{"type":"unsubscribe","id":"2","payload":{"channels":["ext_data_updated"]}}`))

	if client.isSubscribed("ext_data_updated") {
		t.Error("client still subscribed after unsubscribe message")
	}
}

func TestClientRejectsMalformedMessages(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "usr-1")

	client.handleMessage([]byte(`{not json`))

	data := <-client.send
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshalling error response: %v", err)
	}
	if msg.Type != WSTypeError {
		t.Errorf("response type = %q, want %q", msg.Type, WSTypeError)
	}
}
