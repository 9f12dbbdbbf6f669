package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, userID)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectionCount(userID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections for %s, got %d", want, userID, hub.ConnectionCount(userID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubDeliversEventToConnectedUser(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "alice")
	waitForConnections(t, hub, "alice", 1)

	hub.Publish("payment_received", "alice", map[string]any{"amount": "250"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != "payment_received" {
		t.Errorf("expected payment_received, got %s", event.Type)
	}
	if event.Payload["amount"] != "250" {
		t.Errorf("unexpected payload %+v", event.Payload)
	}
}

func TestHubScopesEventsToUser(t *testing.T) {
	hub := NewHub()
	alice := dialHub(t, hub, "alice")
	bob := dialHub(t, hub, "bob")
	waitForConnections(t, hub, "alice", 1)
	waitForConnections(t, hub, "bob", 1)

	hub.Publish("balance_update", "bob", map[string]any{"balance": "5000"})

	_ = bob.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	if err := bob.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != "balance_update" {
		t.Errorf("expected balance_update, got %s", event.Type)
	}

	_ = alice.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if err := alice.ReadJSON(&event); err == nil {
		t.Error("expected no event for alice")
	}
}

func TestHubPublishToAbsentUserIsNoOp(t *testing.T) {
	hub := NewHub()
	hub.Publish("fraud_alert", "nobody", nil)
	if got := hub.ConnectionCount("nobody"); got != 0 {
		t.Errorf("expected no connections, got %d", got)
	}
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "alice")
	waitForConnections(t, hub, "alice", 1)

	conn.Close()
	waitForConnections(t, hub, "alice", 0)
}
