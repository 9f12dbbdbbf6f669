package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/securebank/payment-core/internal/domain"
	"github.com/securebank/payment-core/internal/logger"
)

const clientSendBuffer = 16
const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is the wire frame pushed to connected clients.
type Event struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan Event
}

// Hub fans domain events out to each user's open websocket connections.
// Publish never blocks: a client whose buffer is full misses the event
// and a client whose write fails is dropped from the registry.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

var _ domain.EventSink = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*client]struct{})}
}

// ServeWS upgrades the request and registers the connection for the given
// user until the peer disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", err, logger.Fields{"userId": userID})
		return
	}

	c := &client{userID: userID, conn: conn, send: make(chan Event, clientSendBuffer)}
	h.register(c)
	logger.Info("websocket client connected", logger.Fields{"userId": userID})

	go c.writeLoop(h)
	c.readLoop(h)
}

func (h *Hub) Publish(eventType string, userID string, payload map[string]any) {
	event := Event{Type: eventType, Timestamp: time.Now().UTC(), Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- event:
		default:
			// Slow consumer; skip rather than stall the publisher.
		}
	}
}

// ConnectionCount reports the number of open connections for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.userID]; ok {
		if _, ok := conns[c]; ok {
			delete(conns, c)
			close(c.send)
			if len(conns) == 0 {
				delete(h.clients, c.userID)
			}
		}
	}
}

func (c *client) writeLoop(h *Hub) {
	defer c.conn.Close()
	for event := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(event); err != nil {
			h.unregister(c)
			return
		}
	}
}

// readLoop drains and discards inbound frames; it exists to notice the
// peer going away.
func (c *client) readLoop(h *Hub) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		logger.Info("websocket client disconnected", logger.Fields{"userId": c.userID})
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
