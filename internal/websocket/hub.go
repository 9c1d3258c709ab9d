package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/Priya8975/melon-site/internal/visitor"
	"github.com/gorilla/websocket"
)

// BadgeEvent is pushed to a visitor's widgets whenever their unread count changes.
type BadgeEvent struct {
	Type      string    `json:"type"` // "badge"
	Unread    int       `json:"unread"`
	Visible   bool      `json:"visible"`
	Timestamp time.Time `json:"timestamp"`
}

// SnapshotFunc returns the current badge for an owner. The hub sends it to a
// client right after it connects.
type SnapshotFunc func(ctx context.Context, owner string) (domain.Badge, error)

type message struct {
	owner string
	data  []byte
}

// Hub manages WebSocket connections grouped by visitor id and routes each
// published event to that visitor's connections only.
type Hub struct {
	clients    map[string]map[*client]struct{}
	mu         sync.RWMutex
	publish    chan message
	register   chan *client
	unregister chan *client
	upgrader   websocket.Upgrader
	snapshot   SnapshotFunc
	done       chan struct{}
	logger     *slog.Logger
}

type client struct {
	hub   *Hub
	owner string
	conn  *websocket.Conn
	send  chan []byte
}

type HubOption func(*Hub)

// WithAllowedOrigins restricts upgrades to the given origins. "*" allows any.
func WithAllowedOrigins(origins []string) HubOption {
	return func(h *Hub) {
		allowed := make(map[string]struct{}, len(origins))
		for _, o := range origins {
			if o == "*" {
				h.upgrader.CheckOrigin = func(*http.Request) bool { return true }
				return
			}
			allowed[o] = struct{}{}
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
}

func WithSnapshot(fn SnapshotFunc) HubOption {
	return func(h *Hub) { h.snapshot = fn }
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		clients:    make(map[string]map[*client]struct{}),
		publish:    make(chan message, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run starts the hub's event loop until ctx is cancelled. Should be called as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for owner, set := range h.clients {
				for c := range set {
					close(c.send)
				}
				delete(h.clients, owner)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[c.owner]
			if !ok {
				set = make(map[*client]struct{})
				h.clients[c.owner] = set
			}
			set[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("websocket client connected", "owner", c.owner, "total_clients", h.ClientCount())

		case c := <-h.unregister:
			h.remove(c)
			h.logger.Debug("websocket client disconnected", "owner", c.owner, "total_clients", h.ClientCount())

		case msg := <-h.publish:
			var slow []*client
			h.mu.RLock()
			for c := range h.clients[msg.owner] {
				select {
				case c.send <- msg.data:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			// Client buffer full, drop it.
			for _, c := range slow {
				h.remove(c)
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.owner]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.owner)
	}
}

// Publish sends an event to every connection of owner.
func (h *Hub) Publish(owner string, event BadgeEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal websocket event", "error", err)
		return
	}

	select {
	case h.publish <- message{owner: owner, data: data}:
	default:
		h.logger.Warn("websocket publish channel full, dropping event", "owner", owner)
	}
}

// PublishBadge lets the hub act as the notification inbox's publisher.
func (h *Hub) PublishBadge(owner string, badge domain.Badge) {
	h.Publish(owner, newBadgeEvent(badge))
}

func newBadgeEvent(badge domain.Badge) BadgeEvent {
	return BadgeEvent{
		Type:      "badge",
		Unread:    badge.Unread,
		Visible:   badge.Visible,
		Timestamp: time.Now().UTC(),
	}
}

// HandleWebSocket upgrades HTTP connections to WebSocket and registers the
// client under the request's visitor id.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	owner := visitor.FromContext(r.Context())
	if owner == "" {
		http.Error(w, "missing visitor id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:   h,
		owner: owner,
		conn:  conn,
		send:  make(chan []byte, 256),
	}

	if h.snapshot != nil {
		if badge, err := h.snapshot(r.Context(), owner); err == nil {
			if data, err := json.Marshal(newBadgeEvent(badge)); err == nil {
				c.send <- data
			}
		} else {
			h.logger.Warn("badge snapshot failed", "owner", owner, "error", err)
		}
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump reads messages from the WebSocket connection (handles pings/disconnects).
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

// writePump writes messages to the WebSocket connection.
func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
