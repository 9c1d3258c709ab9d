package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/Priya8975/melon-site/internal/visitor"
	"github.com/gorilla/websocket"
)

func setupTestHub(t *testing.T, opts ...HubOption) *Hub {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	hub := NewHub(logger, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func connectWS(t *testing.T, hub *Hub, owner string) (*websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r.WithContext(visitor.WithID(r.Context(), owner)))
	}))
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	dialer := websocket.Dialer{}
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect WebSocket: %v", err)
	}

	cleanup := func() {
		conn.Close()
		server.Close()
	}

	return conn, cleanup
}

func readEvent(t *testing.T, conn *websocket.Conn) BadgeEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var ev BadgeEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatalf("failed to decode event %s: %v", raw, err)
	}
	return ev
}

func TestHub_ClientConnects(t *testing.T) {
	hub := setupTestHub(t)

	conn, cleanup := connectWS(t, hub, "v1")
	defer cleanup()

	// Give the hub time to register the client
	time.Sleep(50 * time.Millisecond)

	if count := hub.ClientCount(); count != 1 {
		t.Errorf("expected 1 client, got %d", count)
	}

	conn.Close()
	time.Sleep(50 * time.Millisecond)

	if count := hub.ClientCount(); count != 0 {
		t.Errorf("expected 0 clients after disconnect, got %d", count)
	}
}

func TestHub_PublishReachesOwner(t *testing.T) {
	hub := setupTestHub(t)

	conn, cleanup := connectWS(t, hub, "v1")
	defer cleanup()

	time.Sleep(50 * time.Millisecond)

	hub.PublishBadge("v1", domain.NewBadge(3))

	ev := readEvent(t, conn)
	if ev.Type != "badge" || ev.Unread != 3 || !ev.Visible {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestHub_PublishIsScopedToOwner(t *testing.T) {
	hub := setupTestHub(t)

	conn1, cleanup1 := connectWS(t, hub, "v1")
	defer cleanup1()
	conn2, cleanup2 := connectWS(t, hub, "v2")
	defer cleanup2()

	time.Sleep(50 * time.Millisecond)

	if count := hub.ClientCount(); count != 2 {
		t.Errorf("expected 2 clients, got %d", count)
	}

	hub.PublishBadge("v2", domain.NewBadge(0))

	ev := readEvent(t, conn2)
	if ev.Visible {
		t.Errorf("expected hidden badge, got %+v", ev)
	}

	conn1.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, msg, err := conn1.ReadMessage(); err == nil {
		t.Errorf("v1 should not receive v2's event, got %s", msg)
	}
}

func TestHub_MultipleConnectionsPerOwner(t *testing.T) {
	hub := setupTestHub(t)

	conn1, cleanup1 := connectWS(t, hub, "v1")
	defer cleanup1()
	conn2, cleanup2 := connectWS(t, hub, "v1")
	defer cleanup2()

	time.Sleep(50 * time.Millisecond)

	hub.PublishBadge("v1", domain.NewBadge(1))

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		if ev := readEvent(t, conn); ev.Unread != 1 {
			t.Errorf("client %d got unread %d", i+1, ev.Unread)
		}
	}
}

func TestHub_SendsSnapshotOnConnect(t *testing.T) {
	hub := setupTestHub(t, WithSnapshot(func(_ context.Context, owner string) (domain.Badge, error) {
		if owner != "v1" {
			return domain.Badge{}, errors.New("unexpected owner")
		}
		return domain.NewBadge(2), nil
	}))

	conn, cleanup := connectWS(t, hub, "v1")
	defer cleanup()

	if ev := readEvent(t, conn); ev.Unread != 2 || !ev.Visible {
		t.Errorf("expected snapshot badge 2, got %+v", ev)
	}
}

func TestHub_RejectsMissingVisitor(t *testing.T) {
	hub := setupTestHub(t)

	rec := httptest.NewRecorder()
	hub.HandleWebSocket(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHub_AllowedOrigins(t *testing.T) {
	hub := setupTestHub(t, WithAllowedOrigins([]string{"https://melon.example"}))

	allowed := httptest.NewRequest(http.MethodGet, "/ws", nil)
	allowed.Header.Set("Origin", "https://melon.example")
	denied := httptest.NewRequest(http.MethodGet, "/ws", nil)
	denied.Header.Set("Origin", "https://evil.example")

	if !hub.upgrader.CheckOrigin(allowed) {
		t.Error("expected configured origin to be allowed")
	}
	if hub.upgrader.CheckOrigin(denied) {
		t.Error("expected unknown origin to be rejected")
	}
}

func TestHub_ClientCountStartsAtZero(t *testing.T) {
	hub := setupTestHub(t)

	if count := hub.ClientCount(); count != 0 {
		t.Errorf("expected 0 clients initially, got %d", count)
	}
}
