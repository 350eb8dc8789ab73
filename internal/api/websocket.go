package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Script-GH/Ai-tutor/internal/events"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsSendBuffer = 16
)

// wsClient is one open WebSocket connection.
type wsClient struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
}

// NotificationHub pushes job events to the WebSocket connections of the
// job's owner. It implements events.EventHandler.
type NotificationHub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[uuid.UUID]map[*wsClient]struct{}
}

var _ events.EventHandler = (*NotificationHub)(nil)

// NewNotificationHub creates an empty hub.
func NewNotificationHub(logger *slog.Logger) *NotificationHub {
	return &NotificationHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  logger.With("component", "notification_hub"),
		clients: make(map[uuid.UUID]map[*wsClient]struct{}),
	}
}

// ServeWS handles GET /api/ws. The route must be wrapped by
// AuthenticateWebSocket so the user is known before the upgrade.
func (h *NotificationHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		logger.FromContext(r.Context()).Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{userID: userID, conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.add(c)
	h.logger.Info("websocket connected", "user_id", userID, "connections", h.Connections(userID))

	go h.writePump(c)
	h.readPump(c)
}

// HandleEvent delivers event to every connection of its owner. Events of
// system jobs have no owner and are not delivered.
func (h *NotificationHub) HandleEvent(_ context.Context, event *events.JobEvent) error {
	if event.OwnerID == uuid.Nil {
		return nil
	}

	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[event.OwnerID] {
		select {
		case c.send <- msg:
		default:
			// A client that cannot keep up is dropped; it can reconnect and poll.
			h.removeLocked(c)
			h.logger.Warn("dropping slow websocket client", "user_id", c.userID)
		}
	}
	return nil
}

// Connections returns the number of open connections for userID.
func (h *NotificationHub) Connections(userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Close disconnects every client.
func (h *NotificationHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}

func (h *NotificationHub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*wsClient]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *NotificationHub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked unregisters c and closes its send channel, which stops the
// write pump. It is a no-op for clients already removed.
func (h *NotificationHub) removeLocked(c *wsClient) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
}

// readPump discards client messages and returns when the connection fails
// or closes.
func (h *NotificationHub) readPump(c *wsClient) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
		h.logger.Info("websocket disconnected", "user_id", c.userID)
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

// writePump sends queued events and keepalive pings until the send channel
// is closed.
func (h *NotificationHub) writePump(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
