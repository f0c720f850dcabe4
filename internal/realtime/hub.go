// Package realtime pushes ranking and collaboration lifecycle events to
// connected WebSocket clients.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kollabary/backend/internal/metrics"
)

// Event types pushed to clients.
const (
	EventRankingUpdated      = "ranking.updated"
	EventCollaborationStatus = "collaboration.status"
)

// Event is the wire format for pushed updates.
type Event struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the app origin; header-based auth does
	// not apply to WebSocket, so the origin check is the gate here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub fans events out to every connected client. Slow clients are dropped
// rather than allowed to block the broadcast loop.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}

	broadcast  chan Event
	register   chan *client
	unregister chan *client
	shutdown   chan struct{}
}

// NewHub creates a hub. Run must be called for events to flow.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan Event, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
		shutdown:   make(chan struct{}),
	}
}

// Run drives the hub until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.ActiveWebSocketClients.Set(float64(n))
			h.logger.Debug("websocket client connected", "clients", n)

		case c := <-h.unregister:
			h.drop(c)

		case event := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*client, 0, len(h.clients))
			for c := range h.clients {
				targets = append(targets, c)
			}
			h.mu.RUnlock()

			for _, c := range targets {
				select {
				case c.send <- event:
				default:
					h.drop(c)
				}
			}

		case <-ctx.Done():
			// Closing shutdown unblocks any pump goroutine still trying to
			// register or unregister after the loop exits.
			close(h.shutdown)
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			metrics.ActiveWebSocketClients.Set(0)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.ActiveWebSocketClients.Set(float64(n))
}

// RankingUpdated broadcasts a fresh score and tier for an influencer.
func (h *Hub) RankingUpdated(userID string, score int, tier string) {
	h.publish(Event{
		Type:      EventRankingUpdated,
		Timestamp: time.Now().UTC(),
		Data: map[string]any{
			"influencerId": userID,
			"score":        score,
			"tier":         tier,
		},
	})
}

// CollaborationStatusChanged broadcasts a lifecycle transition.
func (h *Hub) CollaborationStatusChanged(collabID, influencerID string, status string) {
	h.publish(Event{
		Type:      EventCollaborationStatus,
		Timestamp: time.Now().UTC(),
		Data: map[string]any{
			"collaborationId": collabID,
			"influencerId":    influencerID,
			"status":          status,
		},
	})
}

func (h *Hub) publish(event Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("event dropped, broadcast buffer full", "type", event.Type)
	}
}

// HandleWebSocket upgrades the connection and attaches it to the hub.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	cl := &client{conn: conn, send: make(chan Event, sendBufferSize)}
	select {
	case h.register <- cl:
	case <-h.shutdown:
		conn.Close()
		return
	}

	go cl.writePump()
	go cl.readPump(h)
}

// readPump drains client frames so pings are answered; inbound messages are
// otherwise ignored.
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.shutdown:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
