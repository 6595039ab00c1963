package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/engine"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/infra"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (CORS handled by the HTTP server)
		return true
	},
}

// Hub maintains active WebSocket connections and broadcasts engine
// snapshots to them. Slow clients are skipped, never blocked on.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	metrics *infra.Metrics
}

// NewHub creates an empty hub.
func NewHub(metrics *infra.Metrics) *Hub {
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	return &Hub{
		clients: make(map[*websocket.Conn]chan []byte),
		metrics: metrics,
	}
}

// Broadcast sends a JSON-encoded engine snapshot to every connected client.
func (h *Hub) Broadcast(snap engine.Snapshot) {
	message, err := json.Marshal(snap)
	if err != nil {
		slog.Error("Broadcast marshal failed", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, send := range h.clients {
		select {
		case send <- message:
		default:
			// Buffer full, skip this client
		}
	}
}

// HandleWS upgrades the request and serves the client until it disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	send := make(chan []byte, 16)

	h.mu.Lock()
	h.clients[conn] = send
	total := len(h.clients)
	h.mu.Unlock()
	h.metrics.IncrementStreamClients()
	slog.Info("Stream client connected", slog.Int("total", total))

	go h.writePump(conn, send)
	h.readLoop(conn)
}

// readLoop drains (and discards) inbound frames; its only job is detecting
// the close.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, send <-chan []byte) {
	for message := range send {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	send, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		conn.Close()
		h.metrics.DecrementStreamClients()
		slog.Info("Stream client disconnected", slog.Int("total", total))
	}
}

// ClientCount returns the number of connected stream clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
