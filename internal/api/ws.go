package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/DH-11027/paradise/pkg/logger"
)

// Event is one websocket push to dashboard clients.
type Event struct {
	Type      string      `json:"type"`
	Code      string      `json:"code,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub fans analysis snapshots out to connected dashboard clients.
// ⭐ SSOT: 웹소켓 브로드캐스트는 이 허브에서만
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
	connMu     map[*websocket.Conn]*sync.Mutex
	logger     *logger.Logger

	writeTimeout time.Duration
}

// NewHub creates a hub; call Run in its own goroutine.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:      make(map[*websocket.Conn]bool),
		broadcast:    make(chan Event, 100),
		register:     make(chan *websocket.Conn),
		unregister:   make(chan *websocket.Conn),
		connMu:       make(map[*websocket.Conn]*sync.Mutex),
		logger:       log.WithField("module", "ws"),
		writeTimeout: 10 * time.Second,
	}
}

// Run owns the client set and routes broadcasts.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.connMu[conn] = &sync.Mutex{}
			h.mu.Unlock()
			h.logger.WithField("clients", h.ClientCount()).Debug("Websocket client connected")

		case conn := <-h.unregister:
			h.remove(conn)
			h.logger.WithField("clients", h.ClientCount()).Debug("Websocket client disconnected")

		case ev := <-h.broadcast:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			// drop dead clients inline; sending to unregister here would
			// block Run on its own channel
			for _, conn := range conns {
				if err := h.send(conn, ev); err != nil {
					h.remove(conn)
				}
			}
		}
	}
}

// remove closes a connection and forgets it. Safe to call for a
// connection that is already gone.
func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		delete(h.connMu, conn)
		conn.Close()
	}
}

// Broadcast queues an event for every connected client. Drops the event
// when the queue is full rather than blocking a refresh.
func (h *Hub) Broadcast(eventType, code string, data interface{}) {
	ev := Event{Type: eventType, Code: code, Data: data, Timestamp: time.Now()}
	select {
	case h.broadcast <- ev:
	default:
		h.logger.WithField("type", eventType).Warn("Broadcast queue full, dropping event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) send(conn *websocket.Conn, ev Event) error {
	h.mu.RLock()
	mu, ok := h.connMu[conn]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	return conn.WriteJSON(ev)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the dashboard is served from another origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

// serveWS upgrades the connection and parks a reader that only watches
// for close; all traffic is server to client.
func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.register <- conn

	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
