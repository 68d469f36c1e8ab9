package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mindmash/backend/internal/domain"
)

// Hub tracks live sockets by connection id and serializes writes per
// socket.
type Hub struct {
	connections map[string]*websocket.Conn

	// writeMu ensures only one goroutine writes to a specific socket at a
	// time; conn.WriteJSON is not thread-safe.
	writeMu map[string]*sync.Mutex

	mu sync.RWMutex // protects the maps themselves
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*websocket.Conn),
		writeMu:     make(map[string]*sync.Mutex),
	}
}

// Add registers a new connection and initializes its write lock.
func (h *Hub) Add(connID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[connID] = conn
	h.writeMu[connID] = &sync.Mutex{}
}

// Remove closes and forgets a connection.
func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[connID]; exists {
		conn.Close()
		delete(h.connections, connID)
		delete(h.writeMu, connID)
	}
}

// Send delivers a JSON message to one connection. Unknown connections are
// ignored: the peer already disconnected and the coordinator treats sends
// as best effort.
func (h *Hub) Send(connID string, message domain.ServerMessage) error {
	h.mu.RLock()
	conn, exists := h.connections[connID]
	mu, muExists := h.writeMu[connID]
	h.mu.RUnlock()

	if !exists || !muExists {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(message)
}
