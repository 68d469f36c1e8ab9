package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mindmash/backend/internal/domain"
	"github.com/mindmash/backend/internal/service/match"
	"github.com/mindmash/backend/pkg/auth"
)

// Handler upgrades websocket connections and routes client events into the
// coordinator.
type Handler struct {
	Hub         *Hub
	Coordinator *match.Coordinator
	Upgrader    websocket.Upgrader
}

func NewHandler(hub *Hub, coordinator *match.Coordinator) *Handler {
	return &Handler{
		Hub:         hub,
		Coordinator: coordinator,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket is the gin handler that upgrades the connection.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(conn)
}

// handleConnection manages the lifecycle of a single websocket connection.
// No authentication is required up front: identify is an optional event and
// anonymous sockets may queue and join rooms.
func (h *Handler) handleConnection(conn *websocket.Conn) {
	connID := uuid.NewString()
	log.Printf("[WS] Connection %s opened", connID)

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))

	// Keep-alive pinger
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	h.Hub.Add(connID, conn)
	h.Coordinator.Register(connID)

	defer func() {
		close(done)
		log.Printf("[WS] Connection %s closed", connID)
		h.Coordinator.Disconnect(connID)
		h.Hub.Remove(connID)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Connection %s dropped unexpectedly: %v", connID, err)
			}
			break
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message from %s: %v", connID, err)
			continue
		}

		h.processMessage(connID, msg)
	}
}

// processMessage routes one client event.
func (h *Handler) processMessage(connID string, msg domain.ClientMessage) {
	switch msg.Type {
	case "identify":
		// A bad token is not an error: the socket just stays anonymous.
		claims, err := auth.ValidateJWT(msg.Token)
		if err != nil {
			log.Printf("[WS] identify failed for %s: %v", connID, err)
			return
		}
		h.Coordinator.Identify(connID, domain.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
		})

	case "join_room":
		h.Coordinator.JoinRoom(connID, msg.RoomID)

	case "queue":
		h.Coordinator.Enqueue(connID)

	case "cancel_queue":
		h.Coordinator.CancelQueue(connID)

	case "round_result":
		userID := msg.UserID
		if userID == "" {
			if identity, ok := h.Coordinator.Identity(connID); ok {
				userID = identity.UserID
			}
		}
		if userID == "" {
			log.Printf("[WS] round_result from anonymous connection %s dropped", connID)
			return
		}
		h.Coordinator.SubmitRoundResult(msg.RoomID, userID, msg.Round, msg.Accuracy, msg.TimeMs)

	case "win_attempt":
		h.Coordinator.WinAttempt(connID, msg.RoomID)

	default:
		log.Printf("[WS] Unknown message type %q from %s", msg.Type, connID)
	}
}
