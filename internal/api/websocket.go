package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/siege-game/backend/internal/logger"
	"github.com/siege-game/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// WebSocket message types for the event stream
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected    = "connected"
	MsgTypePong         = "pong"
	MsgTypeError        = "error"
	MsgTypeLevelChanged = "level:changed"
)

const (
	wsWriteWait  = 10 * time.Second
	wsSendBuffer = 32
)

// WSMessage is the envelope for every websocket frame. Session lifecycle
// events use the session event type as Type.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// LevelChangedPayload reports a level file change in a watched directory
type LevelChangedPayload struct {
	Level string `json:"level"`
}

// WSErrorResponse is the payload of an error frame
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage
}

// EventHub fans session and level events out to websocket clients
type EventHub struct {
	upgrader       websocket.Upgrader
	maxMessageSize int64
	log            logrus.FieldLogger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewEventHub creates a hub. maxMessageSize bounds inbound frames in bytes.
func NewEventHub(maxMessageSize int64) *EventHub {
	return &EventHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Origins are enforced by the CORS middleware
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
		maxMessageSize: maxMessageSize,
		log:            logger.WithComponent("websocket"),
		clients:        make(map[*wsClient]struct{}),
	}
}

// Run forwards events until ctx is done or both channels are closed.
// Either channel may be nil.
func (h *EventHub) Run(ctx context.Context, sessions <-chan models.SessionEvent, levels <-chan string) {
	for sessions != nil || levels != nil {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sessions:
			if !ok {
				sessions = nil
				continue
			}
			h.Broadcast(WSMessage{
				Type:      string(ev.Type),
				ID:        ev.Session.ID,
				Payload:   mustJSON(ev.Session),
				Timestamp: ev.Timestamp,
			})
		case name, ok := <-levels:
			if !ok {
				levels = nil
				continue
			}
			h.Broadcast(WSMessage{
				Type:      MsgTypeLevelChanged,
				Payload:   mustJSON(LevelChangedPayload{Level: name}),
				Timestamp: time.Now().UnixMilli(),
			})
		}
	}
}

// Broadcast queues msg for every connected client. Clients whose queue is
// full are skipped.
func (h *EventHub) Broadcast(msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			h.log.Warn("Dropping event for slow websocket client")
		}
	}
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection and streams events until the client leaves
func (h *EventHub) HandleWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()
	if h.maxMessageSize > 0 {
		ws.SetReadLimit(h.maxMessageSize)
	}

	client := &wsClient{conn: ws, send: make(chan WSMessage, wsSendBuffer)}
	h.register(client)
	defer h.unregister(client)

	h.log.WithField("remote", c.RealIP()).Debug("Client connected")

	done := make(chan struct{})
	defer close(done)
	go h.writePump(client, done)

	client.send <- WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()}

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Warn("Connection error")
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			h.trySend(client, WSMessage{Type: MsgTypePong, ID: msg.ID, Timestamp: time.Now().UnixMilli()})
		default:
			h.trySend(client, WSMessage{
				Type:      MsgTypeError,
				ID:        msg.ID,
				Payload:   mustJSON(WSErrorResponse{Message: "Unknown message type: " + msg.Type, Code: "INVALID_TYPE"}),
				Timestamp: time.Now().UnixMilli(),
			})
		}
	}

	h.log.Debug("Client disconnected")
	return nil
}

func (h *EventHub) register(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
}

func (h *EventHub) unregister(client *wsClient) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
}

func (h *EventHub) trySend(client *wsClient, msg WSMessage) {
	select {
	case client.send <- msg:
	default:
	}
}

// writePump is the only writer on the connection.
func (h *EventHub) writePump(client *wsClient, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteJSON(msg); err != nil {
				h.log.WithError(err).Debug("Write failed")
				return
			}
		}
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
