package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/siege-game/backend/internal/models"
	"github.com/siege-game/backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *EventHub) *websocket.Conn {
	t.Helper()
	e := echo.New()
	e.GET("/api/ws/sessions", hub.HandleWebSocket)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/sessions"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	msg := readMessage(t, conn)
	require.Equal(t, MsgTypeConnected, msg.Type)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestEventHub_PingPong(t *testing.T) {
	hub := NewEventHub(64 * 1024)
	conn := dialHub(t, hub)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: MsgTypePing, ID: "p1"}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgTypePong, msg.Type)
	assert.Equal(t, "p1", msg.ID)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "bogus"}))
	msg = readMessage(t, conn)
	assert.Equal(t, MsgTypeError, msg.Type)
	assert.Contains(t, string(msg.Payload), "INVALID_TYPE")
}

func TestEventHub_ForwardsSessionEvents(t *testing.T) {
	env := newTestEnv(t)
	hub := NewEventHub(64 * 1024)
	conn := dialHub(t, hub)

	events, cancelSub := env.sessions.Subscribe(8)
	defer cancelSub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, events, nil)

	sess, err := env.sessions.Start(ctx, session.StartRequest{Level: "square"})
	require.NoError(t, err)

	msg := readMessage(t, conn)
	assert.Equal(t, string(models.SessionEventStarted), msg.Type)
	assert.Equal(t, sess.ID, msg.ID)

	var payload models.GameSession
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "square", payload.Level)

	require.NoError(t, env.sessions.Close(sess.ID))
	msg = readMessage(t, conn)
	assert.Equal(t, string(models.SessionEventClosed), msg.Type)
}

func TestEventHub_ForwardsLevelChanges(t *testing.T) {
	hub := NewEventHub(64 * 1024)
	conn := dialHub(t, hub)
	assert.Equal(t, 1, hub.ClientCount())

	levels := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, nil, levels)

	levels <- "map_example"
	msg := readMessage(t, conn)
	assert.Equal(t, MsgTypeLevelChanged, msg.Type)

	var payload LevelChangedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "map_example", payload.Level)
}

func TestEventHub_RunStopsWhenChannelsClose(t *testing.T) {
	hub := NewEventHub(0)
	sessions := make(chan models.SessionEvent)
	levels := make(chan string)

	done := make(chan struct{})
	go func() {
		hub.Run(context.Background(), sessions, levels)
		close(done)
	}()
	close(sessions)
	close(levels)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after channels closed")
	}
}
