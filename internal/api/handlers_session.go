// handlers_session.go - Game session handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/siege-game/backend/internal/models"
	"github.com/siege-game/backend/internal/session"
	"github.com/vmihailenco/msgpack/v5"
)

// SessionHandlerImpl implements the SessionHandler interface
type SessionHandlerImpl struct {
	sessions     SessionManager
	defaultLevel string
}

// NewSessionHandler creates a new session handler instance
func NewSessionHandler(sessions SessionManager, defaultLevel string) SessionHandler {
	return &SessionHandlerImpl{
		sessions:     sessions,
		defaultLevel: defaultLevel,
	}
}

// HandleStartSession builds a level and starts a session on it
func (h *SessionHandlerImpl) HandleStartSession(c echo.Context) error {
	var req session.StartRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Level == "" {
		req.Level = h.defaultLevel
	}
	if req.Level == "" {
		return NewValidationError("level")
	}
	if req.Limits.Defend < 0 || req.Limits.Attack < 0 {
		return NewValidationError("limits")
	}

	sess, err := h.sessions.Start(c.Request().Context(), req)
	if err != nil {
		return NewBuildError(err)
	}

	return c.JSON(http.StatusCreated, sess)
}

// HandleListSessions returns all running sessions
func (h *SessionHandlerImpl) HandleListSessions(c echo.Context) error {
	list := h.sessions.List()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": list,
		"total":    len(list),
	})
}

// HandleGetSession returns session metadata
func (h *SessionHandlerImpl) HandleGetSession(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleCloseSession ends a session and releases its map
func (h *SessionHandlerImpl) HandleCloseSession(c echo.Context) error {
	id := c.Param("id")
	if err := h.sessions.Close(id); err != nil {
		return NewSessionError(err, id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSessionKeepAlive keeps a session from being cleaned up
func (h *SessionHandlerImpl) HandleSessionKeepAlive(c echo.Context) error {
	id := c.Param("id")
	if !h.sessions.Touch(id) {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleGetMap returns the session's map as JSON
func (h *SessionHandlerImpl) HandleGetMap(c echo.Context) error {
	id := c.Param("id")
	gameMap, ok := h.sessions.GetMap(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, gameMap.View())
}

// HandleGetMapMsgpack returns the session's map in MessagePack format
func (h *SessionHandlerImpl) HandleGetMapMsgpack(c echo.Context) error {
	id := c.Param("id")
	gameMap, ok := h.sessions.GetMap(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	data, err := msgpack.Marshal(gameMap.View())
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleGetTile returns the tile at column x, row y
func (h *SessionHandlerImpl) HandleGetTile(c echo.Context) error {
	id := c.Param("id")
	x, err := strconv.Atoi(c.Param("x"))
	if err != nil {
		return NewBadRequestError("x must be an integer", err)
	}
	y, err := strconv.Atoi(c.Param("y"))
	if err != nil {
		return NewBadRequestError("y must be an integer", err)
	}

	gameMap, ok := h.sessions.GetMap(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	tile, ok := gameMap.TileAt(x, y)
	if !ok {
		return NewNotFoundError("tile", models.NewLocation(x, y).String())
	}

	return c.JSON(http.StatusOK, tile.View())
}
