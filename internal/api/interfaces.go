// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/siege-game/backend/internal/models"
	"github.com/siege-game/backend/internal/session"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// LevelHandler handles level listing, upload and validation
type LevelHandler interface {
	HandleListLevels(c echo.Context) error
	HandleUploadLevel(c echo.Context) error
	HandleValidateLevel(c echo.Context) error
	HandleListUploads(c echo.Context) error
	HandleRenameUpload(c echo.Context) error
	HandleDeleteUpload(c echo.Context) error
}

// SessionHandler handles game session operations
type SessionHandler interface {
	HandleStartSession(c echo.Context) error
	HandleListSessions(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleCloseSession(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
	HandleGetMap(c echo.Context) error
	HandleGetMapMsgpack(c echo.Context) error
	HandleGetTile(c echo.Context) error
}

// EventHandler streams lifecycle events to websocket clients
type EventHandler interface {
	HandleWebSocket(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	Start(ctx context.Context, req session.StartRequest) (*models.GameSession, error)
	Get(id string) (*models.GameSession, bool)
	GetMap(id string) (*models.GameMap, bool)
	List() []models.GameSession
	Count() int
	Touch(id string) bool
	Close(id string) error
}

// LevelValidator performs a trial build of raw level data.
type LevelValidator interface {
	Build(level *models.RawLevel, limits models.SquadLimits) (*models.GameMap, error)
}

var _ SessionManager = (*session.Manager)(nil)
