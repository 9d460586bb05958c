// routes.go - Route registration helpers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/siege-game/backend/internal/models"
	"github.com/siege-game/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store        storage.Store
	Levels       storage.LevelSource
	Validator    LevelValidator
	SessionMgr   SessionManager
	Hub          *EventHub
	DefaultLevel string
	Limits       models.SquadLimits
	Version      string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Level   LevelHandler
	Session SessionHandler
	Events  EventHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	h := &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.SessionMgr),
		Level:   NewLevelHandler(deps.Store, deps.Levels, deps.Validator, deps.Limits),
		Session: NewSessionHandler(deps.SessionMgr, deps.DefaultLevel),
	}
	if deps.Hub != nil {
		h.Events = deps.Hub
	}
	return h
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Level routes
	levelGroup := apiGroup.Group("/levels")
	levelGroup.GET("", handlers.Level.HandleListLevels)
	levelGroup.POST("/upload", handlers.Level.HandleUploadLevel)
	levelGroup.POST("/validate", handlers.Level.HandleValidateLevel)
	levelGroup.GET("/uploads", handlers.Level.HandleListUploads)
	levelGroup.PUT("/uploads/:id", handlers.Level.HandleRenameUpload)
	levelGroup.DELETE("/uploads/:id", handlers.Level.HandleDeleteUpload)

	// Session routes
	sessionGroup := apiGroup.Group("/sessions")
	sessionGroup.POST("", handlers.Session.HandleStartSession)
	sessionGroup.GET("", handlers.Session.HandleListSessions)
	sessionGroup.GET("/:id", handlers.Session.HandleGetSession)
	sessionGroup.DELETE("/:id", handlers.Session.HandleCloseSession)
	sessionGroup.POST("/:id/keepalive", handlers.Session.HandleSessionKeepAlive)
	sessionGroup.GET("/:id/map", handlers.Session.HandleGetMap)
	sessionGroup.GET("/:id/map/msgpack", handlers.Session.HandleGetMapMsgpack)
	sessionGroup.GET("/:id/tiles/:x/:y", handlers.Session.HandleGetTile)

	// WebSocket event stream
	if handlers.Events != nil {
		apiGroup.GET("/ws/sessions", handlers.Events.HandleWebSocket)
	}
}

// MiddlewareConfig selects the common middleware
type MiddlewareConfig struct {
	RequestLogging bool
	EnableCORS     bool
	AllowOrigins   string // comma separated, empty means "*"
	BodyLimit      string // e.g. "10M"
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.RequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" || strings.HasPrefix(path, "/api/ws/")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	if cfg.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: splitOrigins(cfg.AllowOrigins),
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
