package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/siege-game/backend/internal/api"
	"github.com/siege-game/backend/internal/builder"
	"github.com/siege-game/backend/internal/config"
	"github.com/siege-game/backend/internal/logger"
	"github.com/siege-game/backend/internal/session"
	"github.com/siege-game/backend/internal/storage"
	"github.com/siege-game/backend/levels"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const configFileName = "SiegeServer.config"

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	configPath := filepath.Join(filepath.Dir(exePath), configFileName)

	// Load XML configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Advanced.LogLevel, cfg.Advanced.LogFormat)
	log := logger.Log

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		log.WithError(err).Fatal("Failed to create directories")
	}

	// Uploaded level files
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage")
	}

	// Levels directory overrides the built-in levels; uploads are addressed by ID
	levelSource := storage.ChainSource{
		storage.NewDirSource(cfg.GetLevelsDir()),
		storage.NewFSSource(levels.FS(), storage.OriginEmbedded),
		fileStore.AsSource(),
	}

	mapBuilder := builder.New(levelSource, logger.WithComponent("builder"))

	sessionMgr := session.NewManager(mapBuilder,
		session.WithMaxSessions(cfg.Game.MaxSessions),
		session.WithDefaultPlayers(cfg.Game.DefenderName, cfg.Game.AttackerName),
		session.WithLogger(logger.WithComponent("session")),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Game.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		maxAge := time.Duration(cfg.Game.SessionTimeoutMinutes) * time.Minute
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessionMgr.CleanupOldSessions(maxAge); n > 0 {
					log.WithField("removed", n).Info("Session cleanup")
				}
			}
		}
	}()

	// Event hub: session lifecycle plus level directory changes
	hub := api.NewEventHub(int64(cfg.Advanced.WebSocketMaxMessageSize) * 1024)
	sessionEvents, unsubscribe := sessionMgr.Subscribe(64)
	defer unsubscribe()

	var levelEvents chan string
	if cfg.Storage.WatchLevels {
		watcher, err := storage.NewWatcher(cfg.GetLevelsDir())
		if err != nil {
			log.WithError(err).Warn("Level directory watcher disabled")
		} else {
			defer watcher.Close()
			levelEvents = make(chan string, 16)
			go relayLevelEvents(ctx, watcher, levelEvents)
		}
	}
	go hub.Run(ctx, sessionEvents, levelEvents)

	if cfg.Game.StartDefaultSession {
		sess, err := sessionMgr.Start(ctx, session.StartRequest{
			Level:    cfg.Game.DefaultLevel,
			Defender: cfg.Game.DefenderName,
			Attacker: cfg.Game.AttackerName,
			Limits:   cfg.Game.SquadLimits,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to start default session")
		} else {
			log.WithField("session", sess.ID).Info("Default session ready")
		}
	}

	api.SetShowErrorDetails(cfg.Advanced.ShowErrorDetails)

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, api.MiddlewareConfig{
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.Server.AllowOrigins,
		BodyLimit:      cfg.Server.BodyLimit,
	})

	handlers := api.NewHandlers(&api.Dependencies{
		Store:        fileStore,
		Levels:       levelSource,
		Validator:    mapBuilder,
		SessionMgr:   sessionMgr,
		Hub:          hub,
		DefaultLevel: cfg.Game.DefaultLevel,
		Limits:       cfg.Game.SquadLimits,
		Version:      Version,
	})
	api.RegisterRoutes(e, handlers)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Siege Level Server                              ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Levels:    %-46s║\n", cfg.GetLevelsDir())
	fmt.Printf("║  Default:   %-46s║\n", cfg.Game.DefaultLevel)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server start error")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutdown error")
	}
	log.Info("Done.")
}

// relayLevelEvents logs level file changes and forwards them to the event hub.
func relayLevelEvents(ctx context.Context, watcher *storage.Watcher, out chan<- string) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-watcher.Events:
			if !ok {
				return
			}
			logger.Log.WithField("level", name).Info("Level file changed")
			select {
			case out <- name:
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.WithError(err).Warn("Level watcher error")
		}
	}
}
