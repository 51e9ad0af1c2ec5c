package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/PerryMapping/WeatherBot/internal/config"
	"github.com/PerryMapping/WeatherBot/internal/discord"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humagin"
	"github.com/gin-gonic/gin"
)

// SessionStatus reports whether the chat gateway connection is up
type SessionStatus interface {
	Connected() bool
}

// App encapsulates the ops API dependencies
type App struct {
	router   *gin.Engine
	api      huma.API
	logger   *slog.Logger
	commands discord.CommandSet
	session  SessionStatus
	server   *http.Server
}

// NewApp creates the ops API with injected dependencies
func NewApp(cfg *config.Config, logger *slog.Logger, set discord.CommandSet, session SessionStatus) *App {
	gin.SetMode(cfg.Server.GinMode)

	router := gin.New()
	router.Use(gin.Recovery())

	humaConfig := huma.DefaultConfig("WeatherBot Ops API", "1.0.0")
	humaConfig.Info.Description = "Health and dry-run endpoints for the WeatherBot Discord bot"

	app := &App{
		router:   router,
		api:      humagin.New(router, humaConfig),
		logger:   logger.With("component", "ops-api"),
		commands: set,
		session:  session,
		server:   &http.Server{
			Addr:              cfg.GetServerAddr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	app.registerRoutes()

	return app
}

// Run serves the ops API until Shutdown is called
func (app *App) Run() error {
	return app.server.ListenAndServe()
}

// Shutdown stops the ops API
func (app *App) Shutdown(ctx context.Context) error {
	return app.server.Shutdown(ctx)
}
