package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/PerryMapping/WeatherBot/internal/commands"
	"github.com/PerryMapping/WeatherBot/internal/config"
	"github.com/PerryMapping/WeatherBot/internal/discord"
	"github.com/PerryMapping/WeatherBot/internal/reply"
	"github.com/PerryMapping/WeatherBot/internal/telemetry"
	"github.com/PerryMapping/WeatherBot/internal/weather"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer(cfg.Tracing, logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	formatter := reply.NewFormatter(
		cfg.Providers.RadarURL,
		cfg.Providers.GeoserverURL,
		reply.WithExtendedPeriods(cfg.App.ExtendedPeriods),
	)
	handlers := commands.NewHandlers(
		weather.NewWeatherService(cfg, logger),
		formatter,
		commands.Options{Prefix: cfg.Bot.Prefix, BoundsPadding: cfg.App.BoundsPadding},
		logger,
	)

	router := discord.NewRouter(cfg.Bot.Prefix, cfg.Discord.GuildID, handlers, logger)
	bot, err := discord.New(cfg.Discord.Token, router, logger)
	if err != nil {
		log.Fatalf("Failed to create discord session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Open(); err != nil {
		log.Fatalf("Failed to open discord session: %v", err)
	}
	if invite := cfg.InviteURL(); invite != "" {
		logger.Info("invite the bot with", "url", invite)
	}

	app := NewApp(cfg, logger, handlers, bot)
	serverErr := make(chan error, 1)
	if cfg.Server.Enabled {
		go func() {
			logger.Info("starting ops server", "addr", cfg.GetServerAddr())
			serverErr <- app.Run()
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown failed", "error", err)
	}
	if err := bot.Close(shutdownCtx); err != nil {
		logger.Error("discord session close failed", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown failed", "error", err)
	}
}
