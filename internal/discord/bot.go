// Package discord connects the command handlers to a Discord gateway session.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

const intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

// Bot owns the Discord session. Create one per process with New.
type Bot struct {
	session *discordgo.Session
	router  *Router
	logger  *slog.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	connected atomic.Bool
}

func New(token string, router *Router, logger *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = intents

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		session: session,
		router:  router,
		logger:  logger.With("component", "discord-bot"),
		ctx:     ctx,
		cancel:  cancel,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onDisconnect)
	session.AddHandler(b.onResumed)
	session.AddHandler(b.onMessageCreate)

	return b, nil
}

// Open connects to the gateway
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

// Close disconnects from the gateway, then lets in-flight commands finish until ctx ends.
// Commands still running at that point have their context cancelled.
func (b *Bot) Close(ctx context.Context) error {
	defer b.cancel()

	err := b.session.Close()
	b.connected.Store(false)
	if err != nil {
		err = fmt.Errorf("failed to close discord session: %w", err)
	}

	if waitErr := b.router.Close(ctx); waitErr != nil {
		b.logger.Warn("cancelling commands still running at shutdown", "error", waitErr)
		err = errors.Join(err, fmt.Errorf("waiting for commands: %w", waitErr))
	}
	return err
}

// Connected reports whether the gateway session is ready
func (b *Bot) Connected() bool {
	return b.connected.Load()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.connected.Store(true)
	b.logger.Info("logged in",
		"user", r.User.Username,
		"user_id", r.User.ID,
		"guilds", len(r.Guilds),
	)
}

func (b *Bot) onDisconnect(s *discordgo.Session, d *discordgo.Disconnect) {
	b.connected.Store(false)
	b.logger.Warn("disconnected from gateway")
}

func (b *Bot) onResumed(s *discordgo.Session, r *discordgo.Resumed) {
	b.connected.Store(true)
	b.logger.Info("gateway session resumed")
}

// onMessageCreate runs on its own goroutine per event
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State != nil && s.State.User != nil && m.Author != nil && m.Author.ID == s.State.User.ID {
		return
	}
	b.router.Dispatch(b.ctx, s, m.Message)
}
