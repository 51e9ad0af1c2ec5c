package discord

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"unicode"

	"github.com/PerryMapping/WeatherBot/internal/commands"
	"github.com/bwmarrin/discordgo"
)

// CommandSet resolves a command name to its handler
type CommandSet interface {
	Lookup(name string) (commands.Handler, bool)
}

// Router turns prefixed chat messages into command invocations
type Router struct {
	prefix   string
	guildID  string
	commands CommandSet
	logger   *slog.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewRouter(prefix, guildID string, set CommandSet, logger *slog.Logger) *Router {
	return &Router{
		prefix:   prefix,
		guildID:  guildID,
		commands: set,
		logger:   logger.With("component", "discord-router"),
	}
}

// Parse splits "<prefix><name> <argument>" into the command name and the argument.
// The argument is everything after the name, with leading whitespace removed.
func (rt *Router) Parse(content string) (name, arg string, ok bool) {
	rest, ok := strings.CutPrefix(content, rt.prefix)
	if !ok {
		return "", "", false
	}

	end := strings.IndexFunc(rest, unicode.IsSpace)
	if end < 0 {
		end = len(rest)
	}
	name = rest[:end]
	if name == "" {
		return "", "", false
	}

	return name, strings.TrimLeftFunc(rest[end:], unicode.IsSpace), true
}

// Dispatch runs the command in m, if any, replying through sender. It blocks until the
// handler returns and never panics. Messages arriving after Close are dropped.
func (rt *Router) Dispatch(ctx context.Context, sender messageSender, m *discordgo.Message) {
	if m.Author != nil && m.Author.Bot {
		return
	}
	if rt.guildID != "" && m.GuildID != rt.guildID {
		return
	}

	name, arg, ok := rt.Parse(m.Content)
	if !ok {
		return
	}
	handler, ok := rt.commands.Lookup(name)
	if !ok {
		rt.logger.Debug("ignoring unknown command", "command", name, "channel_id", m.ChannelID)
		return
	}

	if !rt.begin() {
		rt.logger.Debug("router closed, dropping command", "command", name, "channel_id", m.ChannelID)
		return
	}
	defer rt.inflight.Done()

	logger := rt.logger.With(
		"command", strings.ToLower(name),
		"channel_id", m.ChannelID,
		"message_id", m.ID,
	)
	defer func() {
		if p := recover(); p != nil {
			logger.Error("command panicked", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
		}
	}()

	r := channelReplier{sender: sender, channelID: m.ChannelID}
	if err := handler(ctx, arg, r); err != nil {
		logger.Error("command reply failed", "error", err)
	}
}

// begin registers an in-flight command unless the router is closed
func (rt *Router) begin() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return false
	}
	rt.inflight.Add(1)
	return true
}

// Close stops accepting commands and waits for in-flight ones to return. It returns
// ctx.Err() if ctx ends first; those commands keep running.
func (rt *Router) Close(ctx context.Context) error {
	rt.mu.Lock()
	rt.closed = true
	rt.mu.Unlock()

	done := make(chan struct{})
	go func() {
		rt.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
