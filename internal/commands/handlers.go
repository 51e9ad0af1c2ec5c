// Package commands implements the chat commands. Handlers only depend on a Replier,
// so they run the same behind Discord and the preview API.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PerryMapping/WeatherBot/internal/projection"
	"github.com/PerryMapping/WeatherBot/internal/reply"
	"github.com/PerryMapping/WeatherBot/internal/weather"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Replier sends messages to the channel a command came from.
type Replier interface {
	SendText(ctx context.Context, message string) error
	SendImage(ctx context.Context, imageURL string) error
}

// Handler runs a command with the verbatim text after the command name. Lookup failures are
// reported through r; the returned error is only non-nil when r itself fails.
type Handler func(ctx context.Context, place string, r Replier) error

const (
	CommandWeather = "weather"
	CommandWind    = "wind"

	defaultBoundsPadding = 3.0
)

type Options struct {
	Prefix        string  // shown in usage replies
	BoundsPadding float64 // degrees around the location covered by the wind overlay
}

type Handlers struct {
	service       weather.Service
	formatter     *reply.Formatter
	prefix        string
	boundsPadding float64
	tracer        trace.Tracer
	logger        *slog.Logger
}

func NewHandlers(service weather.Service, formatter *reply.Formatter, opts Options, logger *slog.Logger) *Handlers {
	if opts.BoundsPadding <= 0 {
		opts.BoundsPadding = defaultBoundsPadding
	}
	return &Handlers{
		service:       service,
		formatter:     formatter,
		prefix:        opts.Prefix,
		boundsPadding: opts.BoundsPadding,
		tracer:        otel.Tracer("github.com/PerryMapping/WeatherBot/internal/commands"),
		logger:        logger.With("component", "commands"),
	}
}

// Commands maps command names to handlers
func (h *Handlers) Commands() map[string]Handler {
	return map[string]Handler{
		CommandWeather: h.Weather,
		CommandWind:    h.Wind,
	}
}

// Lookup returns the handler for a command name, matched case-insensitively
func (h *Handlers) Lookup(name string) (Handler, bool) {
	handler, ok := h.Commands()[strings.ToLower(name)]
	return handler, ok
}

func (h *Handlers) begin(ctx context.Context, command, place string) (context.Context, *invocation) {
	id := uuid.NewString()
	ctx, span := h.tracer.Start(ctx, "command."+command, trace.WithAttributes(
		attribute.String("invocation_id", id),
		attribute.String("place", place),
	))

	inv := &invocation{
		command: command,
		place:   place,
		stage:   StageReceived,
		span:    span,
		logger:  h.logger.With("invocation_id", id, "command", command, "place", place),
	}
	inv.logger.Debug("command received", "stage", StageReceived)
	return ctx, inv
}

func (h *Handlers) usage(ctx context.Context, inv *invocation, r Replier) error {
	inv.stage = StageErrored
	inv.logger.Info("command called without a place")
	if err := r.SendText(ctx, reply.UsageMessage(h.prefix, inv.command)); err != nil {
		return inv.sendFailed(err)
	}
	return nil
}

// Weather replies with the current forecast text and the regional radar loop
func (h *Handlers) Weather(ctx context.Context, place string, r Replier) error {
	place = strings.TrimSpace(place)
	ctx, inv := h.begin(ctx, CommandWeather, place)
	defer inv.span.End()

	if place == "" {
		return h.usage(ctx, inv, r)
	}

	inv.advance(StageGeocoding)
	coords, err := h.service.Geocode(ctx, place)
	if err != nil {
		return inv.fail(ctx, r, err)
	}

	inv.advance(StageForecasting)
	forecast, err := h.service.GetForecast(ctx, coords)
	if err != nil {
		return inv.fail(ctx, r, err)
	}
	if _, err := forecast.LeadText(); err != nil {
		return inv.fail(ctx, r, err)
	}

	text := h.formatter.WeatherMessage(place, forecast)
	return inv.reply(ctx, r, text, h.formatter.RadarLoopURL(forecast.RadarStation))
}

// Wind replies with current conditions and the base velocity overlay
func (h *Handlers) Wind(ctx context.Context, place string, r Replier) error {
	place = strings.TrimSpace(place)
	ctx, inv := h.begin(ctx, CommandWind, place)
	defer inv.span.End()

	if place == "" {
		return h.usage(ctx, inv, r)
	}

	inv.advance(StageGeocoding)
	coords, err := h.service.Geocode(ctx, place)
	if err != nil {
		return inv.fail(ctx, r, err)
	}

	inv.advance(StageProjecting)
	projected, err := projection.ToMercator(coords)
	if err != nil {
		return inv.fail(ctx, r, fmt.Errorf("project %s: %w", coords, err))
	}

	inv.advance(StageForecasting)
	forecast, err := h.service.GetForecast(ctx, coords)
	if err != nil {
		return inv.fail(ctx, r, err)
	}
	current, err := forecast.Conditions()
	if err != nil {
		return inv.fail(ctx, r, err)
	}

	bounds := projection.DegreeBounds(coords, h.boundsPadding)
	text := h.formatter.WindMessage(place, coords, projected, current)
	return inv.reply(ctx, r, text, h.formatter.WindOverlayURL(forecast.RadarStation, bounds))
}
