package commands

import (
	"context"
	"log/slog"

	"github.com/PerryMapping/WeatherBot/internal/reply"
	"github.com/PerryMapping/WeatherBot/internal/weather"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Stage is a step of a single command invocation.
// Received -> Geocoding -> (Projecting) -> Forecasting -> Replying -> Done, or Errored.
type Stage string

const (
	StageReceived    Stage = "received"
	StageGeocoding   Stage = "geocoding"
	StageProjecting  Stage = "projecting"
	StageForecasting Stage = "forecasting"
	StageReplying    Stage = "replying"
	StageDone        Stage = "done"
	StageErrored     Stage = "errored"
)

// invocation tracks one command call. It is never shared between calls.
type invocation struct {
	command string
	place   string
	stage   Stage
	span    trace.Span
	logger  *slog.Logger
}

func (inv *invocation) advance(stage Stage) {
	inv.stage = stage
	inv.span.AddEvent(string(stage))
	inv.logger.Debug("invocation advanced", "stage", stage)
}

// reply sends the text then the image.
func (inv *invocation) reply(ctx context.Context, r Replier, text, imageURL string) error {
	inv.advance(StageReplying)

	if err := r.SendText(ctx, text); err != nil {
		return inv.sendFailed(err)
	}
	if err := r.SendImage(ctx, imageURL); err != nil {
		return inv.sendFailed(err)
	}

	inv.stage = StageDone
	inv.logger.Info("command completed", "stage", StageDone, "image_url", imageURL)
	return nil
}

// fail reports err to the channel as exactly one text message and absorbs it.
func (inv *invocation) fail(ctx context.Context, r Replier, err error) error {
	failedAt := inv.stage
	inv.stage = StageErrored

	kind := weather.KindOf(err)
	inv.span.RecordError(err)
	inv.span.SetAttributes(attribute.String("error.kind", kind.String()))
	inv.span.SetStatus(codes.Error, kind.String())

	var message string
	switch kind {
	case weather.KindLookup, weather.KindInvalidLocation, weather.KindFieldMissing:
		message = reply.NotFoundMessage
		inv.logger.Info("location not found", "failed_at", failedAt, "kind", kind, "error", err)
	case weather.KindRedirect:
		message = reply.RedirectMessage
		inv.logger.Info("forecast redirected", "failed_at", failedAt, "kind", kind, "error", err)
	default:
		message = reply.UnknownMessage(err)
		inv.logger.Warn("command failed", "failed_at", failedAt, "kind", kind, "error", err)
	}

	if sendErr := r.SendText(ctx, message); sendErr != nil {
		return inv.sendFailed(sendErr)
	}
	return nil
}

func (inv *invocation) sendFailed(err error) error {
	inv.stage = StageErrored
	inv.span.RecordError(err)
	inv.span.SetStatus(codes.Error, "send failed")
	inv.logger.Error("failed to send reply", "error", err)
	return err
}
