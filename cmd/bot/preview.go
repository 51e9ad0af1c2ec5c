package main

import (
	"context"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// PreviewInput selects the command and place to dry-run
type PreviewInput struct {
	Command string `path:"command" enum:"weather,wind" doc:"Chat command name"`
	Place   string `query:"place" doc:"Place name, as typed after the command"`
}

// PreviewOutput lists the messages the bot would have sent, in order
type PreviewOutput struct {
	Body struct {
		Command string   `json:"command" example:"weather"`
		Place   string   `json:"place" example:"seattle"`
		Texts   []string `json:"texts" doc:"Text messages"`
		Images  []string `json:"images" doc:"Embedded image URLs"`
	}
}

// recordingReplier collects replies instead of posting them to a channel
type recordingReplier struct {
	mu     sync.Mutex
	texts  []string
	images []string
}

func (r *recordingReplier) SendText(ctx context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, message)
	return nil
}

func (r *recordingReplier) SendImage(ctx context.Context, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, imageURL)
	return nil
}

func (app *App) handlePreview(ctx context.Context, input *PreviewInput) (*PreviewOutput, error) {
	handler, ok := app.commands.Lookup(input.Command)
	if !ok {
		return nil, huma.Error404NotFound("unknown command: " + input.Command)
	}

	rec := &recordingReplier{}
	if err := handler(ctx, strings.TrimSpace(input.Place), rec); err != nil {
		app.logger.Error("preview failed", "command", input.Command, "error", err)
		return nil, huma.Error500InternalServerError("preview failed", err)
	}

	resp := &PreviewOutput{}
	resp.Body.Command = input.Command
	resp.Body.Place = input.Place
	resp.Body.Texts = append([]string{}, rec.texts...)
	resp.Body.Images = append([]string{}, rec.images...)
	return resp, nil
}
