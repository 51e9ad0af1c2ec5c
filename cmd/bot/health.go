package main

import (
	"context"
	"net/http"
)

// PingOutput represents the response for the ping endpoint
type PingOutput struct {
	Body struct {
		Message string `json:"message" example:"pong" doc:"Response message"`
	}
}

// handlePing is a health check endpoint that returns a simple pong message
func (app *App) handlePing(ctx context.Context, input *struct{}) (*PingOutput, error) {
	resp := &PingOutput{}
	resp.Body.Message = "pong"
	return resp, nil
}

// HealthOutput represents the response for the healthz endpoint
type HealthOutput struct {
	Status int
	Body   struct {
		Status  string `json:"status" example:"ok" doc:"ok when the Discord session is connected, otherwise degraded"`
		Discord string `json:"discord" example:"connected" enum:"connected,disconnected" doc:"Discord gateway state"`
	}
}

// handleHealthz reports 503 while the Discord gateway connection is down
func (app *App) handleHealthz(ctx context.Context, input *struct{}) (*HealthOutput, error) {
	resp := &HealthOutput{Status: http.StatusOK}
	resp.Body.Status = "ok"
	resp.Body.Discord = "connected"

	if !app.session.Connected() {
		resp.Status = http.StatusServiceUnavailable
		resp.Body.Status = "degraded"
		resp.Body.Discord = "disconnected"
	}

	return resp, nil
}
