package main

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// registerRoutes sets up all API endpoints
func (app *App) registerRoutes() {
	huma.Register(app.api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Ping health check",
		Description: "Check if the API is running",
		Tags:        []string{"health"},
	}, app.handlePing)

	huma.Register(app.api, huma.Operation{
		OperationID: "healthz",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Discord session health",
		Description: "Reports whether the bot is connected to the Discord gateway",
		Tags:        []string{"health"},
	}, app.handleHealthz)

	huma.Register(app.api, huma.Operation{
		OperationID: "preview-command",
		Method:      http.MethodGet,
		Path:        "/preview/{command}",
		Summary:     "Preview a command",
		Description: "Runs a chat command against the live weather services and returns the messages the bot would send",
		Tags:        []string{"commands"},
	}, app.handlePreview)
}
