package nws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/PerryMapping/WeatherBot/internal/providers/rest"
	"github.com/go-resty/resty/v2"
)

// API Docs: https://www.weather.gov/documentation/services-web-api
// Sample request: https://forecast.weather.gov/MapClick.php?lat=47.61&lon=-122.33&FcstType=json
//
// MapClick redirects coordinates outside a land forecast zone (e.g. to marine.weather.gov),
// so redirects are not followed and any non-200 status is reported as ErrRedirect.
const (
	baseURL = "https://forecast.weather.gov/MapClick.php"

	// successKey only appears in the payload when the point is not a valid US forecast location
	successKey = "success"
)

var (
	ErrRedirect        = errors.New("forecast location is in a redirect zone")
	ErrInvalidLocation = errors.New("not a valid US forecast location")
	ErrFieldMissing    = errors.New("forecast field missing")
)

type Client struct {
	httpClient *resty.Client
	baseURL    string
	logger     *slog.Logger
}

func NewClient(logger *slog.Logger, opts rest.Options) *Client {
	return NewClientWithBaseURL(logger, opts, baseURL)
}

// NewClientWithBaseURL creates a client against a custom endpoint, e.g. a test server
func NewClientWithBaseURL(logger *slog.Logger, opts rest.Options, url string) *Client {
	if url == "" {
		url = baseURL
	}
	logger = logger.With("component", "nws-client")
	opts.FollowRedirects = false
	return &Client{
		httpClient: rest.NewClient(logger, opts),
		baseURL:    url,
		logger:     logger,
	}
}

// GetForecast fetches the MapClick JSON forecast for the given point.
func (c *Client) GetForecast(ctx context.Context, latitude, longitude float64) (*MapClickResponse, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":      strconv.FormatFloat(latitude, 'f', -1, 64),
			"lon":      strconv.FormatFloat(longitude, 'f', -1, 64),
			"FcstType": "json",
		}).
		Get(c.baseURL)
	if err != nil {
		c.logger.Error("failed to fetch forecast",
			"latitude", latitude,
			"longitude", longitude,
			"error", err,
		)
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("forecast request did not return 200",
			"status_code", resp.StatusCode(),
			"location", resp.Header().Get("Location"),
		)
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode(), ErrRedirect)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &keys); err != nil {
		c.logger.Error("failed to decode forecast response", "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if _, ok := keys[successKey]; ok {
		c.logger.Debug("forecast service rejected location",
			"latitude", latitude,
			"longitude", longitude,
		)
		return nil, fmt.Errorf("lat=%v lon=%v: %w", latitude, longitude, ErrInvalidLocation)
	}

	var apiResp MapClickResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		c.logger.Error("failed to decode forecast response", "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &apiResp, nil
}
