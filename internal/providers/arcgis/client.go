package arcgis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PerryMapping/WeatherBot/internal/providers/rest"
	"github.com/go-resty/resty/v2"
)

// API Docs: https://developers.arcgis.com/rest/geocode/api-reference/geocoding-find-address-candidates.htm
// Sample request: https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer/findAddressCandidates?f=json&singleLine=seattle&outFields=location
const (
	baseURL = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer/findAddressCandidates"
)

var (
	// ErrNoCandidates is returned when the geocoder finds nothing for the input text.
	ErrNoCandidates = errors.New("no address candidates found")
	// ErrNoLocation is returned when the first candidate carries no location.
	ErrNoLocation = errors.New("address candidate has no location")
	// ErrInvalidResponse is returned when the response body is not parseable JSON.
	ErrInvalidResponse = errors.New("invalid geocoding response")
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
	logger = logger.With("component", "arcgis-client")
	return &Client{
		httpClient: rest.NewClient(logger, opts),
		baseURL:    url,
		logger:     logger,
	}
}

// FindAddressCandidates geocodes free-form place text. The response is guaranteed to
// contain at least one candidate when err is nil.
func (c *Client) FindAddressCandidates(ctx context.Context, singleLine string) (*FindAddressCandidatesResponse, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"f":          "json",
			"singleLine": singleLine,
			"outFields":  "location",
		}).
		Get(c.baseURL)
	if err != nil {
		c.logger.Error("failed to fetch address candidates", "error", err)
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Error("geocoding API returned error",
			"status_code", resp.StatusCode(),
			"response_body", resp.String(),
		)
		return nil, fmt.Errorf("fetch returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var apiResp FindAddressCandidatesResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		c.logger.Error("failed to decode geocoding response", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if apiResp.Error != nil {
		return nil, fmt.Errorf("geocoding service error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}

	if len(apiResp.Candidates) == 0 {
		c.logger.Debug("geocoder returned no candidates", "single_line", singleLine)
		return nil, fmt.Errorf("%q: %w", singleLine, ErrNoCandidates)
	}

	c.logger.Debug("successfully geocoded place",
		"single_line", singleLine,
		"candidate_count", len(apiResp.Candidates),
		"address", apiResp.Candidates[0].Address,
	)

	return &apiResp, nil
}
