// Package rest builds the resty clients shared by the upstream API providers.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultUserAgent = "WeatherBot/1.0"

// Options configures a provider's HTTP client.
type Options struct {
	UserAgent string
	// FollowRedirects disables redirect-following when false; the 3xx response is returned as is.
	FollowRedirects bool
}

// NewClient creates a resty client with request/response debug logging and an
// OpenTelemetry-instrumented transport. No timeout or retry policy is set.
func NewClient(logger *slog.Logger, opts Options) *resty.Client {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	client := resty.New().
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetHeader("User-Agent", userAgent)

	if !opts.FollowRedirects {
		client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	}

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("sending request", "method", req.Method, "url", req.URL)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("received response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status_code", resp.StatusCode(),
			"duration", resp.Time().String(),
			"body_size", len(resp.Body()),
		)
		return nil
	})

	return client
}
