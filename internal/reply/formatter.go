// Package reply builds the messages and image URLs the bot sends back to a channel.
package reply

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PerryMapping/WeatherBot/internal/types"
	"github.com/PerryMapping/WeatherBot/internal/weather"
	"github.com/paulmach/orb"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// User-facing outcomes that do not depend on the forecast
const (
	NotFoundMessage = "Location not found. Try again with US place name or correct the spelling."
	RedirectMessage = "Redirect error: Try a place further inland."
)

const (
	DefaultRadarURL     = "https://radar.weather.gov/ridge/lite"
	DefaultGeoserverURL = "https://opengeo.ncep.noaa.gov/geoserver"

	// cacheBustLayout is ddmmyyMM. Discord caches embeds by URL, so the token makes a
	// repeated station request show fresh imagery.
	cacheBustLayout = "02010604"

	overlaySize = "512"
	overlaySRS  = "EPSG:4326"
)

// Formatter renders replies. It holds no per-request state and is safe for concurrent use.
type Formatter struct {
	radarURL        string
	geoserverURL    string
	extendedPeriods int
	now             func() time.Time
}

type Option func(*Formatter)

// WithClock overrides the time source used for cache-bust tokens
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) {
		f.now = now
	}
}

// WithExtendedPeriods lists up to n forecast periods after the lead line of weather replies
func WithExtendedPeriods(n int) Option {
	return func(f *Formatter) {
		f.extendedPeriods = n
	}
}

func NewFormatter(radarURL, geoserverURL string, opts ...Option) *Formatter {
	if radarURL == "" {
		radarURL = DefaultRadarURL
	}
	if geoserverURL == "" {
		geoserverURL = DefaultGeoserverURL
	}

	f := &Formatter{
		radarURL:     strings.TrimRight(radarURL, "/"),
		geoserverURL: strings.TrimRight(geoserverURL, "/"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CacheBustToken returns the current time as ddmmyyMM
func (f *Formatter) CacheBustToken() string {
	return f.now().Format(cacheBustLayout)
}

// RadarLoopURL returns the animated radar loop for a station
func (f *Formatter) RadarLoopURL(station string) string {
	return fmt.Sprintf("%s/%s_loop.gif?%s", f.radarURL, station, f.CacheBustToken())
}

// WindOverlayURL returns a WMS GetMap request for the station's base velocity layer
// covering bounds, given in lon/lat degrees.
func (f *Formatter) WindOverlayURL(station string, bounds orb.Bound) string {
	station = strings.ToLower(station)

	// Parameter order and the literal commas in BBOX are kept readable rather than encoded
	params := []string{
		"SERVICE=WMS",
		"REQUEST=GetMap",
		"FORMAT=image/png",
		"LAYERS=" + url.QueryEscape(station+"_bvel_raw"),
		"WIDTH=" + overlaySize,
		"HEIGHT=" + overlaySize,
		"BBOX=" + formatBBox(bounds),
		"SRS=" + overlaySRS,
		"TRANSPARENCY=true",
	}

	return fmt.Sprintf("%s/%s/ows?%s", f.geoserverURL, url.PathEscape(station), strings.Join(params, "&"))
}

// formatBBox renders xmin,ymin,xmax,ymax with two decimals
func formatBBox(b orb.Bound) string {
	return fmt.Sprintf("%.2f,%.2f,%.2f,%.2f", b.Left(), b.Bottom(), b.Right(), b.Top())
}

// WeatherMessage is the text of a successful weather reply
func (f *Formatter) WeatherMessage(place string, forecast *weather.Forecast) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current forecast and most recent regional radar for %s (%s):\n>>> %s\n",
		TitleCase(place), forecast.Coordinates, forecast.Lead)

	for i, period := range forecast.Periods {
		if i >= f.extendedPeriods {
			break
		}
		if period.Name != "" {
			fmt.Fprintf(&b, "**%s**: %s\n", period.Name, period.Text)
		} else {
			fmt.Fprintf(&b, "%s\n", period.Text)
		}
	}

	return b.String()
}

// WindMessage is the text of a successful wind reply. projected is the location in
// Web-Mercator meters.
func (f *Formatter) WindMessage(place string, coords types.Coords, projected orb.Point, current weather.CurrentConditions) string {
	return fmt.Sprintf("Current conditions and base velocity radar for %s (%s):\n"+
		">>> Temperature: %s°F\nHumidity: %s%%\nSky: %s\nWind: %s\nWeb Mercator: %.1f, %.1f\n",
		TitleCase(place), coords,
		current.TemperatureF, current.HumidityPercent, current.Sky, current.Wind,
		projected.X(), projected.Y(),
	)
}

// UnknownMessage reports an unexpected failure with its description
func UnknownMessage(err error) string {
	return fmt.Sprintf("Unknown error: %v", err)
}

// UsageMessage explains how to call a command
func UsageMessage(prefix, command string) string {
	return fmt.Sprintf("Usage: %s%s <place name>", prefix, command)
}

// TitleCase capitalizes each word of a place name
func TitleCase(place string) string {
	return cases.Title(language.English).String(place)
}
