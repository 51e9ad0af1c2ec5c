package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PerryMapping/WeatherBot/internal/providers/arcgis"
	"github.com/PerryMapping/WeatherBot/internal/providers/nws"
	"github.com/PerryMapping/WeatherBot/internal/reply"
	"github.com/PerryMapping/WeatherBot/internal/types"
	"github.com/PerryMapping/WeatherBot/internal/weather"
)

// recorder is a Replier that keeps everything sent, in order.
type recorder struct {
	mu      sync.Mutex
	sent    []string // "text:..." or "image:..."
	failOn  string   // "text" or "image"
	sendErr error
}

func (r *recorder) SendText(ctx context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "text" {
		return r.sendErr
	}
	r.sent = append(r.sent, "text:"+message)
	return nil
}

func (r *recorder) SendImage(ctx context.Context, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "image" {
		return r.sendErr
	}
	r.sent = append(r.sent, "image:"+imageURL)
	return nil
}

func (r *recorder) texts() []string {
	var out []string
	for _, s := range r.sent {
		if m, ok := strings.CutPrefix(s, "text:"); ok {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) images() []string {
	var out []string
	for _, s := range r.sent {
		if u, ok := strings.CutPrefix(s, "image:"); ok {
			out = append(out, u)
		}
	}
	return out
}

// fakeService returns canned results and counts calls.
type fakeService struct {
	coords      types.Coords
	geocodeErr  error
	forecast    *weather.Forecast
	forecastErr error

	geocodeCalls  int
	forecastCalls int
}

func (f *fakeService) Geocode(ctx context.Context, place string) (types.Coords, error) {
	f.geocodeCalls++
	return f.coords, f.geocodeErr
}

func (f *fakeService) GetForecast(ctx context.Context, coords types.Coords) (*weather.Forecast, error) {
	f.forecastCalls++
	return f.forecast, f.forecastErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testClock = reply.WithClock(func() time.Time {
	return time.Date(2026, time.October, 16, 8, 30, 0, 0, time.UTC)
})

func newHandlers(svc weather.Service) *Handlers {
	return NewHandlers(svc, reply.NewFormatter("", "", testClock), Options{Prefix: "!"}, discardLogger())
}

func seattleForecast() *weather.Forecast {
	return &weather.Forecast{
		Coordinates:  types.NewCoords(47.61, -122.33),
		RadarStation: "KATX",
		HasText:      true,
		Lead:         "Mostly cloudy.",
		Periods:      []weather.Period{{Name: "Tonight", Text: "Tonight: Rain."}},
		Current: &weather.CurrentConditions{
			TemperatureF:    "54",
			HumidityPercent: "81",
			Sky:             "Overcast",
			Wind:            "S 9 mph",
		},
	}
}

func kindErr(kind weather.Kind) error {
	return &weather.Error{Kind: kind, Op: "test", Err: fmt.Errorf("%v", kind)}
}

func TestHandlers_Weather(t *testing.T) {
	svc := &fakeService{coords: types.NewCoords(47.61, -122.33), forecast: seattleForecast()}
	rec := &recorder{}

	if err := newHandlers(svc).Weather(context.Background(), "seattle", rec); err != nil {
		t.Fatalf("Weather() unexpected error = %v", err)
	}

	wantText := "text:Current forecast and most recent regional radar for Seattle (-122.33,47.61):\n>>> Mostly cloudy.\n"
	wantImage := "image:https://radar.weather.gov/ridge/lite/KATX_loop.gif?16102630"
	if len(rec.sent) != 2 || rec.sent[0] != wantText || rec.sent[1] != wantImage {
		t.Errorf("sent = %q, want [%q %q]", rec.sent, wantText, wantImage)
	}
}

func TestHandlers_Wind(t *testing.T) {
	forecast := seattleForecast()
	forecast.RadarStation = "KLOT"
	forecast.Coordinates = types.NewCoords(41.85, -87.65)
	svc := &fakeService{coords: types.NewCoords(41.85, -87.65), forecast: forecast}
	rec := &recorder{}

	if err := newHandlers(svc).Wind(context.Background(), "chicago", rec); err != nil {
		t.Fatalf("Wind() unexpected error = %v", err)
	}

	if len(rec.sent) != 2 || !strings.HasPrefix(rec.sent[0], "text:") || !strings.HasPrefix(rec.sent[1], "image:") {
		t.Fatalf("sent = %q, want text then image", rec.sent)
	}

	text := rec.texts()[0]
	for _, want := range []string{"Chicago (-87.65,41.85)", "Temperature: 54°F", "Humidity: 81%", "Sky: Overcast", "Wind: S 9 mph", "Web Mercator: -9757153.4, 5138536.6"} {
		if !strings.Contains(text, want) {
			t.Errorf("wind text %q does not contain %q", text, want)
		}
	}

	image := rec.images()[0]
	for _, want := range []string{"/geoserver/klot/ows?", "LAYERS=klot_bvel_raw", "BBOX=-90.65,38.85,-84.65,44.85", "SRS=EPSG:4326", "WIDTH=512&HEIGHT=512", "TRANSPARENCY=true"} {
		if !strings.Contains(image, want) {
			t.Errorf("overlay URL %q does not contain %q", image, want)
		}
	}
}

func TestHandlers_FailureMessages(t *testing.T) {
	tests := []struct {
		name        string
		svc         *fakeService
		wantMessage string
		wantForcast bool
	}{
		{
			name:        "lookup error",
			svc:         &fakeService{geocodeErr: kindErr(weather.KindLookup)},
			wantMessage: reply.NotFoundMessage,
		},
		{
			name:        "invalid location",
			svc:         &fakeService{forecastErr: kindErr(weather.KindInvalidLocation)},
			wantMessage: reply.NotFoundMessage,
			wantForcast: true,
		},
		{
			name:        "field missing",
			svc:         &fakeService{forecastErr: kindErr(weather.KindFieldMissing)},
			wantMessage: reply.NotFoundMessage,
			wantForcast: true,
		},
		{
			name:        "redirect",
			svc:         &fakeService{forecastErr: kindErr(weather.KindRedirect)},
			wantMessage: reply.RedirectMessage,
			wantForcast: true,
		},
		{
			name:        "unknown",
			svc:         &fakeService{geocodeErr: errors.New("dial tcp: connection refused")},
			wantMessage: "Unknown error: dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		for name, run := range newHandlers(tt.svc).Commands() {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				rec := &recorder{}
				if err := run(context.Background(), "somewhere", rec); err != nil {
					t.Fatalf("%s() unexpected error = %v", name, err)
				}
				if len(rec.sent) != 1 || rec.sent[0] != "text:"+tt.wantMessage {
					t.Errorf("sent = %q, want exactly [%q]", rec.sent, "text:"+tt.wantMessage)
				}
			})
		}
		if !tt.wantForcast && tt.svc.forecastCalls != 0 {
			t.Errorf("%s: forecast called %d times after a geocoding failure", tt.name, tt.svc.forecastCalls)
		}
	}
}

func TestHandlers_MissingFieldsPerCommand(t *testing.T) {
	noText := seattleForecast()
	noText.HasText = false
	noText.Lead = ""
	noCurrent := seattleForecast()
	noCurrent.Current = nil
	emptyLead := seattleForecast()
	emptyLead.Lead = ""

	tests := []struct {
		name     string
		forecast *weather.Forecast
		command  string
		want     []string
	}{
		{"weather without text", noText, CommandWeather, []string{"text:" + reply.NotFoundMessage}},
		{"wind without observation", noCurrent, CommandWind, []string{"text:" + reply.NotFoundMessage}},
		{"weather ignores observation", noCurrent, CommandWeather, nil},
		{"wind ignores text", noText, CommandWind, nil},
		{"weather with empty lead entry", emptyLead, CommandWeather, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers(&fakeService{coords: types.NewCoords(47.61, -122.33), forecast: tt.forecast})
			run, ok := h.Lookup(tt.command)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.command)
			}

			rec := &recorder{}
			if err := run(context.Background(), "seattle", rec); err != nil {
				t.Fatalf("unexpected error = %v", err)
			}

			if tt.want == nil {
				if len(rec.sent) != 2 {
					t.Errorf("sent = %q, want text and image", rec.sent)
				}
				return
			}
			if len(rec.sent) != len(tt.want) || rec.sent[0] != tt.want[0] {
				t.Errorf("sent = %q, want %q", rec.sent, tt.want)
			}
		})
	}
}

func TestHandlers_Wind_ProjectionFailure(t *testing.T) {
	svc := &fakeService{coords: types.Coords{Latitude: 90, Longitude: 0}, forecast: seattleForecast()}
	rec := &recorder{}

	if err := newHandlers(svc).Wind(context.Background(), "north pole", rec); err != nil {
		t.Fatalf("Wind() unexpected error = %v", err)
	}

	texts := rec.texts()
	if len(rec.sent) != 1 || !strings.HasPrefix(texts[0], "Unknown error: ") || !strings.Contains(texts[0], "undefined") {
		t.Errorf("sent = %q, want a single unknown error", rec.sent)
	}
	if svc.forecastCalls != 0 {
		t.Errorf("forecast called after projection failure")
	}
}

func TestHandlers_EmptyPlace(t *testing.T) {
	svc := &fakeService{}
	rec := &recorder{}

	if err := newHandlers(svc).Wind(context.Background(), "   ", rec); err != nil {
		t.Fatalf("Wind() unexpected error = %v", err)
	}
	if len(rec.sent) != 1 || rec.sent[0] != "text:Usage: !wind <place name>" {
		t.Errorf("sent = %q", rec.sent)
	}
	if svc.geocodeCalls != 0 {
		t.Errorf("geocode called for an empty place")
	}
}

func TestHandlers_SendFailures(t *testing.T) {
	sendErr := errors.New("discord unavailable")

	tests := []struct {
		name   string
		failOn string
		svc    *fakeService
		want   int // messages recorded before the failure
	}{
		{"text fails", "text", &fakeService{forecast: seattleForecast()}, 0},
		{"image fails", "image", &fakeService{forecast: seattleForecast()}, 1},
		{"error reply fails", "text", &fakeService{geocodeErr: kindErr(weather.KindLookup)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{failOn: tt.failOn, sendErr: sendErr}
			err := newHandlers(tt.svc).Weather(context.Background(), "seattle", rec)
			if !errors.Is(err, sendErr) {
				t.Errorf("Weather() error = %v, want %v", err, sendErr)
			}
			if len(rec.sent) != tt.want {
				t.Errorf("sent = %q, want %d messages", rec.sent, tt.want)
			}
		})
	}
}

func TestHandlers_ConcurrentInvocationsKeepTheirOwnImage(t *testing.T) {
	stations := []string{"KATX", "KLOT", "KFWS", "KOKX", "KMUX", "KBOX"}

	var wg sync.WaitGroup
	recorders := make([]*recorder, len(stations))
	for i, station := range stations {
		forecast := seattleForecast()
		forecast.RadarStation = station
		h := newHandlers(&fakeService{coords: types.NewCoords(47.61, -122.33), forecast: forecast})
		recorders[i] = &recorder{}

		wg.Add(1)
		go func(rec *recorder) {
			defer wg.Done()
			_ = h.Weather(context.Background(), "seattle", rec)
		}(recorders[i])
	}
	wg.Wait()

	for i, station := range stations {
		images := recorders[i].images()
		if len(images) != 1 || !strings.Contains(images[0], station+"_loop.gif?") {
			t.Errorf("invocation %d images = %q, want station %s", i, images, station)
		}
	}
}

func TestHandlers_Lookup(t *testing.T) {
	h := newHandlers(&fakeService{})
	for _, name := range []string{"weather", "WIND", "Weather"} {
		if _, ok := h.Lookup(name); !ok {
			t.Errorf("Lookup(%q) not found", name)
		}
	}
	if _, ok := h.Lookup("forecast"); ok {
		t.Error("Lookup(forecast) found, want not found")
	}
}

// Sentinels from the providers must reach the user as the right message
// when the real service sits between the handler and the providers.
type stubGeocoder struct {
	resp *arcgis.FindAddressCandidatesResponse
	err  error
}

func (s stubGeocoder) FindAddressCandidates(ctx context.Context, singleLine string) (*arcgis.FindAddressCandidatesResponse, error) {
	return s.resp, s.err
}

type stubForecaster struct {
	resp *nws.MapClickResponse
	err  error
}

func (s stubForecaster) GetForecast(ctx context.Context, latitude, longitude float64) (*nws.MapClickResponse, error) {
	return s.resp, s.err
}

func TestHandlers_ProviderSentinels(t *testing.T) {
	found := &arcgis.FindAddressCandidatesResponse{Candidates: make([]arcgis.Candidate, 1)}

	tests := []struct {
		name     string
		geocoder stubGeocoder
		forecast stubForecaster
		want     string
	}{
		{"zero candidates", stubGeocoder{err: arcgis.ErrNoCandidates}, stubForecaster{}, reply.NotFoundMessage},
		{"success key", stubGeocoder{resp: found}, stubForecaster{err: nws.ErrInvalidLocation}, reply.NotFoundMessage},
		{"marine redirect", stubGeocoder{resp: found}, stubForecaster{err: nws.ErrRedirect}, reply.RedirectMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := weather.NewWeatherServiceWithProviders(tt.geocoder, tt.forecast, discardLogger())
			rec := &recorder{}
			if err := newHandlers(svc).Weather(context.Background(), "somewhere", rec); err != nil {
				t.Fatalf("Weather() unexpected error = %v", err)
			}
			if len(rec.sent) != 1 || rec.sent[0] != "text:"+tt.want {
				t.Errorf("sent = %q, want [%q]", rec.sent, tt.want)
			}
		})
	}
}
