package weather

import (
	"context"
	"log/slog"

	"github.com/PerryMapping/WeatherBot/internal/config"
	"github.com/PerryMapping/WeatherBot/internal/providers/arcgis"
	"github.com/PerryMapping/WeatherBot/internal/providers/nws"
	"github.com/PerryMapping/WeatherBot/internal/providers/rest"
	"github.com/PerryMapping/WeatherBot/internal/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GeocodeProvider resolves free-form place text to address candidates
type GeocodeProvider interface {
	FindAddressCandidates(ctx context.Context, singleLine string) (*arcgis.FindAddressCandidatesResponse, error)
}

// ForecastProvider fetches the point forecast for a coordinate
type ForecastProvider interface {
	GetForecast(ctx context.Context, latitude, longitude float64) (*nws.MapClickResponse, error)
}

// Service looks up locations and their forecasts. Errors are *Error values; use KindOf.
type Service interface {
	Geocode(ctx context.Context, place string) (types.Coords, error)
	GetForecast(ctx context.Context, coords types.Coords) (*Forecast, error)
}

type weatherService struct {
	geocodeProvider  GeocodeProvider
	forecastProvider ForecastProvider
	tracer           trace.Tracer
	logger           *slog.Logger
}

// NewWeatherService creates a weather service with real provider clients
func NewWeatherService(cfg *config.Config, logger *slog.Logger) Service {
	opts := rest.Options{UserAgent: cfg.Providers.UserAgent}
	return NewWeatherServiceWithProviders(
		arcgis.NewClientWithBaseURL(logger, opts, cfg.Providers.GeocodeURL),
		nws.NewClientWithBaseURL(logger, opts, cfg.Providers.ForecastURL),
		logger,
	)
}

// NewWeatherServiceWithProviders creates a weather service with custom providers.
// This is useful for testing with mock providers.
func NewWeatherServiceWithProviders(
	geocodeProvider GeocodeProvider,
	forecastProvider ForecastProvider,
	logger *slog.Logger,
) Service {
	return &weatherService{
		geocodeProvider:  geocodeProvider,
		forecastProvider: forecastProvider,
		tracer:           otel.Tracer("github.com/PerryMapping/WeatherBot/internal/weather"),
		logger:           logger.With("component", "weather-service"),
	}
}

// Geocode returns the first candidate's coordinates, rounded to two decimals
func (s *weatherService) Geocode(ctx context.Context, place string) (types.Coords, error) {
	ctx, span := s.tracer.Start(ctx, "weather.geocode")
	defer span.End()
	span.SetAttributes(attribute.String("place", place))

	resp, err := s.geocodeProvider.FindAddressCandidates(ctx, place)
	if err == nil && (resp == nil || len(resp.Candidates) == 0) {
		err = arcgis.ErrNoCandidates
	}
	if err == nil && resp.Candidates[0].Location == nil {
		err = arcgis.ErrNoLocation
	}
	if err != nil {
		err = classify("geocode", err)
		s.logger.Debug("geocoding failed", "place", place, "kind", KindOf(err), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, KindOf(err).String())
		return types.Coords{}, err
	}

	location := resp.Candidates[0].Location
	coords := types.NewCoords(location.Y, location.X)

	span.SetAttributes(
		attribute.Float64("latitude", coords.Latitude),
		attribute.Float64("longitude", coords.Longitude),
	)
	s.logger.Debug("geocoded place", "place", place, "coordinates", coords.String())

	return coords, nil
}

// GetForecast fetches and translates the forecast. Only the radar station is required here;
// the lead text and current conditions are checked by Forecast.LeadText and Forecast.Conditions.
func (s *weatherService) GetForecast(ctx context.Context, coords types.Coords) (*Forecast, error) {
	ctx, span := s.tracer.Start(ctx, "weather.forecast")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("latitude", coords.Latitude),
		attribute.Float64("longitude", coords.Longitude),
	)

	fail := func(err error) (*Forecast, error) {
		err = classify("forecast", err)
		s.logger.Debug("forecast failed",
			"coordinates", coords.String(),
			"kind", KindOf(err),
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, KindOf(err).String())
		return nil, err
	}

	resp, err := s.forecastProvider.GetForecast(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		return fail(err)
	}

	radar, err := resp.RadarStation()
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(attribute.String("radar_station", radar))

	return translateForecast(coords, radar, resp), nil
}

// translateForecast converts a MapClick response to the domain Forecast
func translateForecast(coords types.Coords, radar string, resp *nws.MapClickResponse) *Forecast {
	forecast := &Forecast{
		Coordinates:  coords,
		RadarStation: radar,
	}

	if text, err := resp.ForecastText(); err == nil {
		forecast.HasText = true
		forecast.Lead = text[0]
		names := resp.PeriodNames()
		for i, entry := range text[1:] {
			period := Period{Text: entry}
			// names line up with text, so entry i+1 is named names[i+1]
			if i+1 < len(names) {
				period.Name = names[i+1]
			}
			forecast.Periods = append(forecast.Periods, period)
		}
	}

	if obs, err := resp.Observation(); err == nil {
		forecast.Current = &CurrentConditions{
			TemperatureF:    obs.Temp.String(),
			HumidityPercent: obs.Relh.String(),
			Sky:             obs.Weather.String(),
			Wind:            obs.Wind.String(),
		}
	}

	return forecast
}
