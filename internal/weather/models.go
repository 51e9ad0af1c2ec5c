package weather

import (
	"fmt"

	"github.com/PerryMapping/WeatherBot/internal/providers/nws"
	"github.com/PerryMapping/WeatherBot/internal/types"
)

// Forecast is the forecast for one geocoded location.
type Forecast struct {
	Coordinates  types.Coords
	RadarStation string
	HasText      bool     // data.text was present with at least one entry
	Lead         string   // first text entry, the current period overview; may be empty
	Periods      []Period // remaining text entries
	Current      *CurrentConditions
}

type Period struct {
	Name string
	Text string
}

type CurrentConditions struct {
	TemperatureF    string
	HumidityPercent string
	Sky             string
	Wind            string
}

// LeadText returns the current period overview, or a KindFieldMissing error when the
// response had no forecast text.
func (f *Forecast) LeadText() (string, error) {
	if !f.HasText {
		return "", classify("forecast text", fmt.Errorf("data.text: %w", nws.ErrFieldMissing))
	}
	return f.Lead, nil
}

// Conditions returns the current observation, or a KindFieldMissing error when the
// response lacked any of its fields.
func (f *Forecast) Conditions() (CurrentConditions, error) {
	if f.Current == nil {
		return CurrentConditions{}, classify("current conditions", fmt.Errorf("currentobservation: %w", nws.ErrFieldMissing))
	}
	return *f.Current, nil
}
