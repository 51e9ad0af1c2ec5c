package nws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MapClickResponse is the FcstType=json payload of forecast.weather.gov/MapClick.php.
// Pointer fields are nil when the key is absent from the response.
type MapClickResponse struct {
	Location *struct {
		Radar           *string `json:"radar"`
		AreaDescription string  `json:"areaDescription"`
		WFO             string  `json:"wfo"`
		Zone            string  `json:"zone"`
	} `json:"location"`
	Time *struct {
		StartPeriodName []string `json:"startPeriodName"`
	} `json:"time"`
	Data *struct {
		Text []string `json:"text"`
	} `json:"data"`
	CurrentObservation *CurrentObservation `json:"currentobservation"`
}

type CurrentObservation struct {
	Name    string `json:"name"`
	Date    string `json:"Date"`
	Temp    *Value `json:"Temp"`
	Relh    *Value `json:"Relh"`
	Weather *Value `json:"Weather"`
	Wind    *Value `json:"Wind"`
}

// Value is an observation field that the API sends either as a string or as a bare number.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("observation value %s is neither string nor number", data)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*v = Value(n.String())
	return nil
}

func (v *Value) String() string {
	if v == nil {
		return ""
	}
	return string(*v)
}

// RadarStation returns location.radar.
func (r *MapClickResponse) RadarStation() (string, error) {
	if r.Location == nil || r.Location.Radar == nil || *r.Location.Radar == "" {
		return "", fmt.Errorf("location.radar: %w", ErrFieldMissing)
	}
	return *r.Location.Radar, nil
}

// ForecastText returns data.text; the first entry is the current period overview.
func (r *MapClickResponse) ForecastText() ([]string, error) {
	if r.Data == nil || len(r.Data.Text) == 0 {
		return nil, fmt.Errorf("data.text: %w", ErrFieldMissing)
	}
	return r.Data.Text, nil
}

// PeriodNames returns time.startPeriodName, or nil when absent.
func (r *MapClickResponse) PeriodNames() []string {
	if r.Time == nil {
		return nil
	}
	return r.Time.StartPeriodName
}

// Observation returns currentobservation once Temp, Relh, Weather and Wind are all present.
func (r *MapClickResponse) Observation() (*CurrentObservation, error) {
	obs := r.CurrentObservation
	if obs == nil {
		return nil, fmt.Errorf("currentobservation: %w", ErrFieldMissing)
	}

	fields := []struct {
		name  string
		value *Value
	}{
		{"Temp", obs.Temp},
		{"Relh", obs.Relh},
		{"Weather", obs.Weather},
		{"Wind", obs.Wind},
	}
	for _, f := range fields {
		if f.value == nil {
			return nil, fmt.Errorf("currentobservation.%s: %w", f.name, ErrFieldMissing)
		}
	}

	return obs, nil
}
