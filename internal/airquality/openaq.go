// Package airquality normalizes OpenAQ "latest" results into weather.AirQuality.
package airquality

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

const (
	// Source is the transport source name used for breakers and metrics.
	Source = "openaq"

	latestURL    = "https://api.openaq.org/v2/latest"
	searchRadius = "10000" // meters
)

var (
	// ErrNoResults is returned when OpenAQ has no station near the point.
	ErrNoResults = errors.New("openaq: no results")
	// ErrMalformed is returned for payloads that are not OpenAQ results.
	ErrMalformed = errors.New("openaq: malformed payload")
)

// Measurement is one pollutant sample of a station.
type Measurement struct {
	Parameter   string    `json:"parameter"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Result is a single station entry of the latest endpoint.
type Result struct {
	Location     string        `json:"location"`
	City         string        `json:"city"`
	Measurements []Measurement `json:"measurements"`
}

// LatestRequest builds the nearest-station request for c.
func LatestRequest(c weather.Coordinates) weather.Request {
	values := url.Values{}
	values.Set("coordinates", c.Pair())
	values.Set("radius", searchRadius)
	values.Set("limit", "1")
	return weather.Request{Endpoint: latestURL, Query: values}
}

// Decode unwraps the first result of a latest response.
func Decode(raw []byte) (Result, error) {
	var payload struct {
		Results *[]Result `json:"results"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if payload.Results == nil {
		return Result{}, fmt.Errorf("%w: missing results", ErrMalformed)
	}
	if len(*payload.Results) == 0 {
		return Result{}, ErrNoResults
	}
	return (*payload.Results)[0], nil
}

// Normalize maps the recognized pollutants of r. A later measurement of the same
// parameter replaces an earlier one unless it is older.
func Normalize(r Result) weather.AirQuality {
	aq := weather.AirQuality{Location: r.Location}
	seen := make(map[string]time.Time)

	for _, m := range r.Measurements {
		param := strings.ToLower(m.Parameter)
		slot := field(&aq, param)
		if slot == nil {
			continue
		}
		if prev, ok := seen[param]; ok && m.LastUpdated.Before(prev) {
			continue
		}
		seen[param] = m.LastUpdated

		v := m.Value
		*slot = &v
		if m.LastUpdated.After(aq.LastUpdated) {
			aq.LastUpdated = m.LastUpdated
		}
	}
	return aq
}

func field(aq *weather.AirQuality, param string) **float64 {
	switch param {
	case "pm25":
		return &aq.PM25
	case "pm10":
		return &aq.PM10
	case "o3":
		return &aq.O3
	case "no2":
		return &aq.NO2
	case "so2":
		return &aq.SO2
	case "co":
		return &aq.CO
	default:
		return nil
	}
}
