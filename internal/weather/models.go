package weather

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/environmental-risk-aggregation/internal/common"
)

// Coordinates identifies the geographic point we track.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LatString and LonString render coordinates the way provider query strings expect them.
func (c Coordinates) LatString() string { return strconv.FormatFloat(c.Lat, 'f', -1, 64) }
func (c Coordinates) LonString() string { return strconv.FormatFloat(c.Lon, 'f', -1, 64) }

// Pair returns "lat,lon".
func (c Coordinates) Pair() string {
	return c.LatString() + "," + c.LonString()
}

// Condition is the normalized weather condition triple.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// IsClear reports whether the condition describes clear sky.
func (c Condition) IsClear() bool {
	return strings.Contains(strings.ToLower(c.Main), "clear")
}

// IsWet reports whether the condition implies precipitation.
func (c Condition) IsWet() bool {
	return common.HasAny(strings.ToLower(c.Main), "rain", "drizzle", "thunderstorm")
}

// Reading is the canonical current-conditions record every provider normalizes into.
// Wind is always in m/s, humidity always in [0,100].
type Reading struct {
	TemperatureC     float64   `json:"temperatureC"`
	FeelsLikeC       float64   `json:"feelsLikeC"`
	HumidityPct      float64   `json:"humidityPct"`
	PressureHpa      float64   `json:"pressureHpa"`
	WindSpeedMS      float64   `json:"windSpeedMs"`
	WindDirectionDeg float64   `json:"windDirectionDeg"`
	Condition        Condition `json:"condition"`
	LocationName     string    `json:"locationName"`
}

// WithHumidity returns a copy of r with the humidity replaced.
func (r Reading) WithHumidity(pct float64) Reading {
	r.HumidityPct = ClampHumidity(pct)
	return r
}

// WindKmh converts the wind speed to km/h.
func (r Reading) WindKmh() float64 {
	return r.WindSpeedMS * 3.6
}

// ClampHumidity bounds a relative humidity value to [0,100].
func ClampHumidity(pct float64) float64 {
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

// AirQuality holds measured pollutant concentrations. A nil field was not measured.
type AirQuality struct {
	PM25        *float64  `json:"pm25,omitempty"`
	PM10        *float64  `json:"pm10,omitempty"`
	O3          *float64  `json:"o3,omitempty"`
	NO2         *float64  `json:"no2,omitempty"`
	SO2         *float64  `json:"so2,omitempty"`
	CO          *float64  `json:"co,omitempty"`
	Location    string    `json:"location,omitempty"`
	LastUpdated time.Time `json:"lastUpdated,omitempty"`
}

// HasParticulates reports whether any of the pollutants with an index table was measured.
func (a AirQuality) HasParticulates() bool {
	return a.PM25 != nil || a.PM10 != nil || a.O3 != nil
}

// ForecastDay is one day of a provider forecast.
type ForecastDay struct {
	Date         string   `json:"date"` // YYYY-MM-DD
	TemperatureC float64  `json:"temperatureC"`
	Description  string   `json:"description"`
	Icon         string   `json:"icon"`
	PrecipMm     *float64 `json:"precipMm,omitempty"`
}

// Request describes an outbound GET without performing it.
type Request struct {
	Endpoint string
	Query    url.Values
}

// URL renders the full request URL.
func (r Request) URL() string {
	if len(r.Query) == 0 {
		return r.Endpoint
	}
	return r.Endpoint + "?" + r.Query.Encode()
}
