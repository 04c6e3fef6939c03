package orchestrator

import (
	"fmt"
	"math"

	"github.com/i474232898/environmental-risk-aggregation/internal/aqi"
	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

// Humidity provenance labels.
const (
	HumiditySourceProvider = "Provider"
	HumiditySourceTomorrow = "Tomorrow.io"
)

// Display holds the formatted dashboard values.
type Display struct {
	Temperature   string `json:"temperature"`
	FeelsLike     string `json:"feelsLike"`
	Humidity      string `json:"humidity"`
	HumidityTrend string `json:"humidityTrend"`
	WindSpeed     string `json:"windSpeed"`
	WindDirection string `json:"windDirection"`
	AQI           string `json:"aqi"`
	AQISource     string `json:"aqiSource"`
	AQICategory   string `json:"aqiCategory"`
}

var compass = [16]string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}

// CompassDirection maps degrees to one of 16 compass points.
func CompassDirection(deg float64) string {
	i := int(math.Floor(deg/22.5+0.5)) % 16
	if i < 0 {
		i += 16
	}
	return compass[i]
}

// HumidityDescription labels a relative humidity percentage.
func HumidityDescription(pct float64) string {
	switch {
	case pct < 30:
		return "Very dry"
	case pct < 50:
		return "Dry"
	case pct < 70:
		return "Comfortable"
	case pct < 90:
		return "Humid"
	default:
		return "Very humid"
	}
}

func weatherDisplay(r weather.Reading, humiditySource string) Display {
	return Display{
		Temperature:   fmt.Sprintf("%d°C", roundInt(r.TemperatureC)),
		FeelsLike:     fmt.Sprintf("Feels like %d°C", roundInt(r.FeelsLikeC)),
		Humidity:      fmt.Sprintf("%s%%", formatNumber(r.HumidityPct)),
		HumidityTrend: fmt.Sprintf("%s (%s)", HumidityDescription(r.HumidityPct), humiditySource),
		WindSpeed:     fmt.Sprintf("%d km/h", roundInt(r.WindKmh())),
		WindDirection: CompassDirection(r.WindDirectionDeg),
	}
}

func (d *Display) setAQI(index int, source aqi.Source) {
	d.AQI = fmt.Sprintf("%d", index)
	d.AQISource = string(source)
	d.AQICategory = aqi.Category(index)
}

func roundInt(v float64) int {
	return int(math.Floor(v + 0.5))
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}
