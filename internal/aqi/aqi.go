// Package aqi converts pollutant concentrations to the EPA air quality index and
// estimates an index from weather alone when no concentrations are available.
package aqi

import (
	"math"
	"time"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

// Pollutant names match OpenAQ parameter names.
type Pollutant string

const (
	PM25 Pollutant = "pm25"
	PM10 Pollutant = "pm10"
	O3   Pollutant = "o3"
	NO2  Pollutant = "no2"
	SO2  Pollutant = "so2"
	CO   Pollutant = "co"
)

// Max is the top of the index scale.
const Max = 500

// Source tells where a selected index came from.
type Source string

const (
	SourceOpenAQ     Source = "OpenAQ"
	SourceCalculated Source = "Calculated"
	SourceDefault    Source = "Default"
)

// defaultIndex is reported when neither pollutants nor weather are available.
const defaultIndex = 50

type breakpoint struct {
	cLo, cHi float64
	iLo, iHi float64
}

type table struct {
	// step is the reporting precision of the concentrations in the table.
	step        float64
	breakpoints []breakpoint
}

var tables = map[Pollutant]table{
	PM25: {step: 0.1, breakpoints: []breakpoint{
		{0, 12.0, 0, 50},
		{12.1, 35.4, 51, 100},
		{35.5, 55.4, 101, 150},
		{55.5, 150.4, 151, 200},
		{150.5, 250.4, 201, 300},
		{250.5, 500.4, 301, 500},
	}},
	PM10: {step: 1, breakpoints: []breakpoint{
		{0, 54, 0, 50},
		{55, 154, 51, 100},
		{155, 254, 101, 150},
		{255, 354, 151, 200},
		{355, 424, 201, 300},
		{425, 604, 301, 500},
	}},
	O3: {step: 1, breakpoints: []breakpoint{
		{0, 54, 0, 50},
		{55, 70, 51, 100},
		{71, 85, 101, 150},
		{86, 105, 151, 200},
		{106, 200, 201, 300},
	}},
}

// PollutantIndex converts one concentration. Pollutants without a table yield 0,
// concentrations above the last bracket yield Max.
func PollutantIndex(p Pollutant, concentration float64) int {
	t, ok := tables[p]
	if !ok {
		return 0
	}
	if concentration <= 0 {
		return 0
	}

	// The bracket is picked on the value truncated to table precision, so values
	// between brackets (12.05) fall into the lower one. Interpolation uses the raw
	// value, clamped to the picked bracket.
	truncated := math.Floor(concentration/t.step+1e-9) * t.step
	for _, bp := range t.breakpoints {
		if truncated <= bp.cHi+1e-9 {
			c := math.Min(math.Max(concentration, bp.cLo), bp.cHi)
			return round((bp.iHi-bp.iLo)/(bp.cHi-bp.cLo)*(c-bp.cLo) + bp.iLo)
		}
	}
	return Max
}

// FromPollutants returns the maximum index over all measured pollutants.
func FromPollutants(aq weather.AirQuality) int {
	measured := []struct {
		p Pollutant
		v *float64
	}{
		{PM25, aq.PM25}, {PM10, aq.PM10}, {O3, aq.O3},
		{NO2, aq.NO2}, {SO2, aq.SO2}, {CO, aq.CO},
	}

	best := 0
	for _, m := range measured {
		if m.v == nil {
			continue
		}
		if idx := PollutantIndex(m.p, *m.v); idx > best {
			best = idx
		}
	}
	return best
}

// FromWeather estimates an index from stagnation-prone weather, rush hours and season.
// The result is not on the same scale as FromPollutants.
func FromWeather(r weather.Reading, at time.Time) int {
	score := 50

	switch t := r.TemperatureC; {
	case t > 35:
		score += 30
	case t > 30:
		score += 20
	case t < -10:
		score += 25
	case t < 0:
		score += 15
	}

	switch h := r.HumidityPct; {
	case h > 90:
		score += 30
	case h > 80:
		score += 20
	case h < 20:
		score += 15
	case h < 30:
		score += 10
	}

	switch w := r.WindSpeedMS; {
	case w < 1:
		score += 40
	case w < 2:
		score += 30
	case w < 5:
		score += 15
	case w > 20:
		score -= 10
	}

	switch p := r.PressureHpa; {
	case p < 980:
		score += 25
	case p < 1000:
		score += 15
	case p > 1030:
		score -= 5
	}

	if h := at.Hour(); (h >= 7 && h <= 9) || (h >= 17 && h <= 19) {
		score += 10
	}

	switch at.Month() {
	case time.December, time.January, time.February:
		score += 10
	case time.June, time.July, time.August, time.September:
		score += 5
	}

	return clamp(score, 0, Max)
}

// Select picks the index to report: measured particulates when any is present,
// otherwise the weather estimate, otherwise a neutral default.
func Select(aq *weather.AirQuality, r *weather.Reading, at time.Time) (int, Source) {
	if aq != nil && aq.HasParticulates() {
		return FromPollutants(*aq), SourceOpenAQ
	}
	if r != nil {
		return FromWeather(*r, at), SourceCalculated
	}
	return defaultIndex, SourceDefault
}

// Category returns the EPA category label for an index.
func Category(index int) string {
	switch {
	case index <= 50:
		return "Good"
	case index <= 100:
		return "Moderate"
	case index <= 150:
		return "Unhealthy for Sensitive Groups"
	case index <= 200:
		return "Unhealthy"
	case index <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
