package aqi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/i474232898/environmental-risk-aggregation/internal/common"
	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

func TestPollutantIndex(t *testing.T) {
	tests := []struct {
		name string
		p    Pollutant
		c    float64
		want int
	}{
		{"pm25 good", PM25, 10, 42},
		{"pm25 sensitive", PM25, 40, 112},
		{"pm25 zero", PM25, 0, 0},
		{"pm25 bracket top", PM25, 12.0, 50},
		{"pm25 bracket bottom", PM25, 12.1, 51},
		{"pm25 between brackets truncates", PM25, 12.05, 50},
		{"pm25 max", PM25, 500.4, 500},
		{"pm25 beyond scale", PM25, 600, 500},
		{"pm10 moderate", PM10, 100, 73},
		{"pm10 between brackets truncates", PM10, 54.7, 50},
		{"pm25 off step", PM25, 11.19, 47},
		{"pm10 off step", PM10, 100.7, 74},
		{"o3 off step", O3, 60.9, 70},
		{"o3 above table", O3, 250, 500},
		{"o3 low", O3, 27, 25},
		{"no table", NO2, 300, 0},
		{"negative", PM25, -3, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PollutantIndex(tc.p, tc.c))
		})
	}
}

func TestPollutantIndexMonotonic(t *testing.T) {
	for _, p := range []Pollutant{PM25, PM10, O3} {
		prev := 0
		for c := 0.0; c <= 620; c += 0.1 {
			idx := PollutantIndex(p, c)
			assert.GreaterOrEqual(t, idx, prev, "%s at %.1f", p, c)
			prev = idx
			if idx == Max {
				break
			}
		}
	}
}

func TestPollutantIndexBracketBoundaries(t *testing.T) {
	for p, tbl := range tables {
		for i := 1; i < len(tbl.breakpoints); i++ {
			lower, upper := tbl.breakpoints[i-1], tbl.breakpoints[i]
			top := PollutantIndex(p, lower.cHi)
			bottom := PollutantIndex(p, upper.cLo)
			assert.Equal(t, int(lower.iHi), top, "%s top of bracket %d", p, i-1)
			assert.Equal(t, top+1, bottom, "%s boundary %d", p, i)
		}
	}
}

func TestFromPollutants(t *testing.T) {
	aq := weather.AirQuality{PM25: common.Float(10), PM10: common.Float(100), NO2: common.Float(900)}
	assert.Equal(t, 73, FromPollutants(aq))
	assert.Equal(t, 0, FromPollutants(weather.AirQuality{}))
}

func TestFromWeather(t *testing.T) {
	noon := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		r    weather.Reading
		at   time.Time
		want int
	}{
		{
			name: "calm neutral day",
			r:    weather.Reading{TemperatureC: 20, HumidityPct: 50, WindSpeedMS: 6, PressureHpa: 1013},
			at:   noon,
			want: 50,
		},
		{
			name: "hot humid stagnant rush hour in summer",
			r:    weather.Reading{TemperatureC: 36, HumidityPct: 95, WindSpeedMS: 0.5, PressureHpa: 975},
			at:   time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC),
			want: 50 + 30 + 30 + 40 + 25 + 10 + 5,
		},
		{
			name: "windy high pressure",
			r:    weather.Reading{TemperatureC: 20, HumidityPct: 50, WindSpeedMS: 25, PressureHpa: 1035},
			at:   noon,
			want: 35,
		},
		{
			name: "freezing winter evening",
			r:    weather.Reading{TemperatureC: -12, HumidityPct: 25, WindSpeedMS: 1.5, PressureHpa: 995},
			at:   time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC),
			want: 50 + 25 + 10 + 30 + 15 + 10 + 10,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FromWeather(tc.r, tc.at)
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, Max)
		})
	}
}

func TestSelect(t *testing.T) {
	at := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	r := &weather.Reading{TemperatureC: 20, HumidityPct: 50, WindSpeedMS: 6, PressureHpa: 1013}

	idx, src := Select(&weather.AirQuality{PM25: common.Float(40)}, r, at)
	assert.Equal(t, 112, idx)
	assert.Equal(t, SourceOpenAQ, src)

	idx, src = Select(&weather.AirQuality{NO2: common.Float(40)}, r, at)
	assert.Equal(t, 50, idx)
	assert.Equal(t, SourceCalculated, src)

	idx, src = Select(nil, nil, at)
	assert.Equal(t, 50, idx)
	assert.Equal(t, SourceDefault, src)
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "Good", Category(50))
	assert.Equal(t, "Moderate", Category(51))
	assert.Equal(t, "Unhealthy for Sensitive Groups", Category(150))
	assert.Equal(t, "Unhealthy", Category(200))
	assert.Equal(t, "Very Unhealthy", Category(300))
	assert.Equal(t, "Hazardous", Category(301))
}
