package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCondition(t *testing.T) {
	tests := []struct {
		main  string
		clear bool
		wet   bool
	}{
		{"Clear", true, false},
		{"clear sky", true, false},
		{"Rain", false, true},
		{"Light drizzle", false, true},
		{"Thunderstorm", false, true},
		{"Snow", false, false},
		{"", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.main, func(t *testing.T) {
			c := Condition{Main: tc.main}
			assert.Equal(t, tc.clear, c.IsClear())
			assert.Equal(t, tc.wet, c.IsWet())
		})
	}
}

func TestReadingWithHumidity(t *testing.T) {
	r := Reading{HumidityPct: 40, TemperatureC: 20}
	got := r.WithHumidity(120)
	assert.Equal(t, 100.0, got.HumidityPct)
	assert.Equal(t, 40.0, r.HumidityPct)
	assert.Equal(t, 20.0, got.TemperatureC)
}

func TestForecastDays(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC) }
	points := []ForecastPoint{
		{Time: day(2, 9), TemperatureC: 12},
		{Time: day(1, 6), TemperatureC: 10},
		{Time: day(1, 18), TemperatureC: 15},
		{Time: day(3, 0), TemperatureC: 8},
	}

	days := ForecastDays(points, 2)
	assert.Len(t, days, 2)
	assert.Equal(t, "2024-03-01", days[0].Date)
	assert.Equal(t, 10.0, days[0].TemperatureC)
	assert.Equal(t, "2024-03-02", days[1].Date)

	assert.Len(t, ForecastDays(points, 0), 3)
	assert.Empty(t, ForecastDays(nil, 7))
}

func TestRequestURL(t *testing.T) {
	c := Coordinates{Lat: 40.7128, Lon: -74.006}
	assert.Equal(t, "40.7128,-74.006", c.Pair())
	assert.Equal(t, "https://example.test/x", Request{Endpoint: "https://example.test/x"}.URL())
}
