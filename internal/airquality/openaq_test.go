package airquality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

func TestDecodeAndNormalize(t *testing.T) {
	raw := `{"results":[{"location":"Manhattan","city":"New York","measurements":[
		{"parameter":"pm25","value":10,"unit":"µg/m³","lastUpdated":"2024-07-01T10:00:00Z"},
		{"parameter":"o3","value":0.03,"unit":"ppm","lastUpdated":"2024-07-01T11:00:00Z"},
		{"parameter":"bc","value":1.1,"unit":"µg/m³","lastUpdated":"2024-07-01T11:00:00Z"},
		{"parameter":"pm25","value":14,"unit":"µg/m³","lastUpdated":"2024-07-01T12:00:00Z"},
		{"parameter":"pm25","value":99,"unit":"µg/m³","lastUpdated":"2024-06-30T12:00:00Z"}]}]}`

	res, err := Decode([]byte(raw))
	require.NoError(t, err)

	aq := Normalize(res)
	assert.Equal(t, "Manhattan", aq.Location)
	require.NotNil(t, aq.PM25)
	assert.Equal(t, 14.0, *aq.PM25)
	require.NotNil(t, aq.O3)
	assert.Equal(t, 0.03, *aq.O3)
	assert.Nil(t, aq.PM10)
	assert.Nil(t, aq.CO)
	assert.True(t, aq.HasParticulates())
	assert.Equal(t, time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC), aq.LastUpdated)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`{"results":[]}`))
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = Decode([]byte(`{"meta":{}}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode([]byte(`<html>`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestNormalizeWithoutParticulates(t *testing.T) {
	aq := Normalize(Result{Measurements: []Measurement{{Parameter: "NO2", Value: 20}}})
	require.NotNil(t, aq.NO2)
	assert.False(t, aq.HasParticulates())
}

func TestLatestRequest(t *testing.T) {
	req := LatestRequest(weather.Coordinates{Lat: 40.7128, Lon: -74.006})
	q := req.Query
	assert.Equal(t, "40.7128,-74.006", q.Get("coordinates"))
	assert.Equal(t, "10000", q.Get("radius"))
	assert.Equal(t, "1", q.Get("limit"))
}
