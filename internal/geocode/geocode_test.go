package geocode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

var point = weather.Coordinates{Lat: 40.7128, Lon: -74.006}

func TestResolveCachesSuccess(t *testing.T) {
	calls := 0
	r := newResolver(func(lat, lon float64) (string, error) {
		calls++
		return "Manhattan, New York", nil
	})

	for i := 0; i < 3; i++ {
		got, err := r.Resolve(context.Background(), point)
		require.NoError(t, err)
		assert.Equal(t, "Manhattan, New York", got)
	}
	assert.Equal(t, 1, calls)
}

func TestResolveErrors(t *testing.T) {
	calls := 0
	r := newResolver(func(lat, lon float64) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("quota exceeded")
		}
		return "", nil
	})

	_, err := r.Resolve(context.Background(), point)
	assert.ErrorContains(t, err, "quota")

	_, err = r.Resolve(context.Background(), point)
	assert.ErrorIs(t, err, ErrNoAddress)
	assert.Equal(t, 2, calls)
}

func TestResolveHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	r := newResolver(func(lat, lon float64) (string, error) {
		<-release
		return "late", nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := r.Resolve(ctx, point)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Manhattan, New York", label(geocoder.Address{District: "Manhattan", City: "New York"}))
	assert.Equal(t, "Newark", label(geocoder.Address{City: " Newark "}))
	assert.Equal(t, "1 Main St", label(geocoder.Address{FormattedAddress: "1 Main St"}))
}
