// Package geocode resolves a human readable label for the tracked coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

// ErrNoAddress is returned when the reverse lookup yields nothing usable.
var ErrNoAddress = errors.New("geocode: no address for coordinates")

type lookupFunc func(lat, lon float64) (string, error)

// Resolver reverse-geocodes coordinates through the Google Geocoding API and caches
// successful lookups, since the tracked point rarely changes.
type Resolver struct {
	lookup lookupFunc

	mu    sync.Mutex
	cache map[string]string
}

// NewResolver configures the geocoder client with apiKey.
func NewResolver(apiKey string) *Resolver {
	geocoder.ApiKey = apiKey
	return newResolver(reverseLookup)
}

func newResolver(lookup lookupFunc) *Resolver {
	return &Resolver{lookup: lookup, cache: make(map[string]string)}
}

// Resolve returns a label such as "Manhattan, New York" for c.
func (r *Resolver) Resolve(ctx context.Context, c weather.Coordinates) (string, error) {
	key := fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)

	r.mu.Lock()
	label, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return label, nil
	}

	type result struct {
		label string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		l, err := r.lookup(c.Lat, c.Lon)
		done <- result{l, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		if res.label == "" {
			return "", ErrNoAddress
		}
		r.mu.Lock()
		r.cache[key] = res.label
		r.mu.Unlock()
		return res.label, nil
	}
}

func reverseLookup(lat, lon float64) (string, error) {
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if len(addresses) == 0 {
		return "", ErrNoAddress
	}
	return label(addresses[0]), nil
}

// label prefers "District, City" and falls back to the formatted address.
func label(a geocoder.Address) string {
	var parts []string
	for _, p := range []string{a.District, a.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return strings.TrimSpace(a.FormattedAddress)
}
