// Package store persists the daily history and application settings through a
// small key/value Backend.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no value is stored under a key.
	ErrNotFound = errors.New("no value stored for key")
)

// Storage keys.
const (
	HistoryKey  = "cityExpansionWeatherHistory"
	SettingsKey = "cityExpansionSettings"
)

// Backend stores raw JSON documents by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
