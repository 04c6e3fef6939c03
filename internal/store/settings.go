package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/i474232898/environmental-risk-aggregation/internal/config"
	"github.com/i474232898/environmental-risk-aggregation/internal/logger"
)

// SettingsStore persists config.Settings. Stored fields are merged over the defaults.
type SettingsStore struct {
	backend  Backend
	defaults config.Settings
	logger   *slog.Logger
}

// NewSettingsStore creates a SettingsStore.
func NewSettingsStore(backend Backend, defaults config.Settings, logger *slog.Logger) *SettingsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsStore{backend: backend, defaults: defaults, logger: logger}
}

// Defaults returns the settings used when nothing is stored.
func (s *SettingsStore) Defaults() config.Settings {
	return s.defaults
}

// Load returns the effective settings. Unreadable or invalid documents fall back to
// the defaults.
func (s *SettingsStore) Load(ctx context.Context) config.Settings {
	raw, err := s.backend.Get(ctx, SettingsKey)
	if errors.Is(err, ErrNotFound) {
		return s.defaults
	}
	if err != nil {
		s.logger.Warn("settings unavailable, using defaults", logger.Err(err))
		return s.defaults
	}

	merged := s.defaults
	if err := json.Unmarshal(raw, &merged); err != nil {
		s.logger.Warn("settings corrupt, using defaults", logger.Err(err))
		return s.defaults
	}
	if err := merged.Validate(); err != nil {
		s.logger.Warn("stored settings invalid, using defaults", logger.Err(err))
		return s.defaults
	}
	return merged
}

// Save validates and persists settings.
func (s *SettingsStore) Save(ctx context.Context, settings config.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.backend.Put(ctx, SettingsKey, raw); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}
