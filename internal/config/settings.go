package config

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

var validate = validator.New()

// DefaultLocation is used when no coordinates are configured (New York City).
var DefaultLocation = weather.Coordinates{Lat: 40.7128, Lon: -74.0060}

// Settings are the user-editable, persisted application settings. JSON names match
// the stored settings document.
type Settings struct {
	Provider          string `json:"weatherAPI" validate:"required,oneof=tomorrow_openaq tomorrow openweathermap openmeteo weatherapi weatherbit"`
	APIKey            string `json:"apiKey"`
	HumidityKey       string `json:"tomorrowHumidityKey"`
	UseOpenAQ         bool   `json:"useOpenAQ"`
	AlertThreshold    string `json:"alertThreshold" validate:"required,oneof=low medium high"`
	RefreshIntervalMs int64  `json:"refreshInterval" validate:"min=10000"`
}

// DefaultSettings apply to any field absent from the stored document.
var DefaultSettings = Settings{
	Provider:          "tomorrow",
	UseOpenAQ:         true,
	AlertThreshold:    "medium",
	RefreshIntervalMs: 60000,
}

// Validate checks field constraints.
func (s Settings) Validate() error {
	return validate.Struct(s)
}

// RefreshInterval returns the refresh period.
func (s Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalMs) * time.Millisecond
}

// Redacted returns a copy safe to expose over the API.
func (s Settings) Redacted() Settings {
	s.APIKey = redact(s.APIKey)
	s.HumidityKey = redact(s.HumidityKey)
	return s
}

func redact(key string) string {
	if len(key) <= 4 {
		if key == "" {
			return ""
		}
		return "****"
	}
	return "****" + key[len(key)-4:]
}
