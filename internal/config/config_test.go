package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, DefaultLocation, cfg.Location)
	assert.Equal(t, "tomorrow", cfg.Defaults.Provider)
	assert.Equal(t, "medium", cfg.Defaults.AlertThreshold)
	assert.True(t, cfg.Defaults.UseOpenAQ)
	assert.Equal(t, time.Minute, cfg.Defaults.RefreshInterval())
	assert.Equal(t, StoreFile, cfg.StoreBackend)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOCATION_LAT", "-23.55")
	t.Setenv("LOCATION_LON", "-46.63")
	t.Setenv("WEATHER_PROVIDER", "OpenMeteo")
	t.Setenv("ALERT_THRESHOLD", "high")
	t.Setenv("USE_OPENAQ", "false")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, -23.55, cfg.Location.Lat)
	assert.Equal(t, "openmeteo", cfg.Defaults.Provider)
	assert.Equal(t, "high", cfg.Defaults.AlertThreshold)
	assert.False(t, cfg.Defaults.UseOpenAQ)
	assert.Equal(t, int64(300000), cfg.Defaults.RefreshIntervalMs)
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string][2]string{
		"bad timeout":   {"HTTP_TIMEOUT", "soon"},
		"bad latitude":  {"LOCATION_LAT", "north"},
		"out of range":  {"LOCATION_LAT", "91"},
		"bad provider":  {"WEATHER_PROVIDER", "accuweather"},
		"bad threshold": {"ALERT_THRESHOLD", "extreme"},
		"fast refresh":  {"REFRESH_INTERVAL", "1s"},
		"bad backend":   {"STORE_BACKEND", "postgres"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load("testdata/does-not-exist.env")
			assert.Error(t, err)
		})
	}
}

func TestSettings(t *testing.T) {
	s := DefaultSettings
	s.APIKey = "abcdef123456"
	require.NoError(t, s.Validate())
	assert.Equal(t, "****3456", s.Redacted().APIKey)
	assert.Equal(t, "", s.Redacted().HumidityKey)
	assert.Equal(t, "abcdef123456", s.APIKey)

	s.Provider = "darksky"
	assert.Error(t, s.Validate())
}
