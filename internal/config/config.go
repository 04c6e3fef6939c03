package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	Port      string
	LogLevel  string
	LogFormat string

	// Outbound provider calls.
	HTTPTimeout time.Duration
	MaxRetries  int

	// Location is the tracked point.
	Location weather.Coordinates

	// Defaults seed the persisted settings on first start.
	Defaults Settings

	StoreBackend string
	StorePath    string // JSON file backend
	RedisAddr    string
	RedisPrefix  string
	SQLitePath   string

	KafkaBrokers    []string
	KafkaAlertTopic string

	InfluxAddr     string
	InfluxUser     string
	InfluxPassword string
	InfluxDB       string

	GeocoderAPIKey string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
}

// Load reads configuration from environment with sensible defaults. Missing env
// files are not an error.
func Load(envFiles ...string) (*AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "text")

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout
	cfg.MaxRetries = getenvInt("PROVIDER_MAX_RETRIES", 2)

	lat, err := getenvFloat("LOCATION_LAT", DefaultLocation.Lat)
	if err != nil {
		return nil, err
	}
	lon, err := getenvFloat("LOCATION_LON", DefaultLocation.Lon)
	if err != nil {
		return nil, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid location %f,%f", lat, lon)
	}
	cfg.Location = weather.Coordinates{Lat: lat, Lon: lon}

	interval, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.Defaults = Settings{
		Provider:          strings.ToLower(getenvDefault("WEATHER_PROVIDER", DefaultSettings.Provider)),
		APIKey:            os.Getenv("WEATHER_API_KEY"),
		HumidityKey:       os.Getenv("TOMORROW_HUMIDITY_KEY"),
		UseOpenAQ:         getenvBool("USE_OPENAQ", DefaultSettings.UseOpenAQ),
		AlertThreshold:    strings.ToLower(getenvDefault("ALERT_THRESHOLD", DefaultSettings.AlertThreshold)),
		RefreshIntervalMs: interval.Milliseconds(),
	}
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default settings: %w", err)
	}

	cfg.StoreBackend = strings.ToLower(getenvDefault("STORE_BACKEND", StoreFile))
	switch cfg.StoreBackend {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q", cfg.StoreBackend)
	}
	cfg.StorePath = getenvDefault("STORE_PATH", "data/state.json")
	cfg.RedisAddr = getenvDefault("REDIS_ADDR", "localhost:6379")
	cfg.RedisPrefix = os.Getenv("REDIS_PREFIX")
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "data/state.db")

	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaAlertTopic = getenvDefault("KAFKA_ALERT_TOPIC", "environment-alerts")

	cfg.InfluxAddr = os.Getenv("INFLUX_ADDR")
	cfg.InfluxUser = os.Getenv("INFLUX_USER")
	cfg.InfluxPassword = os.Getenv("INFLUX_PASSWORD")
	cfg.InfluxDB = getenvDefault("INFLUX_DB", "environment")

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = getenvDefault("OPENAI_MODEL", "gpt-4o-mini")
	cfg.OpenAIBaseURL = getenvDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
