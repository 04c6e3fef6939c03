package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/i474232898/environmental-risk-aggregation/internal/alerts"
	"github.com/i474232898/environmental-risk-aggregation/internal/analysis"
	httpapi "github.com/i474232898/environmental-risk-aggregation/internal/api/http"
	"github.com/i474232898/environmental-risk-aggregation/internal/config"
	"github.com/i474232898/environmental-risk-aggregation/internal/export"
	"github.com/i474232898/environmental-risk-aggregation/internal/geocode"
	"github.com/i474232898/environmental-risk-aggregation/internal/logger"
	"github.com/i474232898/environmental-risk-aggregation/internal/observability"
	"github.com/i474232898/environmental-risk-aggregation/internal/orchestrator"
	"github.com/i474232898/environmental-risk-aggregation/internal/scheduler"
	"github.com/i474232898/environmental-risk-aggregation/internal/store"
	"github.com/i474232898/environmental-risk-aggregation/internal/weather/providers"
)

// cycleTimeout bounds one scheduled refresh cycle.
const cycleTimeout = 2 * time.Minute

func main() {
	envFile := flag.StringP("env-file", "e", "", "Load environment variables from this file (default .env)")
	once := flag.Bool("once", false, "Run a single refresh cycle and exit")
	flag.Parse()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}

	cfg, err := config.Load(envFiles...)
	if err != nil {
		slog.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	log := logger.NewWithFormat(logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *once); err != nil {
		log.Error("service stopped", logger.Err(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log *slog.Logger, once bool) error {
	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	settings := store.NewSettingsStore(backend, cfg.Defaults, log)
	history := store.NewHistoryStore(backend, nil, log)
	metrics := observability.NewMetrics()

	// Shared HTTP client for outbound provider calls.
	backoff := providers.DefaultBackoff
	backoff.MaxRetries = cfg.MaxRetries
	fetcher := providers.NewClient(&http.Client{Timeout: cfg.HTTPTimeout}, backoff)

	feed := alerts.NewFeed(alerts.DefaultFeedSize, nil)

	notifiers := alerts.Multi{alerts.NewLogNotifier(log)}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := alerts.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaAlertTopic, log)
		defer kafka.Close()
		notifiers = append(notifiers, kafka)
		log.Info("kafka notifications enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAlertTopic)
	}

	opts := orchestrator.Options{
		Settings: settings,
		History:  history,
		Fetcher:  fetcher,
		Alerts:   feed,
		Notifier: notifiers,
		Metrics:  metrics,
		Logger:   log,
		Location: cfg.Location,
	}

	if cfg.InfluxAddr != "" {
		exporter, err := export.NewInfluxExporter(cfg.InfluxAddr, cfg.InfluxUser, cfg.InfluxPassword, cfg.InfluxDB)
		if err != nil {
			log.Warn("influx export disabled", logger.Err(err))
		} else {
			defer exporter.Close()
			opts.Exporter = exporter
		}
	}

	// Reverse geocoding needs a Google API key.
	if cfg.GeocoderAPIKey != "" {
		opts.Resolver = geocode.NewResolver(cfg.GeocoderAPIKey)
	}

	orch := orchestrator.New(opts)
	orch.LoadHistory(ctx)

	if once {
		return orch.Refresh(ctx)
	}

	sched := scheduler.New(orch, settings.Load(ctx).RefreshInterval(), cycleTimeout, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := httpapi.NewApp(httpapi.Deps{
		Dashboard: orch,
		Settings:  settings,
		Alerts:    feed,
		Scheduler: sched,
		Chat:      analysis.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL),
		Metrics:   promhttp.Handler(),
	})

	go func() {
		log.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", logger.Err(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", logger.Err(err))
	}
	return nil
}
