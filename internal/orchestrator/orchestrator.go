// Package orchestrator runs refresh cycles and owns the published dashboard state.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/environmental-risk-aggregation/internal/airquality"
	"github.com/i474232898/environmental-risk-aggregation/internal/alerts"
	"github.com/i474232898/environmental-risk-aggregation/internal/aqi"
	"github.com/i474232898/environmental-risk-aggregation/internal/config"
	"github.com/i474232898/environmental-risk-aggregation/internal/export"
	"github.com/i474232898/environmental-risk-aggregation/internal/firerisk"
	"github.com/i474232898/environmental-risk-aggregation/internal/logger"
	"github.com/i474232898/environmental-risk-aggregation/internal/observability"
	"github.com/i474232898/environmental-risk-aggregation/internal/risk"
	"github.com/i474232898/environmental-risk-aggregation/internal/store"
	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
	"github.com/i474232898/environmental-risk-aggregation/internal/weather/providers"
)

var (
	ErrMissingAPIKey = errors.New("weather API key not configured")
	ErrPrimaryFetch  = errors.New("primary weather fetch failed")
)

const (
	fallbackWarning = "Tomorrow.io unavailable; using OpenWeatherMap as fallback."
	defaultLocation = "Current Location"
)

// Fetcher performs one upstream GET and returns the body.
type Fetcher interface {
	Fetch(ctx context.Context, source string, req weather.Request) ([]byte, error)
}

// SettingsSource supplies the settings for a cycle.
type SettingsSource interface {
	Load(ctx context.Context) config.Settings
}

// Alerter records user-facing alerts.
type Alerter interface {
	Raise(ctx context.Context, severity alerts.Severity, message, cycleID string) alerts.Alert
}

// Exporter ships a published cycle to a time-series store.
type Exporter interface {
	Export(ctx context.Context, s export.Snapshot) error
}

// LocationResolver labels coordinates when the provider reports no place name.
type LocationResolver interface {
	Resolve(ctx context.Context, c weather.Coordinates) (string, error)
}

// Options wires an Orchestrator. Settings, History, Fetcher and Alerts are required.
type Options struct {
	Settings SettingsSource
	History  *store.HistoryStore
	Fetcher  Fetcher
	Alerts   Alerter
	Notifier alerts.Notifier
	Exporter Exporter
	Resolver LocationResolver
	Metrics  *observability.Metrics
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Location weather.Coordinates
}

// State is the published dashboard state.
type State struct {
	CycleID        string                `json:"cycleId,omitempty"`
	Provider       string                `json:"provider,omitempty"`
	Location       string                `json:"location,omitempty"`
	Reading        *weather.Reading      `json:"reading,omitempty"`
	HumiditySource string                `json:"humiditySource,omitempty"`
	AirQuality     *weather.AirQuality   `json:"airQuality,omitempty"`
	AQI            int                   `json:"aqi"`
	AQISource      aqi.Source            `json:"aqiSource,omitempty"`
	AQICategory    string                `json:"aqiCategory,omitempty"`
	Display        Display               `json:"display"`
	Risk           *risk.Assessment      `json:"risk,omitempty"`
	Severity       risk.Severity         `json:"severity,omitempty"`
	Forecast       []weather.ForecastDay `json:"forecast"`
	Fire           *firerisk.Snapshot    `json:"fire,omitempty"`
	History        []store.Entry         `json:"history"`
	Degraded       bool                  `json:"degraded"`
	UpdatedAt      time.Time             `json:"updatedAt,omitempty"`
}

// Orchestrator runs refresh cycles. Cycles are not serialized: concurrent cycles each
// publish their results and the last write wins. The mutex only protects field access.
type Orchestrator struct {
	settings SettingsSource
	history  *store.HistoryStore
	fetcher  Fetcher
	alerts   Alerter
	notifier alerts.Notifier
	exporter Exporter
	resolver LocationResolver
	metrics  *observability.Metrics
	clock    clockwork.Clock
	logger   *slog.Logger
	coords   weather.Coordinates

	mu    sync.RWMutex
	state State
}

// New creates an Orchestrator from opts.
func New(opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	if opts.Notifier == nil {
		opts.Notifier = alerts.NewLogNotifier(opts.Logger)
	}
	return &Orchestrator{
		settings: opts.Settings,
		history:  opts.History,
		fetcher:  opts.Fetcher,
		alerts:   opts.Alerts,
		notifier: opts.Notifier,
		exporter: opts.Exporter,
		resolver: opts.Resolver,
		metrics:  opts.Metrics,
		clock:    opts.Clock,
		logger:   opts.Logger,
		coords:   opts.Location,
		state: State{
			Forecast: []weather.ForecastDay{},
			History:  []store.Entry{},
		},
	}
}

// LoadHistory publishes the persisted history without running a cycle.
func (o *Orchestrator) LoadHistory(ctx context.Context) []store.Entry {
	entries := o.history.Load(ctx)
	o.update(func(s *State) { s.History = entries })
	return entries
}

// State returns a copy of the published state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()

	s := o.state
	if s.Reading != nil {
		r := *s.Reading
		s.Reading = &r
	}
	if s.AirQuality != nil {
		aq := *s.AirQuality
		s.AirQuality = &aq
	}
	if s.Risk != nil {
		a := *s.Risk
		a.Factors = append([]risk.Factor{}, a.Factors...)
		s.Risk = &a
	}
	if s.Fire != nil {
		f := *s.Fire
		s.Fire = &f
	}
	s.Forecast = append([]weather.ForecastDay{}, s.Forecast...)
	s.History = append([]store.Entry{}, s.History...)
	return s
}

// History returns the published history, newest first.
func (o *Orchestrator) History() []store.Entry {
	return o.State().History
}

// Forecast returns the published daily forecast.
func (o *Orchestrator) Forecast() []weather.ForecastDay {
	return o.State().Forecast
}

func (o *Orchestrator) update(fn func(s *State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.state)
}

func (o *Orchestrator) snapshot(fn func(s State)) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	fn(o.state)
}

// cycle carries the values of one Refresh.
type cycle struct {
	id       string
	log      *slog.Logger
	now      time.Time
	settings config.Settings
	adapter  providers.Adapter
	reading  weather.Reading
	location string
	degraded bool
}

// Refresh runs one cycle: fetch and normalize current conditions, publish displays,
// assess risk, then the best-effort forecast, history, air quality and fire-risk steps.
func (o *Orchestrator) Refresh(ctx context.Context) (err error) {
	start := o.clock.Now()
	c := &cycle{id: uuid.NewString(), now: start}
	c.log = o.logger.With("cycle_id", c.id)

	outcome := "success"
	defer func() {
		switch {
		case errors.Is(err, ErrMissingAPIKey):
			outcome = "config"
		case err != nil:
			outcome = "error"
		case c.degraded:
			outcome = "degraded"
		}
		o.metrics.RefreshCycles.WithLabelValues(outcome).Inc()
		o.metrics.CycleDuration.Observe(o.clock.Since(start).Seconds())
		c.log.Info("refresh finished", "outcome", outcome, "duration", o.clock.Since(start))
	}()

	c.settings = o.settings.Load(ctx)

	kind, err := providers.ParseKind(c.settings.Provider)
	if err != nil {
		return o.fail(ctx, c, err)
	}
	c.adapter, err = providers.For(kind)
	if err != nil {
		return o.fail(ctx, c, err)
	}

	if c.adapter.RequiresKey && c.settings.APIKey == "" {
		o.raise(ctx, c, alerts.SeverityWarning, fmt.Sprintf("Configure your %s API key in settings", c.adapter.Name))
		return ErrMissingAPIKey
	}

	if err := o.loadCurrent(ctx, c); err != nil {
		o.raise(ctx, c, alerts.SeverityError,
			fmt.Sprintf("Failed to load weather data from %s. Check your settings.", c.adapter.Name))
		return fmt.Errorf("%w: %w", ErrPrimaryFetch, err)
	}

	humiditySource := o.overrideHumidity(ctx, c)
	o.publishReading(ctx, c, humiditySource)

	if err := o.assessRisk(ctx, c); err != nil {
		return o.fail(ctx, c, err)
	}

	o.loadForecast(ctx, c)
	o.recordHistory(ctx, c)

	if c.settings.UseOpenAQ || kind.Combined() {
		o.loadAirQuality(ctx, c)
	}

	o.publishFire(c)
	o.export(ctx, c)
	return nil
}

// fail handles errors outside the provider path: one error alert, partial state kept.
func (o *Orchestrator) fail(ctx context.Context, c *cycle, err error) error {
	c.log.Error("refresh failed", logger.Err(err))
	o.raise(ctx, c, alerts.SeverityError, "Refresh failed: "+err.Error())
	return err
}

func (o *Orchestrator) raise(ctx context.Context, c *cycle, severity alerts.Severity, msg string) {
	o.alerts.Raise(ctx, severity, msg, c.id)
	o.metrics.AlertsRaised.WithLabelValues(string(severity)).Inc()
}

func (o *Orchestrator) fetch(ctx context.Context, c *cycle, source string, req weather.Request) ([]byte, error) {
	raw, err := o.fetcher.Fetch(ctx, source, req)
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues(source).Inc()
		c.log.Debug("fetch failed", "source", source, logger.Err(err))
	}
	return raw, err
}

func (o *Orchestrator) fetchReading(ctx context.Context, c *cycle, a providers.Adapter) (weather.Reading, error) {
	raw, err := o.fetch(ctx, c, string(a.Kind), a.CurrentRequest(o.coords, c.settings.APIKey))
	if err != nil {
		return weather.Reading{}, err
	}
	r, err := a.Normalize(raw, c.now)
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues(string(a.Kind)).Inc()
		return weather.Reading{}, err
	}
	return r, nil
}

// loadCurrent fetches current conditions. In combined mode a failure is retried once
// against OpenWeatherMap with the same key.
func (o *Orchestrator) loadCurrent(ctx context.Context, c *cycle) error {
	r, err := o.fetchReading(ctx, c, c.adapter)
	if err == nil {
		c.reading = r
		o.update(func(s *State) { s.Degraded = false })
		return nil
	}
	c.log.Warn("current conditions unavailable", "provider", c.adapter.Kind, logger.Err(err))

	if !c.adapter.Kind.Combined() || c.settings.APIKey == "" {
		return err
	}

	r, fbErr := o.fetchReading(ctx, c, providers.MustFor(providers.KindOpenWeatherMap))
	if fbErr != nil {
		c.log.Warn("fallback provider failed", logger.Err(fbErr))
		return err
	}

	c.reading = r
	c.degraded = true
	o.metrics.Fallbacks.Inc()
	o.update(func(s *State) { s.Degraded = true })
	o.raise(ctx, c, alerts.SeverityWarning, fallbackWarning)
	return nil
}

// overrideHumidity replaces humidity with the Tomorrow.io value when a humidity key
// is configured and the lookup succeeds. It returns the provenance label.
func (o *Orchestrator) overrideHumidity(ctx context.Context, c *cycle) string {
	if c.settings.HumidityKey == "" {
		return HumiditySourceProvider
	}
	raw, err := o.fetch(ctx, c, "tomorrow_humidity", providers.TomorrowRealtimeRequest(o.coords, c.settings.HumidityKey))
	if err != nil {
		return HumiditySourceProvider
	}
	h, ok := providers.TomorrowHumidity(raw)
	if !ok {
		c.log.Debug("humidity override payload has no humidity")
		return HumiditySourceProvider
	}
	c.reading = c.reading.WithHumidity(h)
	return HumiditySourceTomorrow
}

func (o *Orchestrator) publishReading(ctx context.Context, c *cycle, humiditySource string) {
	c.location = o.locationLabel(ctx, c)
	location := c.location

	r := c.reading
	d := weatherDisplay(r, humiditySource)
	severity := risk.WeatherSeverity(r)

	o.update(func(s *State) {
		s.CycleID = c.id
		s.Provider = c.adapter.Name
		s.Location = location
		s.Reading = &r
		s.HumiditySource = humiditySource
		s.Severity = severity
		s.UpdatedAt = c.now.UTC()

		index, source := aqi.Select(s.AirQuality, &r, c.now)
		d.setAQI(index, source)
		s.Display = d
		s.AQI, s.AQISource, s.AQICategory = index, source, aqi.Category(index)
	})
}

func (o *Orchestrator) locationLabel(ctx context.Context, c *cycle) string {
	name := c.reading.LocationName
	if o.resolver == nil || (name != "" && name != defaultLocation) {
		return name
	}
	label, err := o.resolver.Resolve(ctx, o.coords)
	if err != nil {
		c.log.Debug("reverse geocoding failed", logger.Err(err))
		return name
	}
	return label
}

func (o *Orchestrator) assessRisk(ctx context.Context, c *cycle) error {
	profile, err := risk.ProfileByName(c.settings.AlertThreshold)
	if err != nil {
		return err
	}

	var index int
	o.snapshot(func(s State) { index = s.AQI })

	a := risk.Assess(c.reading, index, profile)
	o.update(func(s *State) { s.Risk = &a })
	o.metrics.RiskScore.Set(float64(a.Score))

	if !a.ShouldAlert() {
		return nil
	}

	msg := a.Message()
	severity := alerts.SeverityWarning
	if a.Level == risk.LevelHigh {
		severity = alerts.SeverityError
	}
	o.raise(ctx, c, severity, msg)

	factors := make([]string, len(a.Factors))
	for i, f := range a.Factors {
		factors[i] = string(f)
	}
	n := alerts.Notification{
		CycleID:   c.id,
		Title:     "Climate alert",
		Body:      msg,
		Level:     string(a.Level),
		Score:     a.Score,
		Factors:   factors,
		Location:  c.location,
		CreatedAt: c.now.UTC(),
	}
	if err := o.notifier.Notify(ctx, n); err != nil {
		c.log.Warn("notification failed", logger.Err(err))
	}
	return nil
}

func (o *Orchestrator) loadForecast(ctx context.Context, c *cycle) {
	a := c.adapter
	raw, err := o.fetch(ctx, c, string(a.Kind)+"_forecast", a.ForecastRequest(o.coords, c.settings.APIKey))
	if err != nil {
		return
	}
	days, err := a.NormalizeForecast(raw)
	if err != nil {
		c.log.Debug("forecast payload rejected", logger.Err(err))
		return
	}
	o.update(func(s *State) { s.Forecast = days })
}

func (o *Orchestrator) recordHistory(ctx context.Context, c *cycle) {
	var aq *weather.AirQuality
	o.snapshot(func(s State) {
		if s.AirQuality != nil {
			v := *s.AirQuality
			aq = &v
		}
	})

	r := c.reading
	index, _ := aqi.Select(aq, &r, c.now)
	fire := firerisk.Assess(firerisk.InputsFrom(r))

	entries, err := o.history.Record(ctx, store.Entry{
		Date:       o.history.Today(),
		Temp:       r.TemperatureC,
		Humidity:   r.HumidityPct,
		WindKmh:    roundInt(r.WindKmh()),
		AQI:        index,
		Rain:       r.Condition.IsWet(),
		FireChance: fire.Score,
		FireLevel:  fire.Level,
	})
	if err != nil {
		o.metrics.HistoryWrites.WithLabelValues("error").Inc()
		c.log.Warn("history not persisted", logger.Err(err))
	} else {
		o.metrics.HistoryWrites.WithLabelValues("ok").Inc()
	}
	o.update(func(s *State) { s.History = entries })
}

// loadAirQuality replaces the measured air quality. Any failure keeps the previous one.
func (o *Orchestrator) loadAirQuality(ctx context.Context, c *cycle) {
	raw, err := o.fetch(ctx, c, airquality.Source, airquality.LatestRequest(o.coords))
	if err != nil {
		return
	}
	result, err := airquality.Decode(raw)
	if err != nil {
		c.log.Debug("air quality unavailable", logger.Err(err))
		return
	}
	aq := airquality.Normalize(result)

	r := c.reading
	o.update(func(s *State) {
		s.AirQuality = &aq
		index, source := aqi.Select(&aq, &r, c.now)
		s.AQI, s.AQISource, s.AQICategory = index, source, aqi.Category(index)
		s.Display.setAQI(index, source)
	})
}

func (o *Orchestrator) publishFire(c *cycle) {
	fire := firerisk.Assess(firerisk.InputsFrom(c.reading))
	var index int
	o.update(func(s *State) {
		s.Fire = &fire
		index = s.AQI
	})
	o.metrics.FireRiskScore.Set(float64(fire.Score))
	o.metrics.AirQualityIndex.Set(float64(index))
}

func (o *Orchestrator) export(ctx context.Context, c *cycle) {
	if o.exporter == nil {
		return
	}
	s := o.State()
	snap := export.Snapshot{
		Time:      c.now,
		Provider:  string(c.adapter.Kind),
		Location:  s.Location,
		Reading:   c.reading,
		AQI:       s.AQI,
		AQISource: string(s.AQISource),
	}
	if s.Fire != nil {
		snap.FireScore, snap.FireLevel = s.Fire.Score, string(s.Fire.Level)
	}
	if s.Risk != nil {
		snap.RiskScore, snap.RiskLevel = s.Risk.Score, string(s.Risk.Level)
	}
	if err := o.exporter.Export(ctx, snap); err != nil {
		c.log.Warn("export failed", logger.Err(err))
	}
}
