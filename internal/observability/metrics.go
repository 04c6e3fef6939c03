package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "envrisk"

// Metrics holds the Prometheus collectors for refresh cycles.
type Metrics struct {
	RefreshCycles   *prometheus.CounterVec // labels: outcome={success,degraded,error,config}
	CycleDuration   prometheus.Histogram
	ProviderErrors  *prometheus.CounterVec // labels: source
	Fallbacks       prometheus.Counter
	AlertsRaised    *prometheus.CounterVec // labels: severity
	HistoryWrites   *prometheus.CounterVec // labels: outcome={ok,error}
	AirQualityIndex prometheus.Gauge
	FireRiskScore   prometheus.Gauge
	RiskScore       prometheus.Gauge
}

func newCollectors() *Metrics {
	return &Metrics{
		RefreshCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by outcome.",
		}, []string{"outcome"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_cycle_duration_seconds",
			Help:      "Duration of a complete refresh cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Failed upstream fetches or normalizations by source.",
		}, []string{"source"}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Cycles served by the fallback weather provider.",
		}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "User-facing alerts by severity.",
		}, []string{"severity"}),
		HistoryWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_writes_total",
			Help:      "History persistence attempts by outcome.",
		}, []string{"outcome"}),
		AirQualityIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "air_quality_index",
			Help:      "Most recently published air quality index.",
		}),
		FireRiskScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fire_risk_score",
			Help:      "Most recently published fire-risk score (0-100).",
		}),
		RiskScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Most recently published composite risk score.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newCollectors()
	prometheus.MustRegister(
		m.RefreshCycles,
		m.CycleDuration,
		m.ProviderErrors,
		m.Fallbacks,
		m.AlertsRaised,
		m.HistoryWrites,
		m.AirQualityIndex,
		m.FireRiskScore,
		m.RiskScore,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already registered"
// panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newCollectors()
}
