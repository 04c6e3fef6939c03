package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()

	m.RefreshCycles.WithLabelValues("success").Inc()
	m.RefreshCycles.WithLabelValues("success").Inc()
	m.RefreshCycles.WithLabelValues("degraded").Inc()
	m.AlertsRaised.WithLabelValues("warning").Inc()
	m.FireRiskScore.Set(95)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RefreshCycles.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshCycles.WithLabelValues("degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsRaised.WithLabelValues("warning")))
	assert.Equal(t, 95.0, testutil.ToFloat64(m.FireRiskScore))

	// Unregistered collectors can be created repeatedly.
	assert.NotPanics(t, func() { NewMetricsForTesting() })
}
