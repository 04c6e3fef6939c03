// Package export ships each published refresh cycle to InfluxDB.
package export

import (
	"context"
	"fmt"
	"time"

	influx "github.com/influxdata/influxdb/client/v2"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

const measurement = "environment"

// Snapshot is what one refresh cycle published.
type Snapshot struct {
	Time      time.Time
	Provider  string
	Location  string
	Reading   weather.Reading
	AQI       int
	AQISource string
	FireScore int
	FireLevel string
	RiskScore int
	RiskLevel string
}

// InfluxExporter writes snapshots as points of the "environment" measurement.
type InfluxExporter struct {
	client   influx.Client
	database string
}

// NewInfluxExporter connects to addr and verifies the server answers a ping.
func NewInfluxExporter(addr, user, password, database string) (*InfluxExporter, error) {
	c, err := influx.NewHTTPClient(influx.HTTPConfig{
		Addr:     addr,
		Username: user,
		Password: password,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("influx client: %w", err)
	}
	if _, _, err := c.Ping(1 * time.Second); err != nil {
		c.Close()
		return nil, fmt.Errorf("influx ping %s: %w", addr, err)
	}
	return &InfluxExporter{client: c, database: database}, nil
}

// Export writes s. The write itself is not context aware; ctx is checked first so a
// cancelled cycle does not export.
func (e *InfluxExporter) Export(ctx context.Context, s Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bp, err := influx.NewBatchPoints(influx.BatchPointsConfig{
		Database:  e.database,
		Precision: "s",
	})
	if err != nil {
		return err
	}

	p, err := point(s)
	if err != nil {
		return err
	}
	bp.AddPoint(p)

	if err := e.client.Write(bp); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}

func (e *InfluxExporter) Close() error {
	return e.client.Close()
}

func point(s Snapshot) (*influx.Point, error) {
	tags := map[string]string{
		"provider":   s.Provider,
		"aqi_source": s.AQISource,
		"fire_level": s.FireLevel,
		"risk_level": s.RiskLevel,
	}
	if s.Location != "" {
		tags["location"] = s.Location
	}

	r := s.Reading
	fields := map[string]interface{}{
		"temperature_c":   r.TemperatureC,
		"feels_like_c":    r.FeelsLikeC,
		"humidity_pct":    r.HumidityPct,
		"pressure_hpa":    r.PressureHpa,
		"wind_speed_ms":   r.WindSpeedMS,
		"wind_direction":  r.WindDirectionDeg,
		"condition":       r.Condition.Main,
		"aqi":             s.AQI,
		"fire_risk_score": s.FireScore,
		"risk_score":      s.RiskScore,
	}

	p, err := influx.NewPoint(measurement, tags, fields, s.Time)
	if err != nil {
		return nil, fmt.Errorf("influx point: %w", err)
	}
	return p, nil
}
