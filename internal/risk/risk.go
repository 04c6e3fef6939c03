// Package risk scores a reading against a threshold profile.
package risk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

// Level is the composite risk band.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Factor labels a threshold that was exceeded.
type Factor string

const (
	FactorTemperature Factor = "High Temperature"
	FactorHumidity    Factor = "High Humidity"
	FactorWind        Factor = "High Wind Speed"
	FactorAirQuality  Factor = "Poor Air Quality"
)

// Profile is a named set of alert cutoffs.
type Profile struct {
	Name        string  `json:"name"`
	TempC       float64 `json:"tempC"`
	HumidityPct float64 `json:"humidityPct"`
	WindKmh     float64 `json:"windKmh"`
	AQI         int     `json:"aqi"`
}

// Built-in profiles, from least to most sensitive.
var (
	ProfileLow    = Profile{Name: "low", TempC: 35, HumidityPct: 80, WindKmh: 50, AQI: 100}
	ProfileMedium = Profile{Name: "medium", TempC: 30, HumidityPct: 70, WindKmh: 40, AQI: 80}
	ProfileHigh   = Profile{Name: "high", TempC: 25, HumidityPct: 60, WindKmh: 30, AQI: 60}
)

// Profiles lists the built-in profiles.
var Profiles = []Profile{ProfileLow, ProfileMedium, ProfileHigh}

// ErrUnknownProfile is returned for names outside Profiles.
var ErrUnknownProfile = errors.New("unknown threshold profile")

// ProfileByName looks up a built-in profile.
func ProfileByName(name string) (Profile, error) {
	for _, p := range Profiles {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// Assessment is the composite result.
type Assessment struct {
	Level   Level    `json:"level"`
	Score   int      `json:"score"`
	Factors []Factor `json:"factors"`
}

// Assess scores r and aqi against p.
func Assess(r weather.Reading, aqi int, p Profile) Assessment {
	var score int
	factors := make([]Factor, 0, 4)

	switch {
	case r.TemperatureC > p.TempC:
		score += 3
		factors = append(factors, FactorTemperature)
	case r.TemperatureC > p.TempC-5:
		score++
	}
	if r.HumidityPct > p.HumidityPct {
		score += 2
		factors = append(factors, FactorHumidity)
	}
	if r.WindKmh() > p.WindKmh {
		score += 3
		factors = append(factors, FactorWind)
	}
	if aqi > p.AQI {
		score += 2
		factors = append(factors, FactorAirQuality)
	}

	level := LevelLow
	switch {
	case score >= 6:
		level = LevelHigh
	case score >= 3:
		level = LevelMedium
	}

	return Assessment{Level: level, Score: score, Factors: factors}
}

// ShouldAlert reports whether the assessment warrants a user alert.
func (a Assessment) ShouldAlert() bool {
	return a.Level == LevelHigh || len(a.Factors) > 0
}

// Message renders the alert text.
func (a Assessment) Message() string {
	labels := make([]string, len(a.Factors))
	for i, f := range a.Factors {
		labels[i] = string(f)
	}
	msg := fmt.Sprintf("Climate alert: %s risk detected.", a.Level)
	if len(labels) > 0 {
		msg += " Factors: " + strings.Join(labels, ", ")
	}
	return msg
}

// Severity is the coarse weather-only band shown next to the readings.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// WeatherSeverity classifies the raw weather independent of any profile.
func WeatherSeverity(r weather.Reading) Severity {
	wind := r.WindKmh()
	switch {
	case r.TemperatureC > 35 || r.HumidityPct > 80 || wind > 50:
		return SeverityHigh
	case r.TemperatureC > 30 || r.HumidityPct > 70 || wind > 40:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
