// Package firerisk scores wildfire ignition risk from current weather.
package firerisk

import "github.com/i474232898/environmental-risk-aggregation/internal/weather"

// Level is the coarse fire-risk band.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
	LevelVeryHigh Level = "VERY_HIGH"
	LevelExtreme  Level = "EXTREME"
)

// Inputs are the weather fields the score uses. Nil fields take neutral defaults.
type Inputs struct {
	TemperatureC *float64
	HumidityPct  *float64
	WindSpeedMS  *float64
	Condition    string
}

// Snapshot is a scored assessment.
type Snapshot struct {
	Score int   `json:"score"`
	Level Level `json:"level"`
}

const (
	defaultTemperature = 20.0
	defaultHumidity    = 50.0
)

// InputsFrom builds inputs from a canonical reading.
func InputsFrom(r weather.Reading) Inputs {
	return Inputs{
		TemperatureC: &r.TemperatureC,
		HumidityPct:  &r.HumidityPct,
		WindSpeedMS:  &r.WindSpeedMS,
		Condition:    r.Condition.Main,
	}
}

// Assess computes the fire-risk score in [0,100] and its level.
func Assess(in Inputs) Snapshot {
	temp := valueOr(in.TemperatureC, defaultTemperature)
	humidity := valueOr(in.HumidityPct, defaultHumidity)
	windKmh := valueOr(in.WindSpeedMS, 0) * 3.6

	score := temperatureScore(temp) + humidityScore(humidity) + windScore(windKmh)
	if (weather.Condition{Main: in.Condition}).IsClear() {
		score += 15
	}
	score = max(0, min(score, 100))

	return Snapshot{Score: score, Level: LevelFor(score)}
}

// LevelFor maps a score to its band.
func LevelFor(score int) Level {
	switch {
	case score < 20:
		return LevelLow
	case score < 40:
		return LevelModerate
	case score < 60:
		return LevelHigh
	case score < 80:
		return LevelVeryHigh
	default:
		return LevelExtreme
	}
}

func temperatureScore(t float64) int {
	switch {
	case t > 35:
		return 30
	case t > 30:
		return 25
	case t > 25:
		return 20
	case t > 20:
		return 15
	case t > 15:
		return 10
	default:
		return 5
	}
}

func humidityScore(h float64) int {
	switch {
	case h < 30:
		return 30
	case h < 40:
		return 25
	case h < 50:
		return 20
	case h < 60:
		return 15
	case h < 70:
		return 10
	default:
		return 5
	}
}

func windScore(kmh float64) int {
	switch {
	case kmh > 40:
		return 25
	case kmh > 30:
		return 20
	case kmh > 20:
		return 15
	case kmh > 10:
		return 10
	default:
		return 5
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
