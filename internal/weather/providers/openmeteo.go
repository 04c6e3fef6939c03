package providers

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

const (
	openMeteoURL = "https://api.open-meteo.com/v1/forecast"

	// Open-Meteo current_weather carries neither pressure nor (usually) humidity.
	openMeteoDefaultPressure = 1013.0
	openMeteoDefaultHumidity = 60.0

	openMeteoTimeLayout = "2006-01-02T15:04"
)

func openMeteoAdapter() Adapter {
	return Adapter{
		Kind:              KindOpenMeteo,
		Name:              "Open-Meteo",
		RequiresKey:       false,
		CurrentRequest:    openMeteoCurrentRequest,
		ForecastRequest:   openMeteoForecastRequest,
		Normalize:         normalizeOpenMeteo,
		NormalizeForecast: normalizeOpenMeteoForecast,
	}
}

func openMeteoCurrentRequest(c weather.Coordinates, _ string) weather.Request {
	values := url.Values{}
	values.Set("latitude", c.LatString())
	values.Set("longitude", c.LonString())
	values.Set("current_weather", "true")
	values.Set("hourly", "temperature_2m,relativehumidity_2m,windspeed_10m")
	values.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode")
	values.Set("timezone", "auto")
	values.Set("windspeed_unit", "ms")
	return weather.Request{Endpoint: openMeteoURL, Query: values}
}

func openMeteoForecastRequest(c weather.Coordinates, _ string) weather.Request {
	values := url.Values{}
	values.Set("latitude", c.LatString())
	values.Set("longitude", c.LonString())
	values.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode,precipitation_sum")
	values.Set("timezone", "auto")
	values.Set("forecast_days", "7")
	return weather.Request{Endpoint: openMeteoURL, Query: values}
}

func normalizeOpenMeteo(raw []byte, now time.Time) (weather.Reading, error) {
	var payload struct {
		UTCOffsetSeconds int `json:"utc_offset_seconds"`
		CurrentWeather   *struct {
			Temperature      float64  `json:"temperature"`
			WindSpeed        float64  `json:"windspeed"`
			WindDirection    float64  `json:"winddirection"`
			WeatherCode      int      `json:"weathercode"`
			RelativeHumidity *float64 `json:"relativehumidity"`
		} `json:"current_weather"`
		Hourly struct {
			Time             []string   `json:"time"`
			RelativeHumidity []*float64 `json:"relativehumidity_2m"`
		} `json:"hourly"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return weather.Reading{}, malformed("openmeteo", "%v", err)
	}
	cw := payload.CurrentWeather
	if cw == nil {
		return weather.Reading{}, malformed("openmeteo", "missing current_weather")
	}

	humidity := openMeteoDefaultHumidity
	if cw.RelativeHumidity != nil {
		humidity = *cw.RelativeHumidity
	}
	zone := time.FixedZone("", payload.UTCOffsetSeconds)
	if h, ok := nearestSample(payload.Hourly.Time, payload.Hourly.RelativeHumidity, zone, now); ok {
		humidity = h
	}

	return weather.Reading{
		TemperatureC:     cw.Temperature,
		FeelsLikeC:       cw.Temperature,
		HumidityPct:      weather.ClampHumidity(humidity),
		PressureHpa:      openMeteoDefaultPressure,
		WindSpeedMS:      cw.WindSpeed,
		WindDirectionDeg: cw.WindDirection,
		Condition:        WMOCondition(cw.WeatherCode),
		LocationName:     unnamedLocation,
	}, nil
}

// nearestSample picks the value whose timestamp is closest to now. Ties keep the
// earliest index. Unparseable timestamps are skipped; a missing or null value at the
// chosen index reports false.
func nearestSample(times []string, values []*float64, zone *time.Location, now time.Time) (float64, bool) {
	if len(times) == 0 || len(values) == 0 {
		return 0, false
	}

	best := -1
	var bestDiff time.Duration
	for i, s := range times {
		ts, err := time.ParseInLocation(openMeteoTimeLayout, s, zone)
		if err != nil {
			continue
		}
		diff := now.Sub(ts)
		if diff < 0 {
			diff = -diff
		}
		if best == -1 || diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}

	if best == -1 || best >= len(values) || values[best] == nil {
		return 0, false
	}
	return *values[best], true
}

func normalizeOpenMeteoForecast(raw []byte) ([]weather.ForecastDay, error) {
	var payload struct {
		Daily *struct {
			Time             []string   `json:"time"`
			TemperatureMax   []float64  `json:"temperature_2m_max"`
			TemperatureMin   []float64  `json:"temperature_2m_min"`
			WeatherCode      []int      `json:"weathercode"`
			PrecipitationSum []*float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, malformed("openmeteo", "%v", err)
	}
	d := payload.Daily
	if d == nil {
		return nil, malformed("openmeteo", "missing daily")
	}

	n := min(len(d.Time), len(d.TemperatureMax), len(d.TemperatureMin), len(d.WeatherCode))
	points := make([]weather.ForecastPoint, 0, n)
	for i := 0; i < n; i++ {
		day, err := time.Parse("2006-01-02", d.Time[i])
		if err != nil {
			return nil, malformed("openmeteo", "invalid daily time %q", d.Time[i])
		}
		cond := WMOCondition(d.WeatherCode[i])
		var precip *float64
		if i < len(d.PrecipitationSum) {
			precip = d.PrecipitationSum[i]
		}
		points = append(points, weather.ForecastPoint{
			Time:         day,
			TemperatureC: (d.TemperatureMax[i] + d.TemperatureMin[i]) / 2,
			Description:  cond.Description,
			Icon:         cond.Icon,
			PrecipMm:     precip,
		})
	}
	return weather.ForecastDays(points, 7), nil
}
