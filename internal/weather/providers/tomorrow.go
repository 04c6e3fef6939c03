package providers

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

const (
	tomorrowRealtimeURL = "https://api.tomorrow.io/v4/weather/realtime"
	tomorrowForecastURL = "https://api.tomorrow.io/v4/weather/forecast"

	// unnamedLocation labels readings from sources that do not resolve a place name.
	unnamedLocation = "Current Location"
)

func tomorrowAdapter() Adapter {
	return Adapter{
		Kind:              KindTomorrow,
		Name:              "Tomorrow.io",
		RequiresKey:       true,
		CurrentRequest:    TomorrowRealtimeRequest,
		ForecastRequest:   tomorrowForecastRequest,
		Normalize:         normalizeTomorrow,
		NormalizeForecast: normalizeTomorrowForecast,
	}
}

// TomorrowRealtimeRequest builds the Tomorrow.io realtime request. It is also used
// for the humidity override with a dedicated key.
func TomorrowRealtimeRequest(c weather.Coordinates, key string) weather.Request {
	values := url.Values{}
	values.Set("location", c.Pair())
	values.Set("apikey", key)
	values.Set("units", "metric")
	return weather.Request{Endpoint: tomorrowRealtimeURL, Query: values}
}

func tomorrowForecastRequest(c weather.Coordinates, key string) weather.Request {
	values := url.Values{}
	values.Set("location", c.Pair())
	values.Set("apikey", key)
	values.Set("units", "metric")
	values.Set("timesteps", "daily")
	values.Set("forecastDays", "7")
	return weather.Request{Endpoint: tomorrowForecastURL, Query: values}
}

type tomorrowRealtime struct {
	Data *struct {
		Values *struct {
			Temperature          *float64 `json:"temperature"`
			TemperatureApparent  *float64 `json:"temperatureApparent"`
			Humidity             *float64 `json:"humidity"`
			PressureSurfaceLevel float64  `json:"pressureSurfaceLevel"`
			WindSpeed            float64  `json:"windSpeed"`
			WindDirection        float64  `json:"windDirection"`
			WeatherCode          int      `json:"weatherCode"`
		} `json:"values"`
	} `json:"data"`
}

func normalizeTomorrow(raw []byte, _ time.Time) (weather.Reading, error) {
	var payload tomorrowRealtime
	if err := json.Unmarshal(raw, &payload); err != nil {
		return weather.Reading{}, malformed("tomorrow", "%v", err)
	}
	if payload.Data == nil || payload.Data.Values == nil {
		return weather.Reading{}, malformed("tomorrow", "missing data.values")
	}
	v := payload.Data.Values
	if v.Temperature == nil {
		return weather.Reading{}, malformed("tomorrow", "missing temperature")
	}

	feels := *v.Temperature
	if v.TemperatureApparent != nil {
		feels = *v.TemperatureApparent
	}
	var humidity float64
	if v.Humidity != nil {
		humidity = *v.Humidity
	}

	return weather.Reading{
		TemperatureC:     *v.Temperature,
		FeelsLikeC:       feels,
		HumidityPct:      weather.ClampHumidity(humidity),
		PressureHpa:      v.PressureSurfaceLevel,
		WindSpeedMS:      v.WindSpeed,
		WindDirectionDeg: v.WindDirection,
		Condition:        TomorrowCondition(v.WeatherCode),
		LocationName:     unnamedLocation,
	}, nil
}

// TomorrowHumidity extracts data.values.humidity from a realtime payload. It reports
// false for anything other than a numeric value.
func TomorrowHumidity(raw []byte) (float64, bool) {
	var payload tomorrowRealtime
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, false
	}
	if payload.Data == nil || payload.Data.Values == nil || payload.Data.Values.Humidity == nil {
		return 0, false
	}
	return weather.ClampHumidity(*payload.Data.Values.Humidity), true
}

func normalizeTomorrowForecast(raw []byte) ([]weather.ForecastDay, error) {
	var payload struct {
		Timelines *struct {
			Daily []struct {
				Time   string `json:"time"`
				Values struct {
					TemperatureAvg      float64  `json:"temperatureAvg"`
					WeatherCodeMax      int      `json:"weatherCodeMax"`
					RainAccumulationSum *float64 `json:"rainAccumulationSum"`
				} `json:"values"`
			} `json:"daily"`
		} `json:"timelines"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, malformed("tomorrow", "%v", err)
	}
	if payload.Timelines == nil {
		return nil, malformed("tomorrow", "missing timelines")
	}

	points := make([]weather.ForecastPoint, 0, len(payload.Timelines.Daily))
	for _, d := range payload.Timelines.Daily {
		ts, err := time.Parse(time.RFC3339, d.Time)
		if err != nil {
			return nil, malformed("tomorrow", "invalid daily time %q", d.Time)
		}
		cond := TomorrowCondition(d.Values.WeatherCodeMax)
		points = append(points, weather.ForecastPoint{
			Time:         ts.UTC(),
			TemperatureC: d.Values.TemperatureAvg,
			Description:  cond.Description,
			Icon:         cond.Icon,
			PrecipMm:     d.Values.RainAccumulationSum,
		})
	}
	return weather.ForecastDays(points, 7), nil
}
