package providers

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

const (
	openWeatherCurrentURL  = "https://api.openweathermap.org/data/2.5/weather"
	openWeatherForecastURL = "https://api.openweathermap.org/data/2.5/forecast"
)

func openWeatherAdapter() Adapter {
	return Adapter{
		Kind:              KindOpenWeatherMap,
		Name:              "OpenWeatherMap",
		RequiresKey:       true,
		CurrentRequest:    func(c weather.Coordinates, key string) weather.Request { return openWeatherRequest(openWeatherCurrentURL, c, key) },
		ForecastRequest:   func(c weather.Coordinates, key string) weather.Request { return openWeatherRequest(openWeatherForecastURL, c, key) },
		Normalize:         normalizeOpenWeather,
		NormalizeForecast: normalizeOpenWeatherForecast,
	}
}

func openWeatherRequest(endpoint string, c weather.Coordinates, key string) weather.Request {
	values := url.Values{}
	values.Set("lat", c.LatString())
	values.Set("lon", c.LonString())
	values.Set("appid", key)
	values.Set("units", "metric")
	return weather.Request{Endpoint: endpoint, Query: values}
}

type openWeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (c openWeatherCondition) canonical() weather.Condition {
	return weather.Condition{Main: c.Main, Description: c.Description, Icon: c.Icon}
}

func normalizeOpenWeather(raw []byte, _ time.Time) (weather.Reading, error) {
	var payload struct {
		Name string `json:"name"`
		Main *struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Weather []openWeatherCondition `json:"weather"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return weather.Reading{}, malformed("openweathermap", "%v", err)
	}
	if payload.Main == nil {
		return weather.Reading{}, malformed("openweathermap", "missing main")
	}
	if len(payload.Weather) == 0 {
		return weather.Reading{}, malformed("openweathermap", "missing weather")
	}

	return weather.Reading{
		TemperatureC:     payload.Main.Temp,
		FeelsLikeC:       payload.Main.FeelsLike,
		HumidityPct:      weather.ClampHumidity(payload.Main.Humidity),
		PressureHpa:      payload.Main.Pressure,
		WindSpeedMS:      payload.Wind.Speed,
		WindDirectionDeg: payload.Wind.Deg,
		Condition:        payload.Weather[0].canonical(),
		LocationName:     payload.Name,
	}, nil
}

func normalizeOpenWeatherForecast(raw []byte) ([]weather.ForecastDay, error) {
	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []openWeatherCondition `json:"weather"`
			Rain    struct {
				ThreeH *float64 `json:"3h"`
			} `json:"rain"`
		} `json:"list"`
		City struct {
			Timezone int `json:"timezone"` // offset from UTC in seconds
		} `json:"city"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, malformed("openweathermap", "%v", err)
	}
	if payload.List == nil {
		return nil, malformed("openweathermap", "missing list")
	}

	zone := time.FixedZone("", payload.City.Timezone)
	points := make([]weather.ForecastPoint, 0, len(payload.List))
	for _, item := range payload.List {
		if len(item.Weather) == 0 {
			continue
		}
		points = append(points, weather.ForecastPoint{
			Time:         time.Unix(item.Dt, 0).In(zone),
			TemperatureC: item.Main.Temp,
			Description:  item.Weather[0].Description,
			Icon:         item.Weather[0].Icon,
			PrecipMm:     item.Rain.ThreeH,
		})
	}
	return weather.ForecastDays(points, 7), nil
}
