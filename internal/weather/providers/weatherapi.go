package providers

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

const (
	weatherAPICurrentURL  = "https://api.weatherapi.com/v1/current.json"
	weatherAPIForecastURL = "https://api.weatherapi.com/v1/forecast.json"
)

func weatherAPIAdapter() Adapter {
	return Adapter{
		Kind:              KindWeatherAPI,
		Name:              "WeatherAPI.com",
		RequiresKey:       true,
		CurrentRequest:    weatherAPICurrentRequest,
		ForecastRequest:   weatherAPIForecastRequest,
		Normalize:         normalizeWeatherAPI,
		NormalizeForecast: normalizeWeatherAPIForecast,
	}
}

func weatherAPICurrentRequest(c weather.Coordinates, key string) weather.Request {
	values := url.Values{}
	values.Set("key", key)
	values.Set("q", c.Pair())
	values.Set("aqi", "yes")
	return weather.Request{Endpoint: weatherAPICurrentURL, Query: values}
}

func weatherAPIForecastRequest(c weather.Coordinates, key string) weather.Request {
	values := url.Values{}
	values.Set("key", key)
	values.Set("q", c.Pair())
	values.Set("days", "7")
	values.Set("aqi", "yes")
	return weather.Request{Endpoint: weatherAPIForecastURL, Query: values}
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

func normalizeWeatherAPI(raw []byte, _ time.Time) (weather.Reading, error) {
	var payload struct {
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
		Current *struct {
			TempC      float64             `json:"temp_c"`
			FeelsLikeC float64             `json:"feelslike_c"`
			Humidity   float64             `json:"humidity"`
			PressureMb float64             `json:"pressure_mb"`
			WindKph    float64             `json:"wind_kph"`
			WindDegree float64             `json:"wind_degree"`
			Condition  weatherAPICondition `json:"condition"`
		} `json:"current"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return weather.Reading{}, malformed("weatherapi", "%v", err)
	}
	cur := payload.Current
	if cur == nil {
		return weather.Reading{}, malformed("weatherapi", "missing current")
	}

	return weather.Reading{
		TemperatureC: cur.TempC,
		FeelsLikeC:   cur.FeelsLikeC,
		HumidityPct:  weather.ClampHumidity(cur.Humidity),
		PressureHpa:  cur.PressureMb,
		// WeatherAPI reports km/h.
		WindSpeedMS:      cur.WindKph / 3.6,
		WindDirectionDeg: cur.WindDegree,
		Condition: weather.Condition{
			Main:        cur.Condition.Text,
			Description: cur.Condition.Text,
			Icon:        cur.Condition.Icon,
		},
		LocationName: payload.Location.Name,
	}, nil
}

func normalizeWeatherAPIForecast(raw []byte) ([]weather.ForecastDay, error) {
	var payload struct {
		Forecast *struct {
			ForecastDay []struct {
				Date string `json:"date"`
				Day  struct {
					AvgTempC      float64             `json:"avgtemp_c"`
					TotalPrecipMm *float64            `json:"totalprecip_mm"`
					Condition     weatherAPICondition `json:"condition"`
				} `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, malformed("weatherapi", "%v", err)
	}
	if payload.Forecast == nil {
		return nil, malformed("weatherapi", "missing forecast")
	}

	points := make([]weather.ForecastPoint, 0, len(payload.Forecast.ForecastDay))
	for _, fd := range payload.Forecast.ForecastDay {
		day, err := time.Parse("2006-01-02", fd.Date)
		if err != nil {
			return nil, malformed("weatherapi", "invalid forecast date %q", fd.Date)
		}
		points = append(points, weather.ForecastPoint{
			Time:         day,
			TemperatureC: fd.Day.AvgTempC,
			Description:  fd.Day.Condition.Text,
			Icon:         fd.Day.Condition.Icon,
			PrecipMm:     fd.Day.TotalPrecipMm,
		})
	}
	return weather.ForecastDays(points, 7), nil
}
