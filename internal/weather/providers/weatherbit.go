package providers

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

const (
	weatherbitCurrentURL  = "https://api.weatherbit.io/v2.0/current"
	weatherbitForecastURL = "https://api.weatherbit.io/v2.0/forecast/daily"
)

func weatherbitAdapter() Adapter {
	return Adapter{
		Kind:              KindWeatherbit,
		Name:              "Weatherbit",
		RequiresKey:       true,
		CurrentRequest:    weatherbitCurrentRequest,
		ForecastRequest:   weatherbitForecastRequest,
		Normalize:         normalizeWeatherbit,
		NormalizeForecast: normalizeWeatherbitForecast,
	}
}

func weatherbitCurrentRequest(c weather.Coordinates, key string) weather.Request {
	values := url.Values{}
	values.Set("lat", c.LatString())
	values.Set("lon", c.LonString())
	values.Set("key", key)
	values.Set("units", "M")
	return weather.Request{Endpoint: weatherbitCurrentURL, Query: values}
}

func weatherbitForecastRequest(c weather.Coordinates, key string) weather.Request {
	values := url.Values{}
	values.Set("lat", c.LatString())
	values.Set("lon", c.LonString())
	values.Set("key", key)
	values.Set("days", "7")
	values.Set("units", "M")
	return weather.Request{Endpoint: weatherbitForecastURL, Query: values}
}

type weatherbitCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func normalizeWeatherbit(raw []byte, _ time.Time) (weather.Reading, error) {
	var payload struct {
		Data []struct {
			Temp     float64             `json:"temp"`
			AppTemp  float64             `json:"app_temp"`
			RH       float64             `json:"rh"`
			Pres     float64             `json:"pres"`
			WindSpd  float64             `json:"wind_spd"`
			WindDir  float64             `json:"wind_dir"`
			CityName string              `json:"city_name"`
			Weather  weatherbitCondition `json:"weather"`
		} `json:"data"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return weather.Reading{}, malformed("weatherbit", "%v", err)
	}
	if len(payload.Data) == 0 {
		return weather.Reading{}, malformed("weatherbit", "empty data")
	}
	obs := payload.Data[0]

	return weather.Reading{
		TemperatureC:     obs.Temp,
		FeelsLikeC:       obs.AppTemp,
		HumidityPct:      weather.ClampHumidity(obs.RH),
		PressureHpa:      obs.Pres,
		WindSpeedMS:      obs.WindSpd,
		WindDirectionDeg: obs.WindDir,
		Condition: weather.Condition{
			Main:        obs.Weather.Description,
			Description: obs.Weather.Description,
			Icon:        obs.Weather.Icon,
		},
		LocationName: obs.CityName,
	}, nil
}

func normalizeWeatherbitForecast(raw []byte) ([]weather.ForecastDay, error) {
	var payload struct {
		Data []struct {
			ValidDate string              `json:"valid_date"`
			Temp      float64             `json:"temp"`
			Precip    *float64            `json:"precip"`
			Weather   weatherbitCondition `json:"weather"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, malformed("weatherbit", "%v", err)
	}
	if payload.Data == nil {
		return nil, malformed("weatherbit", "missing data")
	}

	points := make([]weather.ForecastPoint, 0, len(payload.Data))
	for _, d := range payload.Data {
		day, err := time.Parse("2006-01-02", d.ValidDate)
		if err != nil {
			return nil, malformed("weatherbit", "invalid valid_date %q", d.ValidDate)
		}
		points = append(points, weather.ForecastPoint{
			Time:         day,
			TemperatureC: d.Temp,
			Description:  d.Weather.Description,
			Icon:         d.Weather.Icon,
			PrecipMm:     d.Precip,
		})
	}
	return weather.ForecastDays(points, 7), nil
}
