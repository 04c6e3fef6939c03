package providers

import "github.com/i474232898/environmental-risk-aggregation/internal/weather"

var tomorrowMain = map[int]string{
	1000: "Clear", 1100: "Clear", 1101: "Clear", 1102: "Clear",
	1001: "Clouds", 2000: "Clouds", 2100: "Clouds",
	4000: "Rain", 4001: "Rain", 4200: "Rain", 4201: "Rain",
	5000: "Snow", 5001: "Snow", 5100: "Snow", 5101: "Snow",
	6000: "Rain", 6001: "Rain", 6200: "Rain", 6201: "Rain",
	7000: "Snow", 7101: "Snow", 7102: "Snow",
	8000: "Thunderstorm",
}

var tomorrowDescription = map[int]string{
	1000: "Clear",
	1100: "Mostly Clear",
	1101: "Partly Cloudy",
	1102: "Mostly Cloudy",
	1001: "Cloudy",
	2000: "Fog",
	2100: "Light Fog",
	4000: "Drizzle",
	4001: "Rain",
	4200: "Light Rain",
	4201: "Heavy Rain",
	5000: "Snow",
	5001: "Flurries",
	5100: "Light Snow",
	5101: "Heavy Snow",
	6000: "Freezing Drizzle",
	6001: "Freezing Rain",
	6200: "Light Freezing Rain",
	6201: "Heavy Freezing Rain",
	7000: "Ice Pellets",
	7101: "Heavy Ice Pellets",
	7102: "Light Ice Pellets",
	8000: "Thunderstorm",
}

var tomorrowIcon = map[int]string{
	1000: "01d", 1100: "01d",
	1101: "02d",
	1102: "03d",
	1001: "04d",
	2000: "50d", 2100: "50d",
	4000: "09d", 4001: "10d", 4200: "09d", 4201: "10d",
	5000: "13d", 5001: "13d", 5100: "13d", 5101: "13d",
	6000: "09d", 6001: "10d", 6200: "09d", 6201: "10d",
	7000: "13d", 7101: "13d", 7102: "13d",
	8000: "11d",
}

// TomorrowCondition maps a Tomorrow.io weather code. Unknown codes read as clear sky.
func TomorrowCondition(code int) weather.Condition {
	return weather.Condition{
		Main:        lookup(tomorrowMain, code, "Clear"),
		Description: lookup(tomorrowDescription, code, "Clear"),
		Icon:        lookup(tomorrowIcon, code, "01d"),
	}
}

var wmoMain = map[int]string{
	0: "Clear", 1: "Clear",
	2: "Clouds", 3: "Clouds",
	45: "Mist", 48: "Mist",
	51: "Drizzle", 53: "Drizzle", 55: "Drizzle",
	61: "Rain", 63: "Rain", 65: "Rain",
	71: "Snow", 73: "Snow", 75: "Snow", 77: "Snow",
	80: "Rain", 81: "Rain", 82: "Rain",
	85: "Snow", 86: "Snow",
	95: "Thunderstorm", 96: "Thunderstorm", 99: "Thunderstorm",
}

var wmoDescription = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

var wmoIcon = map[int]string{
	0: "01d", 1: "01d",
	2:  "02d",
	3:  "04d",
	45: "50d", 48: "50d",
	51: "09d", 53: "09d", 55: "09d",
	61: "10d", 63: "10d", 65: "10d",
	71: "13d", 73: "13d", 75: "13d", 77: "13d",
	80: "09d", 81: "09d", 82: "09d",
	85: "13d", 86: "13d",
	95: "11d", 96: "11d", 99: "11d",
}

// WMOCondition maps an Open-Meteo (WMO) weather code.
func WMOCondition(code int) weather.Condition {
	return weather.Condition{
		Main:        lookup(wmoMain, code, "Unknown"),
		Description: lookup(wmoDescription, code, "Unknown"),
		Icon:        lookup(wmoIcon, code, "01d"),
	}
}

func lookup(table map[int]string, code int, def string) string {
	if v, ok := table[code]; ok {
		return v
	}
	return def
}
