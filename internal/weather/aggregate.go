package weather

import (
	"sort"
	"time"
)

// ForecastPoint is a single timestamped forecast sample before daily bucketing.
type ForecastPoint struct {
	Time         time.Time
	TemperatureC float64
	Description  string
	Icon         string
	PrecipMm     *float64
}

// ForecastDays buckets points into calendar days (in the points' own location) and keeps
// the first sample seen for each day. Days are returned in ascending order, at most limit
// of them (0 = unlimited).
func ForecastDays(points []ForecastPoint, limit int) []ForecastDay {
	type dayKey string

	first := make(map[dayKey]ForecastPoint)
	for _, p := range points {
		k := dayKey(p.Time.Format("2006-01-02"))
		if _, seen := first[k]; !seen {
			first[k] = p
		}
	}

	keys := make([]string, 0, len(first))
	for k := range first {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	days := make([]ForecastDay, 0, len(keys))
	for _, k := range keys {
		if limit > 0 && len(days) >= limit {
			break
		}
		p := first[dayKey(k)]
		days = append(days, ForecastDay{
			Date:         k,
			TemperatureC: p.TemperatureC,
			Description:  p.Description,
			Icon:         p.Icon,
			PrecipMm:     p.PrecipMm,
		})
	}
	return days
}
