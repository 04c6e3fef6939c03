package providers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

// Kind identifies one of the supported weather sources.
type Kind string

const (
	// KindTomorrowOpenAQ is the combined mode: Tomorrow.io weather plus OpenAQ air quality.
	KindTomorrowOpenAQ Kind = "tomorrow_openaq"
	KindTomorrow       Kind = "tomorrow"
	KindOpenWeatherMap Kind = "openweathermap"
	KindOpenMeteo      Kind = "openmeteo"
	KindWeatherAPI     Kind = "weatherapi"
	KindWeatherbit     Kind = "weatherbit"
)

// Kinds lists every supported provider.
var Kinds = []Kind{
	KindTomorrowOpenAQ,
	KindTomorrow,
	KindOpenWeatherMap,
	KindOpenMeteo,
	KindWeatherAPI,
	KindWeatherbit,
}

var (
	// ErrUnknownProvider is returned for provider names outside Kinds.
	ErrUnknownProvider = errors.New("unknown weather provider")
	// ErrMalformedPayload wraps every normalization failure.
	ErrMalformedPayload = errors.New("malformed provider payload")
)

// ParseKind validates a provider name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Combined reports whether the kind implies an air-quality fetch every cycle.
func (k Kind) Combined() bool {
	return k == KindTomorrowOpenAQ
}

// Adapter is the capability record for one provider: pure request builders plus
// normalizers from the provider's raw JSON into the canonical model.
type Adapter struct {
	Kind        Kind
	Name        string
	RequiresKey bool

	CurrentRequest  func(c weather.Coordinates, key string) weather.Request
	ForecastRequest func(c weather.Coordinates, key string) weather.Request

	// Normalize converts a current-conditions payload. now is used by sources that
	// report time series instead of a single observation.
	Normalize         func(raw []byte, now time.Time) (weather.Reading, error)
	NormalizeForecast func(raw []byte) ([]weather.ForecastDay, error)
}

// For returns the adapter for kind.
func For(kind Kind) (Adapter, error) {
	switch kind {
	case KindTomorrowOpenAQ:
		a := tomorrowAdapter()
		a.Kind = KindTomorrowOpenAQ
		a.Name = "Tomorrow.io + OpenAQ"
		return a, nil
	case KindTomorrow:
		return tomorrowAdapter(), nil
	case KindOpenWeatherMap:
		return openWeatherAdapter(), nil
	case KindOpenMeteo:
		return openMeteoAdapter(), nil
	case KindWeatherAPI:
		return weatherAPIAdapter(), nil
	case KindWeatherbit:
		return weatherbitAdapter(), nil
	default:
		return Adapter{}, fmt.Errorf("%w: %q", ErrUnknownProvider, kind)
	}
}

// MustFor is For for kinds known at compile time.
func MustFor(kind Kind) Adapter {
	a, err := For(kind)
	if err != nil {
		panic(err)
	}
	return a
}

func malformed(source, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", source, ErrMalformedPayload, fmt.Sprintf(format, args...))
}
