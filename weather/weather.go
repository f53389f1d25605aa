package weather

import (
	"context"
	"errors"
	"time"
)

// ErrUnknownPlace is returned by providers for places they cannot locate.
var ErrUnknownPlace = errors.New("weather: unknown place")

// Conditions is the weather of one moment or one day.
type Conditions struct {
	Date         time.Time `json:"date"`
	Summary      string    `json:"summary"`
	TemperatureC float64   `json:"temperatureC"`
	MinC         float64   `json:"minC"`
	MaxC         float64   `json:"maxC"`
	RainMM       float64   `json:"rainMm"`
	WindKPH      float64   `json:"windKph"`
	HumidityPct  float64   `json:"humidityPct"`
}

// Forecast is current conditions plus daily forecasts starting today.
// Days are keyed by the place's local date; UTCOffset is that place's
// offset from UTC.
type Forecast struct {
	Place     string        `json:"place"`
	Latitude  float64       `json:"latitude"`
	UTCOffset time.Duration `json:"utcOffset"`
	Current   Conditions    `json:"current"`
	Days      []Conditions  `json:"days"`
}

// Admit gates one upstream call. Providers call it before every network
// request they make; a non-nil error must abort the forecast.
type Admit func(ctx context.Context) error

func (a Admit) call(ctx context.Context) error {
	if a == nil {
		return nil
	}
	return a(ctx)
}

// Provider returns forecasts. Horizon is the number of forecast days it
// can return, today included.
type Provider interface {
	Name() string
	Horizon() int
	Forecast(ctx context.Context, place string, admit Admit) (Forecast, error)
}
