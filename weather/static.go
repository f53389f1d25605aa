package weather

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Climate is the fixed pattern a StaticProvider repeats for a place.
type Climate struct {
	Latitude float64
	Pattern  []Conditions
}

// StaticProvider serves forecasts from fixed tables, anchored at today.
type StaticProvider struct {
	horizon  int
	clock    func() time.Time
	climates map[string]Climate
}

// NewStaticProvider creates a provider returning horizon days per place.
// A nil clock means time.Now.
func NewStaticProvider(horizon int, clock func() time.Time, climates map[string]Climate) *StaticProvider {
	if clock == nil {
		clock = time.Now
	}
	if horizon <= 0 {
		horizon = 7
	}
	m := make(map[string]Climate, len(climates))
	for k, v := range climates {
		m[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &StaticProvider{horizon: horizon, clock: clock, climates: m}
}

func (p *StaticProvider) Name() string { return "static" }
func (p *StaticProvider) Horizon() int { return p.horizon }

// Forecast repeats the place's pattern from today for the horizon. The
// part before the first comma is tried as a fallback so "Paris, France"
// finds "paris".
func (p *StaticProvider) Forecast(ctx context.Context, place string, admit Admit) (Forecast, error) {
	if err := ctx.Err(); err != nil {
		return Forecast{}, err
	}
	if err := admit.call(ctx); err != nil {
		return Forecast{}, err
	}
	key := strings.ToLower(strings.TrimSpace(place))
	climate, ok := p.climates[key]
	if !ok {
		head, _, _ := strings.Cut(key, ",")
		climate, ok = p.climates[strings.TrimSpace(head)]
	}
	if !ok || len(climate.Pattern) == 0 {
		return Forecast{}, fmt.Errorf("%w: %s", ErrUnknownPlace, place)
	}

	today := dayOf(p.clock())
	days := make([]Conditions, p.horizon)
	for i := range days {
		c := climate.Pattern[i%len(climate.Pattern)]
		c.Date = today.AddDate(0, 0, i)
		days[i] = c
	}
	current := days[0]
	current.TemperatureC = (current.MinC + current.MaxC) / 2
	return Forecast{Place: place, Latitude: climate.Latitude, Current: current, Days: days}, nil
}

func day(summary string, minC, maxC, rain, wind, humidity float64) Conditions {
	return Conditions{Summary: summary, MinC: minC, MaxC: maxC, TemperatureC: (minC + maxC) / 2, RainMM: rain, WindKPH: wind, HumidityPct: humidity}
}

// DefaultClimates covers the destinations of the default geocoding table.
func DefaultClimates() map[string]Climate {
	return map[string]Climate{
		"paris": {Latitude: 48.86, Pattern: []Conditions{
			day("partly cloudy", 9, 16, 0, 12, 70), day("light rain", 10, 14, 3.2, 18, 85), day("sunny", 8, 17, 0, 9, 60),
		}},
		"rome": {Latitude: 41.90, Pattern: []Conditions{
			day("sunny", 14, 24, 0, 8, 55), day("clear", 15, 26, 0, 6, 50), day("scattered showers", 13, 21, 2.1, 14, 75),
		}},
		"tokyo": {Latitude: 35.69, Pattern: []Conditions{
			day("overcast", 16, 22, 0.4, 10, 72), day("rain", 17, 20, 12.5, 20, 90), day("sunny", 15, 23, 0, 7, 58),
		}},
		"lisbon": {Latitude: 38.72, Pattern: []Conditions{
			day("sunny", 15, 23, 0, 16, 60), day("windy and clear", 14, 21, 0, 28, 55),
		}},
		"barcelona": {Latitude: 41.39, Pattern: []Conditions{
			day("sunny", 16, 24, 0, 10, 62), day("humid and cloudy", 17, 23, 0.6, 12, 80),
		}},
		"new york": {Latitude: 40.71, Pattern: []Conditions{
			day("clear", 8, 15, 0, 15, 50), day("thunderstorms", 11, 17, 18, 30, 88), day("breezy", 7, 13, 0, 25, 45),
		}},
		"sydney": {Latitude: -33.87, Pattern: []Conditions{
			day("sunny", 15, 24, 0, 18, 55), day("showers", 14, 20, 6, 22, 78),
		}},
		"cape town": {Latitude: -33.92, Pattern: []Conditions{
			day("windy", 12, 21, 0, 35, 60), day("sunny", 11, 23, 0, 14, 52),
		}},
		"prague": {Latitude: 50.08, Pattern: []Conditions{
			day("cloudy", 4, 11, 0.2, 11, 78), day("drizzle", 5, 9, 1.8, 13, 88), day("cold and clear", 1, 8, 0, 9, 70),
		}},
		"singapore": {Latitude: 1.35, Pattern: []Conditions{
			day("thunderstorms", 25, 32, 22, 9, 85), day("hot and humid", 26, 33, 0, 8, 80),
		}},
	}
}
