package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/observability"
	"github.com/kbukum/guidegen/resilience"
)

const (
	shortRangeDays = 3
	rainyDayMM     = 1.0
)

// Advisor renders weather forecasts as travel advice. Every upstream call a
// provider makes passes the limiter first, so one forecast may cost several
// admissions.
type Advisor struct {
	provider Provider
	limiter  *resilience.WindowLimiter
	policy   resilience.Policy
	clock    func() time.Time
	log      *logger.Logger
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithPolicy sets the reaction to a denied admission. Defaults to wait.
func WithPolicy(p resilience.Policy) Option {
	return func(a *Advisor) { a.policy = p }
}

// WithClock overrides the source of "today".
func WithClock(clock func() time.Time) Option {
	return func(a *Advisor) { a.clock = clock }
}

// NewAdvisor creates an advisor. A nil limiter admits every call.
func NewAdvisor(provider Provider, limiter *resilience.WindowLimiter, opts ...Option) *Advisor {
	a := &Advisor{
		provider: provider,
		limiter:  limiter,
		policy:   resilience.PolicyWait,
		clock:    time.Now,
		log:      logger.WithComponent("weather"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Horizon returns the provider's forecast horizon in days.
func (a *Advisor) Horizon() int { return a.provider.Horizon() }

// Advise summarizes current conditions and the next few days.
func (a *Advisor) Advise(ctx context.Context, place string) (string, error) {
	fc, err := a.fetch(ctx, "weather.advise", place)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Currently in %s: %s.", fc.Place, describeCurrent(fc.Current))
	upcoming := fc.Days
	if len(upcoming) > shortRangeDays {
		upcoming = upcoming[:shortRangeDays]
	}
	if len(upcoming) > 0 {
		b.WriteString(" Coming days: ")
		b.WriteString(describeDays(upcoming))
		b.WriteString(".")
	}
	if tip := packingTip(upcoming); tip != "" {
		b.WriteString(" ")
		b.WriteString(tip)
	}
	return b.String(), nil
}

// AdviseForDateRange narrows the forecast to the stay. Days past the
// forecast horizon get seasonal guidance instead; days already past are
// only counted. A zero start means today in the place's local time.
func (a *Advisor) AdviseForDateRange(ctx context.Context, place string, start time.Time, days int) (string, error) {
	if days <= 0 {
		return "", fmt.Errorf("weather: stay duration must be positive (got %d)", days)
	}
	fc, err := a.fetch(ctx, "weather.advise_range", place)
	if err != nil {
		return "", err
	}

	// Forecast days are local dates of the place, so today is too.
	today := dayOf(a.clock().UTC().Add(fc.UTCOffset))
	first := today
	if !start.IsZero() {
		first = dayOf(start)
	}
	covered := make([]Conditions, 0, days)
	byDay := make(map[time.Time]Conditions, len(fc.Days))
	for _, d := range fc.Days {
		byDay[dayOf(d.Date)] = d
	}
	var uncovered []time.Time
	past := 0
	for i := range days {
		day := first.AddDate(0, 0, i)
		if day.Before(today) {
			past++
			continue
		}
		if c, ok := byDay[day]; ok {
			covered = append(covered, c)
			continue
		}
		uncovered = append(uncovered, day)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weather for your %d-day stay in %s from %s", days, fc.Place, first.Format("Mon Jan 2"))
	if len(covered) > 0 {
		b.WriteString(": ")
		b.WriteString(describeDays(covered))
		b.WriteString(".")
		if tip := packingTip(covered); tip != "" {
			b.WriteString(" ")
			b.WriteString(tip)
		}
	} else {
		b.WriteString(".")
	}

	if past > 0 {
		fmt.Fprintf(&b, " %d of these days are already past, so there is no forecast for them.", past)
	}
	if len(uncovered) > 0 {
		if len(covered) > 0 || past > 0 {
			fmt.Fprintf(&b, " The remaining %d days are beyond the %d-day forecast; expect ", len(uncovered), a.provider.Horizon())
		} else {
			fmt.Fprintf(&b, " These dates are beyond the %d-day forecast; expect ", a.provider.Horizon())
		}
		b.WriteString(strings.Join(monthGuidance(uncovered, fc.Latitude), "; then "))
		b.WriteString(".")
		a.log.Debug("Forecast horizon exceeded", logger.Fields("place", fc.Place, "uncovered_days", len(uncovered)))
	}
	return b.String(), nil
}

// admit acquires one limiter slot for one upstream call.
func (a *Advisor) admit(ctx context.Context) error {
	if a.limiter == nil {
		return nil
	}
	return a.limiter.Acquire(ctx, a.policy)
}

func (a *Advisor) fetch(ctx context.Context, op, place string) (Forecast, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return Forecast{}, fmt.Errorf("weather: place is required")
	}
	ctx, span := observability.StartSpan(ctx, op,
		attribute.String(observability.AttrProvider, a.provider.Name()),
		attribute.String("place", place))

	fc, err := a.provider.Forecast(ctx, place, a.admit)
	observability.EndSpan(span, err)
	if err != nil {
		return Forecast{}, err
	}
	if fc.Place == "" {
		fc.Place = place
	}
	return fc, nil
}

// monthGuidance returns one seasonal phrase per calendar month in days.
func monthGuidance(days []time.Time, latitude float64) []string {
	var out []string
	var last time.Month
	for _, d := range days {
		if d.Month() == last {
			continue
		}
		last = d.Month()
		out = append(out, seasonalGuidance(last, latitude))
	}
	return out
}

func describeCurrent(c Conditions) string {
	return fmt.Sprintf("%s, %.0f°C, wind %.0f km/h, humidity %.0f%%", c.Summary, c.TemperatureC, c.WindKPH, c.HumidityPct)
}

func describeDays(days []Conditions) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = fmt.Sprintf("%s %s, %.0f-%.0f°C", d.Date.Format("Mon Jan 2"), d.Summary, d.MinC, d.MaxC)
	}
	return strings.Join(parts, "; ")
}

func packingTip(days []Conditions) string {
	rainy := 0
	hot := false
	for _, d := range days {
		if d.RainMM >= rainyDayMM {
			rainy++
		}
		if d.MaxC >= 30 {
			hot = true
		}
	}
	switch {
	case rainy > 0 && hot:
		return fmt.Sprintf("Expect rain on %d of %d days and heat, so bring an umbrella and sun protection.", rainy, len(days))
	case rainy > 0:
		return fmt.Sprintf("Expect rain on %d of %d days, so bring an umbrella.", rainy, len(days))
	case hot:
		return "Hot days ahead, so plan outdoor visits for the morning."
	}
	return ""
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
