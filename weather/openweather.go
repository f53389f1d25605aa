package weather

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kbukum/guidegen/httpclient"
)

// OpenWeatherProvider combines the OpenWeather current weather and 5-day
// forecast endpoints.
type OpenWeatherProvider struct {
	client *httpclient.Client
}

type owSample struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour   float64 `json:"1h"`
		ThreeHour float64 `json:"3h"`
	} `json:"rain"`
}

type owCurrent struct {
	owSample
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
}

type owForecast struct {
	List []owSample `json:"list"`
	City struct {
		Timezone int `json:"timezone"`
	} `json:"city"`
}

// NewOpenWeatherProvider creates a provider with retries and a circuit
// breaker on the HTTP client.
func NewOpenWeatherProvider(cfg OpenWeatherConfig) (*OpenWeatherProvider, error) {
	client, err := httpclient.New(httpclient.Config{
		Name:    "openweather",
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.APIKeyQuery(cfg.APIKey, "appid"),
		Retry:   httpclient.DefaultRetryConfig(),
		Breaker: httpclient.DefaultBreakerConfig("openweather"),
	})
	if err != nil {
		return nil, err
	}
	return &OpenWeatherProvider{client: client}, nil
}

func (p *OpenWeatherProvider) Name() string { return "openweather" }

// Horizon is five days of 3-hour samples.
func (p *OpenWeatherProvider) Horizon() int { return 5 }

// Forecast fetches current conditions and aggregates 3-hour samples into
// days in the place's local time. It makes two requests, each admitted
// separately.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, place string, admit Admit) (Forecast, error) {
	opts := []httpclient.RequestOption{
		httpclient.WithQueryParam("q", place),
		httpclient.WithQueryParam("units", "metric"),
	}
	if err := admit.call(ctx); err != nil {
		return Forecast{}, err
	}
	cur, err := httpclient.GetJSON[owCurrent](ctx, p.client, "data/2.5/weather", opts...)
	if err != nil {
		if httpclient.IsNotFound(err) {
			return Forecast{}, fmt.Errorf("%w: %s", ErrUnknownPlace, place)
		}
		return Forecast{}, fmt.Errorf("openweather current: %w", err)
	}
	if err := admit.call(ctx); err != nil {
		return Forecast{}, err
	}
	fc, err := httpclient.GetJSON[owForecast](ctx, p.client, "data/2.5/forecast", opts...)
	if err != nil {
		return Forecast{}, fmt.Errorf("openweather forecast: %w", err)
	}

	name := cur.Name
	if name == "" {
		name = place
	}
	offset := time.Duration(fc.City.Timezone) * time.Second
	return Forecast{
		Place:     name,
		Latitude:  cur.Coord.Lat,
		UTCOffset: offset,
		Current:   sampleConditions(cur.owSample, time.Unix(cur.Dt, 0).UTC()),
		Days:      aggregateDays(fc.List, offset),
	}, nil
}

func sampleConditions(s owSample, at time.Time) Conditions {
	c := Conditions{
		Date:         at,
		TemperatureC: s.Main.Temp,
		MinC:         s.Main.TempMin,
		MaxC:         s.Main.TempMax,
		RainMM:       s.Rain.OneHour + s.Rain.ThreeHour,
		WindKPH:      s.Wind.Speed * 3.6,
		HumidityPct:  s.Main.Humidity,
	}
	if len(s.Weather) > 0 {
		c.Summary = s.Weather[0].Description
	}
	return c
}

// aggregateDays folds samples into one Conditions per local day. The
// summary of a day is its most frequent description.
func aggregateDays(samples []owSample, offset time.Duration) []Conditions {
	type acc struct {
		c        Conditions
		n        int
		humidity float64
		wind     float64
		counts   map[string]int
	}
	byDay := make(map[time.Time]*acc)
	for _, s := range samples {
		local := time.Unix(s.Dt, 0).UTC().Add(offset)
		d := dayOf(local)
		a, ok := byDay[d]
		if !ok {
			a = &acc{c: Conditions{Date: d, MinC: s.Main.TempMin, MaxC: s.Main.TempMax}, counts: make(map[string]int)}
			byDay[d] = a
		}
		a.c.MinC = min(a.c.MinC, s.Main.TempMin)
		a.c.MaxC = max(a.c.MaxC, s.Main.TempMax)
		a.c.RainMM += s.Rain.ThreeHour
		a.humidity += s.Main.Humidity
		a.wind = max(a.wind, s.Wind.Speed*3.6)
		a.n++
		if len(s.Weather) > 0 {
			a.counts[s.Weather[0].Description]++
		}
	}

	days := make([]Conditions, 0, len(byDay))
	for _, a := range byDay {
		a.c.HumidityPct = a.humidity / float64(a.n)
		a.c.WindKPH = a.wind
		a.c.TemperatureC = (a.c.MinC + a.c.MaxC) / 2
		best := 0
		for desc, n := range a.counts {
			if n > best || (n == best && desc < a.c.Summary) {
				best, a.c.Summary = n, desc
			}
		}
		days = append(days, a.c)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}
