package guide

import (
	"context"
	"errors"

	"github.com/kbukum/guidegen/geocode"
	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/pipeline"
)

// Step IDs of a generation run, in execution order.
const (
	StepAnalyze  = "analyze"
	StepGeocode  = "geocode"
	StepWeather  = "weather"
	StepGenerate = "generate"
	StepPersist  = "persist"
)

// GeocodeSummary is the result of the geocode step.
type GeocodeSummary struct {
	Destination *geocode.Result `json:"destination"`
	Total       int             `json:"total"`
	Successful  int             `json:"successful"`
}

// WeatherSummary is the result of the weather step.
type WeatherSummary struct {
	Available bool   `json:"available"`
	Advisory  string `json:"advisory,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GenerateSummary is the result of the generate step.
type GenerateSummary struct {
	Title     string `json:"title"`
	Days      int    `json:"days"`
	Generator string `json:"generator"`
}

// PersistSummary is the result of the persist step.
type PersistSummary struct {
	GuideID string `json:"guideId"`
}

// run carries values between the steps of one generation. Steps run one
// after another, so no locking is needed.
type run struct {
	svc      *Service
	id       string
	req      Request
	analysis Analysis
	location *geocode.Result
	places   []Place
	weather  string
	guide    *TravelGuide
}

func (r *run) stages() []pipeline.Stage {
	return []pipeline.Stage{
		{Definition: pipeline.Definition{ID: StepAnalyze, Name: "Analyzing your request"}, Body: r.analyze},
		{Definition: pipeline.Definition{ID: StepGeocode, Name: "Locating places"}, Body: r.geocode},
		{Definition: pipeline.Definition{ID: StepWeather, Name: "Checking the weather"}, Body: r.checkWeather},
		{Definition: pipeline.Definition{ID: StepGenerate, Name: "Writing your guide"}, Body: r.generate},
		{Definition: pipeline.Definition{ID: StepPersist, Name: "Saving your guide"}, Body: r.persist},
	}
}

func (r *run) analyze(_ context.Context, _ *pipeline.Progress) (any, error) {
	a, err := Analyze(r.req)
	if err != nil {
		return nil, err
	}
	r.analysis = a
	return a, nil
}

// geocode resolves the destination first, then the points of interest with
// the destination as hint. Unresolved places stay in the guide without a
// location.
func (r *run) geocode(ctx context.Context, p *pipeline.Progress) (any, error) {
	dest := r.analysis.Destination
	total := 1 + len(r.analysis.Places)

	loc, err := r.svc.resolver.Resolve(ctx, dest, "")
	if err != nil {
		r.svc.log.WithContext(ctx).Warn("Destination not resolved", logger.Fields("destination", dest, logger.FieldError, err.Error()))
	}
	r.location = loc
	p.Fraction(1, total)

	batch := r.svc.resolver.ResolveBatchProgress(ctx, r.analysis.Places, dest, func(done, _ int) {
		p.Fraction(1+done, total)
	})

	r.places = make([]Place, len(r.analysis.Places))
	for i, name := range r.analysis.Places {
		r.places[i] = Place{Name: name, Location: batch.Results[i]}
	}

	successful := batch.Successful
	if loc != nil {
		successful++
	}
	return GeocodeSummary{Destination: loc, Total: total, Successful: successful}, nil
}

// checkWeather never fails the run: a missing forecast leaves the guide
// without weather notes.
func (r *run) checkWeather(ctx context.Context, _ *pipeline.Progress) (any, error) {
	var (
		advisory string
		err      error
	)
	a := r.analysis
	if a.Days > 0 || !a.StartDate.IsZero() {
		days := a.Days
		if days <= 0 {
			days = r.svc.cfg.DefaultDays
		}
		advisory, err = r.svc.advisor.AdviseForDateRange(ctx, a.Destination, a.StartDate, days)
	} else {
		advisory, err = r.svc.advisor.Advise(ctx, a.Destination)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		r.svc.log.WithContext(ctx).Warn("Weather unavailable", logger.Fields("destination", a.Destination, logger.FieldError, err.Error()))
		return WeatherSummary{Available: false, Error: err.Error()}, nil
	}
	r.weather = advisory
	return WeatherSummary{Available: true, Advisory: advisory}, nil
}

func (r *run) generate(ctx context.Context, p *pipeline.Progress) (any, error) {
	p.Report(10)
	g, err := r.svc.generator.Generate(ctx, Input{
		Request:  r.req,
		Analysis: r.analysis,
		Location: r.location,
		Places:   r.places,
		Weather:  r.weather,
	})
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errors.New("generator returned no guide")
	}
	g.RunID = r.id
	r.guide = g
	return GenerateSummary{Title: g.Title, Days: len(g.Itinerary), Generator: g.Generator}, nil
}

func (r *run) persist(ctx context.Context, _ *pipeline.Progress) (any, error) {
	if err := r.svc.repo.Save(ctx, r.guide); err != nil {
		return nil, err
	}
	return PersistSummary{GuideID: r.guide.ID}, nil
}
