package guide

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/guidegen/geocode"
	"github.com/kbukum/guidegen/llm"
)

// Input is everything the generate step knows about the trip.
type Input struct {
	Request  Request
	Analysis Analysis
	Location *geocode.Result
	Places   []Place
	Weather  string
}

// days returns the stay length, falling back to fallback.
func (in Input) days(fallback int) int {
	if in.Analysis.Days > 0 {
		return in.Analysis.Days
	}
	return fallback
}

// Generator writes a guide from the enriched input.
type Generator interface {
	Name() string
	Generate(ctx context.Context, in Input) (*TravelGuide, error)
}

// newGuide fills the fields every generator shares.
func newGuide(in Input, generator string) *TravelGuide {
	return &TravelGuide{
		Destination: in.Analysis.Destination,
		Location:    in.Location,
		Weather:     in.Weather,
		Places:      in.Places,
		Generator:   generator,
		Prompt:      in.Request.Prompt,
	}
}

func dayDate(start time.Time, offset int) string {
	if start.IsZero() {
		return ""
	}
	return start.AddDate(0, 0, offset).Format(dateLayout)
}

// TemplateGenerator builds a guide without a model: places are spread
// evenly across the days of the stay.
type TemplateGenerator struct {
	defaultDays int
}

// NewTemplateGenerator returns a template generator planning defaultDays
// when the stay length is unknown.
func NewTemplateGenerator(defaultDays int) *TemplateGenerator {
	if defaultDays <= 0 {
		defaultDays = 3
	}
	return &TemplateGenerator{defaultDays: defaultDays}
}

func (g *TemplateGenerator) Name() string { return "template" }

func (g *TemplateGenerator) Generate(_ context.Context, in Input) (*TravelGuide, error) {
	days := in.days(g.defaultDays)
	dest := in.Analysis.Destination

	guide := newGuide(in, g.Name())
	guide.Title = fmt.Sprintf("%d %s in %s", days, plural(days, "day", "days"), dest)
	guide.Summary = fmt.Sprintf("A %d-day plan for %s covering %d %s.",
		days, dest, len(in.Places), plural(len(in.Places), "point of interest", "points of interest"))

	buckets := make([][]string, days)
	for i, p := range in.Places {
		buckets[i%days] = append(buckets[i%days], "Visit "+p.Name)
	}

	guide.Itinerary = make([]Day, days)
	for i := range days {
		activities := buckets[i]
		title := "Explore " + dest
		switch {
		case i == 0:
			title = "Arrival in " + dest
			activities = append([]string{"Settle in and walk the neighbourhood"}, activities...)
		case len(activities) == 0:
			activities = []string{"Free day to wander " + dest}
		}
		if i == days-1 && days > 1 {
			title = "Last day in " + dest
		}
		guide.Itinerary[i] = Day{Day: i + 1, Date: dayDate(in.Analysis.StartDate, i), Title: title, Activities: activities}
	}

	if in.Weather != "" {
		guide.Tips = append(guide.Tips, "Check the weather notes before heading out each morning.")
	}
	guide.Tips = append(guide.Tips, "Group nearby sights on the same day to cut travel time.")
	return guide, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

const systemPrompt = `You are a travel planner. Write a day-by-day travel guide.
Return a JSON object with the fields:
  "title": string,
  "summary": string,
  "itinerary": [{"day": number, "title": string, "activities": [string]}],
  "tips": [string]
Use only the places and weather notes you are given; do not invent coordinates.`

// modelGuide is the JSON shape the model is asked for.
type modelGuide struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Itinerary []Day    `json:"itinerary"`
	Tips      []string `json:"tips"`
}

// LLMGenerator asks a language model for the itinerary.
type LLMGenerator struct {
	exec        llm.Executor
	name        string
	defaultDays int
}

// NewLLMGenerator returns a generator backed by exec. name identifies the
// model in stored guides.
func NewLLMGenerator(exec llm.Executor, name string, defaultDays int) *LLMGenerator {
	if defaultDays <= 0 {
		defaultDays = 3
	}
	return &LLMGenerator{exec: exec, name: name, defaultDays: defaultDays}
}

func (g *LLMGenerator) Name() string { return g.name }

func (g *LLMGenerator) Generate(ctx context.Context, in Input) (*TravelGuide, error) {
	var out modelGuide
	if err := llm.CompleteStructured(ctx, g.exec, systemPrompt, g.userPrompt(in), &out); err != nil {
		return nil, fmt.Errorf("generate guide: %w", err)
	}
	if len(out.Itinerary) == 0 {
		return nil, errors.New("generate guide: model returned no itinerary")
	}

	guide := newGuide(in, g.Name())
	guide.Title = out.Title
	if guide.Title == "" {
		guide.Title = "Your trip to " + in.Analysis.Destination
	}
	guide.Summary = out.Summary
	guide.Tips = out.Tips
	guide.Itinerary = out.Itinerary
	for i := range guide.Itinerary {
		d := &guide.Itinerary[i]
		d.Day = i + 1
		d.Date = dayDate(in.Analysis.StartDate, i)
	}
	return guide, nil
}

func (g *LLMGenerator) userPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Destination: %s\n", in.Analysis.Destination)
	if in.Location != nil {
		fmt.Fprintf(&b, "Resolved as: %s\n", in.Location.FormattedAddress)
	}
	fmt.Fprintf(&b, "Days: %d\n", in.days(g.defaultDays))
	if !in.Analysis.StartDate.IsZero() {
		fmt.Fprintf(&b, "Start date: %s\n", in.Analysis.StartDate.Format(dateLayout))
	}
	if len(in.Places) > 0 {
		b.WriteString("Points of interest:\n")
		for _, p := range in.Places {
			if p.Location != nil {
				fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.Location.FormattedAddress)
			} else {
				fmt.Fprintf(&b, "- %s\n", p.Name)
			}
		}
	}
	if in.Weather != "" {
		fmt.Fprintf(&b, "Weather: %s\n", in.Weather)
	}
	fmt.Fprintf(&b, "Traveller request: %s\n", in.Request.Prompt)
	return b.String()
}
