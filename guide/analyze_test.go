package guide

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name        string
		req         Request
		destination string
		places      []string
		days        int
		start       string
	}{
		{
			name:        "full prompt",
			req:         Request{Prompt: "Plan 3 days in Paris starting 2026-07-01. I want to visit the Louvre, Montmartre and the Eiffel Tower."},
			destination: "Paris",
			places:      []string{"Louvre", "Montmartre", "Eiffel Tower"},
			days:        3,
			start:       "2026-07-01",
		},
		{
			name:        "multi word destination and hyphenated duration",
			req:         Request{Prompt: "A 5-day trip to New York, we want to see Central Park & the Met"},
			destination: "New York",
			places:      []string{"Central Park", "Met"},
			days:        5,
		},
		{
			name:        "explicit fields win",
			req:         Request{Prompt: "Two weeks in Rome", Destination: "Lisbon", Days: 4, StartDate: "2026-09-10"},
			destination: "Lisbon",
			days:        4,
			start:       "2026-09-10",
		},
		{
			name:        "word duration in weeks",
			req:         Request{Prompt: "two weeks in Tokyo"},
			destination: "Tokyo",
			days:        14,
		},
		{
			name:        "month is not a destination",
			req:         Request{Prompt: "A weekend in July to Prague"},
			destination: "Prague",
			days:        2,
		},
		{
			name:        "destination from visit",
			req:         Request{Prompt: "I would love to visit Barcelona and Sagrada Familia"},
			destination: "Barcelona",
			places:      []string{"Sagrada Familia"},
		},
		{
			name:        "places stop at trailing clause",
			req:         Request{Prompt: "see Table Mountain, Bondi Beach in Cape Town for a week"},
			destination: "Cape Town",
			places:      []string{"Table Mountain", "Bondi Beach"},
			days:        7,
		},
		{
			name:        "second visit verb is stripped",
			req:         Request{Prompt: "In June I want to visit Rome and see the Colosseum, Trevi Fountain"},
			destination: "Rome",
			places:      []string{"Colosseum", "Trevi Fountain"},
		},
		{
			name:        "lowercase destination",
			req:         Request{Prompt: "plan 3 weeks in new york"},
			destination: "New York",
			days:        21,
		},
		{
			name:        "lowercase destination after a verb",
			req:         Request{Prompt: "i want to go to lisbon for a weekend"},
			destination: "Lisbon",
			days:        2,
		},
		{
			name:        "duration is capped",
			req:         Request{Prompt: "90 days in Sydney"},
			destination: "Sydney",
			days:        maxDays,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Analyze(tt.req)
			if err != nil {
				t.Fatalf("Analyze() error: %v", err)
			}
			if a.Destination != tt.destination {
				t.Errorf("destination = %q, want %q", a.Destination, tt.destination)
			}
			if !slices.Equal(a.Places, tt.places) {
				t.Errorf("places = %q, want %q", a.Places, tt.places)
			}
			if a.Days != tt.days {
				t.Errorf("days = %d, want %d", a.Days, tt.days)
			}
			var start string
			if !a.StartDate.IsZero() {
				start = a.StartDate.Format(time.DateOnly)
			}
			if start != tt.start {
				t.Errorf("start = %q, want %q", start, tt.start)
			}
		})
	}
}

func TestAnalyze_NoDestination(t *testing.T) {
	_, err := Analyze(Request{Prompt: "somewhere warm please"})
	if !errors.Is(err, ErrNoDestination) {
		t.Errorf("expected ErrNoDestination, got %v", err)
	}
}

func TestCleanPlace(t *testing.T) {
	tests := map[string]string{
		"see the Colosseum":      "Colosseum",
		"  \"Trevi Fountain\" ":  "Trevi Fountain",
		"exploring an Old Town":  "Old Town",
		"the":                    "",
		"Eiffel Tower":           "Eiffel Tower",
	}
	for in, want := range tests {
		if got := cleanPlace(in); got != want {
			t.Errorf("cleanPlace(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAnalyze_InvalidStartDate(t *testing.T) {
	if _, err := Analyze(Request{Prompt: "in Rome", StartDate: "10/09/2026"}); err == nil {
		t.Error("expected an error for a malformed start date")
	}
}

func TestAnalyze_PlacesLimit(t *testing.T) {
	a, err := Analyze(Request{Prompt: "in Rome visit a1, a2, a3, a4, a5, a6, a7, a8, a9, a10, a11, a12"})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Places) != maxPlaces {
		t.Errorf("expected %d places, got %d", maxPlaces, len(a.Places))
	}
}
