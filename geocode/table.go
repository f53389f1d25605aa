package geocode

import (
	"context"
	"strings"
	"sync"
)

// TableProvider answers from an in-memory table keyed by normalized query.
type TableProvider struct {
	mu      sync.RWMutex
	entries map[string]Lookup
	calls   map[string]int
}

// NewTableProvider creates a provider over entries.
func NewTableProvider(entries map[string]Lookup) *TableProvider {
	t := &TableProvider{entries: make(map[string]Lookup, len(entries)), calls: make(map[string]int)}
	for q, l := range entries {
		t.entries[normalizeKey(q)] = l
	}
	return t
}

func (t *TableProvider) Name() string { return "table" }

// Set adds or replaces an entry.
func (t *TableProvider) Set(query string, l Lookup) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[normalizeKey(query)] = l
}

// Lookup returns the entry for query, or OutcomeNotFound.
func (t *TableProvider) Lookup(ctx context.Context, query string) (Lookup, error) {
	if err := ctx.Err(); err != nil {
		return Lookup{}, err
	}
	key := normalizeKey(query)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls[key]++
	if l, ok := t.entries[key]; ok {
		return l, nil
	}
	return Lookup{Outcome: OutcomeNotFound}, nil
}

// Calls returns how often query was looked up.
func (t *TableProvider) Calls(query string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.calls[normalizeKey(query)]
}

func normalizeKey(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(q, ",", " ")), " "))
}

func match(lon, lat float64, formatted string) Lookup {
	return Lookup{
		Outcome:          OutcomeMatch,
		Coordinates:      Coordinates{Longitude: lon, Latitude: lat},
		FormattedAddress: formatted,
		Confidence:       ConfidenceHigh,
	}
}

// DefaultTable returns a table of common destinations and landmarks for
// development without a geocoding account. Bare landmark names that exist
// in several cities are ambiguous and resolve only with a city hint.
func DefaultTable() *TableProvider {
	return NewTableProvider(map[string]Lookup{
		"paris":                 match(2.3522, 48.8566, "Paris, France"),
		"eiffel tower":          match(2.2945, 48.8584, "Eiffel Tower, Paris, France"),
		"louvre":                match(2.3376, 48.8606, "Louvre Museum, Paris, France"),
		"montmartre paris":      match(2.3431, 48.8867, "Montmartre, Paris, France"),
		"rome":                  match(12.4964, 41.9028, "Rome, Italy"),
		"colosseum":             match(12.4922, 41.8902, "Colosseum, Rome, Italy"),
		"trevi fountain rome":   match(12.4833, 41.9009, "Trevi Fountain, Rome, Italy"),
		"vatican museums":       match(12.4545, 41.9065, "Vatican Museums, Vatican City"),
		"tokyo":                 match(139.6917, 35.6895, "Tokyo, Japan"),
		"senso-ji tokyo":        match(139.7967, 35.7148, "Senso-ji, Asakusa, Tokyo, Japan"),
		"shibuya crossing":      match(139.7005, 35.6595, "Shibuya Crossing, Tokyo, Japan"),
		"lisbon":                match(-9.1393, 38.7223, "Lisbon, Portugal"),
		"belem tower lisbon":    match(-9.2160, 38.6916, "Belém Tower, Lisbon, Portugal"),
		"alfama lisbon":         match(-9.1300, 38.7118, "Alfama, Lisbon, Portugal"),
		"barcelona":             match(2.1734, 41.3851, "Barcelona, Spain"),
		"sagrada familia":       match(2.1744, 41.4036, "Sagrada Família, Barcelona, Spain"),
		"park guell barcelona":  match(2.1527, 41.4145, "Park Güell, Barcelona, Spain"),
		"new york":              match(-74.0060, 40.7128, "New York, NY, United States"),
		"central park":          {Outcome: OutcomeAmbiguous},
		"central park new york": match(-73.9654, 40.7829, "Central Park, New York, NY, United States"),
		"sydney":                match(151.2093, -33.8688, "Sydney, NSW, Australia"),
		"sydney opera house":    match(151.2153, -33.8568, "Sydney Opera House, Sydney, Australia"),
		"bondi beach":           match(151.2743, -33.8915, "Bondi Beach, Sydney, Australia"),
		"cape town":             match(18.4241, -33.9249, "Cape Town, South Africa"),
		"table mountain":        match(18.4039, -33.9628, "Table Mountain, Cape Town, South Africa"),
		"old town":              {Outcome: OutcomeAmbiguous},
		"old town prague":       match(14.4213, 50.0875, "Old Town, Prague, Czechia"),
		"prague":                match(14.4378, 50.0755, "Prague, Czechia"),
		"charles bridge":        match(14.4114, 50.0865, "Charles Bridge, Prague, Czechia"),
	})
}
