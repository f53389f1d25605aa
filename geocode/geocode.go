package geocode

import (
	"context"
	"fmt"
	"time"
)

// Confidence levels of a match.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Result is a resolved address. QueryUsed is the literal query that
// matched, which differs from Address after a hint rewrite.
type Result struct {
	Address          string      `json:"address"`
	Coordinates      Coordinates `json:"coordinates"`
	FormattedAddress string      `json:"formattedAddress"`
	ConfidenceLevel  string      `json:"confidenceLevel"`
	QueryUsed        string      `json:"queryUsed"`
}

// BatchResult holds one entry per input address, nil where resolution
// produced nothing.
type BatchResult struct {
	Results    []*Result `json:"results"`
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
}

// Outcome classifies a provider lookup.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeMatch
	OutcomeAmbiguous
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatch:
		return "match"
	case OutcomeAmbiguous:
		return "ambiguous"
	default:
		return "not-found"
	}
}

// Lookup is the answer of a provider to one query. Coordinates and
// FormattedAddress are only meaningful for OutcomeMatch.
type Lookup struct {
	Outcome          Outcome     `json:"outcome"`
	Coordinates      Coordinates `json:"coordinates"`
	FormattedAddress string      `json:"formattedAddress,omitempty"`
	Confidence       string      `json:"confidence,omitempty"`
}

// Provider answers forward geocoding queries. An error means the provider
// could not answer; a miss is reported through Outcome.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, query string) (Lookup, error)
}

// Cache stores provider answers by query. A miss is (nil, nil).
// *redis.TypedStore[Lookup] implements it.
type Cache interface {
	Load(ctx context.Context, key string) (*Lookup, error)
	Save(ctx context.Context, key string, l *Lookup, ttl time.Duration) error
}

// Strategy derives the query of one resolution attempt. It returns false
// when it has nothing to try for the input.
type Strategy interface {
	Name() string
	Query(address, hint string) (string, bool)
}

// Primary queries the address as given.
type Primary struct{}

func (Primary) Name() string { return "primary" }

func (Primary) Query(address, _ string) (string, bool) {
	return address, address != ""
}

// HintRewrite appends the context hint, e.g. the destination city, to
// disambiguate the address.
type HintRewrite struct{}

func (HintRewrite) Name() string { return "hint" }

func (HintRewrite) Query(address, hint string) (string, bool) {
	if address == "" || hint == "" {
		return "", false
	}
	return fmt.Sprintf("%s %s", address, hint), true
}

// DefaultStrategies is primary then hint rewrite.
func DefaultStrategies() []Strategy {
	return []Strategy{Primary{}, HintRewrite{}}
}
