package geocode

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/kbukum/guidegen/httpclient"
)

// MapboxProvider queries the Mapbox forward geocoding API.
type MapboxProvider struct {
	client     *httpclient.Client
	candidates int
}

type mapboxResponse struct {
	Features []mapboxFeature `json:"features"`
}

type mapboxFeature struct {
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"`
	Relevance float64   `json:"relevance"`
}

// NewMapboxProvider creates a provider with retries and a circuit breaker
// on the HTTP client.
func NewMapboxProvider(cfg MapboxConfig) (*MapboxProvider, error) {
	client, err := httpclient.New(httpclient.Config{
		Name:    "mapbox",
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.APIKeyQuery(cfg.Token, "access_token"),
		Retry:   httpclient.DefaultRetryConfig(),
		Breaker: httpclient.DefaultBreakerConfig("mapbox"),
	})
	if err != nil {
		return nil, err
	}
	candidates := cfg.Candidates
	if candidates <= 0 {
		candidates = 3
	}
	return &MapboxProvider{client: client, candidates: candidates}, nil
}

func (p *MapboxProvider) Name() string { return "mapbox" }

// Lookup maps the feature list to an outcome. Two leading features with
// nearly the same relevance and no strong winner are ambiguous.
func (p *MapboxProvider) Lookup(ctx context.Context, query string) (Lookup, error) {
	path := "geocoding/v5/mapbox.places/" + url.PathEscape(query) + ".json"
	resp, err := httpclient.GetJSON[mapboxResponse](ctx, p.client, path,
		httpclient.WithQueryParam("limit", strconv.Itoa(p.candidates)))
	if err != nil {
		if httpclient.IsNotFound(err) {
			return Lookup{Outcome: OutcomeNotFound}, nil
		}
		return Lookup{}, fmt.Errorf("mapbox lookup: %w", err)
	}
	return classifyFeatures(resp.Features), nil
}

func classifyFeatures(features []mapboxFeature) Lookup {
	if len(features) == 0 || len(features[0].Center) < 2 {
		return Lookup{Outcome: OutcomeNotFound}
	}
	top := features[0]
	if top.Relevance < 0.5 {
		return Lookup{Outcome: OutcomeNotFound}
	}
	if len(features) > 1 && top.Relevance < 0.9 && top.Relevance-features[1].Relevance < 0.05 {
		return Lookup{Outcome: OutcomeAmbiguous}
	}
	return Lookup{
		Outcome:          OutcomeMatch,
		Coordinates:      Coordinates{Longitude: top.Center[0], Latitude: top.Center[1]},
		FormattedAddress: top.PlaceName,
		Confidence:       confidence(top.Relevance),
	}
}

func confidence(relevance float64) string {
	switch {
	case relevance >= 0.9:
		return ConfidenceHigh
	case relevance >= 0.7:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
