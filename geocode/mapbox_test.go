package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMapboxLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "pk.test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("limit") != "3" {
			t.Errorf("unexpected limit %q", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "Belem"):
			_, _ = w.Write([]byte(`{"features":[{"place_name":"Belém Tower, Lisbon, Portugal","center":[-9.216,38.6916],"relevance":0.95}]}`))
		case strings.Contains(r.URL.Path, "Springfield"):
			_, _ = w.Write([]byte(`{"features":[{"place_name":"Springfield, IL","center":[-89.6,39.8],"relevance":0.8},{"place_name":"Springfield, MA","center":[-72.5,42.1],"relevance":0.78}]}`))
		default:
			_, _ = w.Write([]byte(`{"features":[]}`))
		}
	}))
	defer srv.Close()

	p, err := NewMapboxProvider(MapboxConfig{BaseURL: srv.URL, Token: "pk.test", Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	l, err := p.Lookup(ctx, "Belem Tower")
	if err != nil {
		t.Fatal(err)
	}
	if l.Outcome != OutcomeMatch || l.Coordinates.Longitude != -9.216 || l.Confidence != ConfidenceHigh {
		t.Errorf("unexpected match %+v", l)
	}

	if l, _ := p.Lookup(ctx, "Springfield"); l.Outcome != OutcomeAmbiguous {
		t.Errorf("expected ambiguous, got %s", l.Outcome)
	}
	if l, _ := p.Lookup(ctx, "Nowhere"); l.Outcome != OutcomeNotFound {
		t.Errorf("expected not-found, got %s", l.Outcome)
	}
}

func TestMapboxAuthFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, _ := NewMapboxProvider(MapboxConfig{BaseURL: srv.URL, Token: "bad", Timeout: time.Second})
	if _, err := p.Lookup(context.Background(), "Paris"); err == nil {
		t.Error("expected auth error")
	}
}

func TestClassifyFeatures(t *testing.T) {
	tests := []struct {
		name     string
		features []mapboxFeature
		want     Outcome
		conf     string
	}{
		{"none", nil, OutcomeNotFound, ""},
		{"weak", []mapboxFeature{{Center: []float64{1, 2}, Relevance: 0.3}}, OutcomeNotFound, ""},
		{"medium", []mapboxFeature{{Center: []float64{1, 2}, Relevance: 0.75}}, OutcomeMatch, ConfidenceMedium},
		{"low", []mapboxFeature{{Center: []float64{1, 2}, Relevance: 0.55}}, OutcomeMatch, ConfidenceLow},
		{"strong winner despite tie", []mapboxFeature{{Center: []float64{1, 2}, Relevance: 0.95}, {Center: []float64{3, 4}, Relevance: 0.94}}, OutcomeMatch, ConfidenceHigh},
		{"bad center", []mapboxFeature{{Center: []float64{1}, Relevance: 1}}, OutcomeNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := classifyFeatures(tt.features)
			if l.Outcome != tt.want || l.Confidence != tt.conf {
				t.Errorf("got %s/%q, want %s/%q", l.Outcome, l.Confidence, tt.want, tt.conf)
			}
		})
	}
}
