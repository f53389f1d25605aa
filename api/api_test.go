package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/guidegen/errors"
	"github.com/kbukum/guidegen/geocode"
	"github.com/kbukum/guidegen/guide"
	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/resilience"
	"github.com/kbukum/guidegen/server/middleware"
	"github.com/kbukum/guidegen/sse"
	"github.com/kbukum/guidegen/weather"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var today = time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return today }

type testAPI struct {
	engine *gin.Engine
	hub    *sse.Hub
}

func newTestAPI(t *testing.T, generate ...gin.HandlerFunc) *testAPI {
	t.Helper()
	limits := resilience.NewRegistry()
	geoLimiter, err := limits.Register(resilience.WindowConfig{Name: "geocoding", Capacity: 100, Window: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	weatherLimiter, err := limits.Register(resilience.WindowConfig{Name: "weather", Capacity: 100, Window: time.Minute})
	if err != nil {
		t.Fatal(err)
	}

	hub := sse.NewHub(sse.Config{})
	resolver := geocode.NewResolver(geocode.DefaultTable(), geoLimiter, geocode.WithPolicy(resilience.PolicyFailFast))
	advisor := weather.NewAdvisor(weather.NewStaticProvider(7, clock, weather.DefaultClimates()), weatherLimiter,
		weather.WithPolicy(resilience.PolicyFailFast), weather.WithClock(clock))

	svc, err := guide.NewService(guide.Config{}, guide.Dependencies{
		Resolver:  resolver,
		Advisor:   advisor,
		Generator: guide.NewTemplateGenerator(3),
		Repo:      guide.NewMemoryRepository(10),
		Hub:       hub,
		Log:       logger.Nop(),
	})
	if err != nil {
		t.Fatal(err)
	}

	h, err := New(Dependencies{Guides: svc, Hub: hub, Resolver: resolver, Advisor: advisor, Limits: limits, Log: logger.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	engine := gin.New()
	h.Register(engine, generate...)
	return &testAPI{engine: engine, hub: hub}
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.engine.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", rr.Body.String(), err)
	}
	return out.Data
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) errors.ErrorCode {
	t.Helper()
	var body errors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error JSON %q: %v", rr.Body.String(), err)
	}
	return body.Error.Code
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func frames(t *testing.T, body []byte) []frame {
	t.Helper()
	var out []frame
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		data, ok := strings.CutPrefix(sc.Text(), "data: ")
		if !ok {
			continue
		}
		var f frame
		if err := json.Unmarshal([]byte(data), &f); err != nil {
			t.Fatalf("bad frame %q: %v", data, err)
		}
		out = append(out, f)
	}
	return out
}

func TestStreamGuide(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do("POST", "/api/guides/stream", `{"prompt":"3 days in Paris, visit the Louvre and Montmartre","startDate":"2026-07-11"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	runID := rr.Header().Get(HeaderRunID)
	if runID == "" {
		t.Fatal("expected run ID header")
	}

	fs := frames(t, rr.Body.Bytes())
	if len(fs) < 2 {
		t.Fatalf("expected progress and complete frames, got %d", len(fs))
	}
	for _, f := range fs[:len(fs)-1] {
		if f.Type != sse.FrameProgress {
			t.Errorf("unexpected frame type %q before the terminal frame", f.Type)
		}
	}
	last := fs[len(fs)-1]
	if last.Type != sse.FrameComplete {
		t.Fatalf("last frame = %q: %s", last.Type, last.Data)
	}
	var done struct {
		TravelGuide guide.TravelGuide `json:"travelGuide"`
	}
	if err := json.Unmarshal(last.Data, &done); err != nil {
		t.Fatal(err)
	}
	if done.TravelGuide.Destination != "Paris" || done.TravelGuide.RunID != runID {
		t.Errorf("unexpected guide: %+v", done.TravelGuide)
	}

	// The stored guide, the run and the listing agree.
	rr = a.do("GET", "/api/guides/"+done.TravelGuide.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get guide: expected 200, got %d", rr.Code)
	}
	if g := decode[guide.TravelGuide](t, rr); g.Title != done.TravelGuide.Title {
		t.Errorf("stored title = %q, want %q", g.Title, done.TravelGuide.Title)
	}

	rr = a.do("GET", "/api/guides/"+done.TravelGuide.ID+"/export", "")
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/markdown") {
		t.Fatalf("export: %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rr.Body.String(), "# "+done.TravelGuide.Title+"\n") {
		t.Errorf("unexpected export:\n%s", rr.Body.String())
	}

	rr = a.do("GET", "/api/runs/"+runID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get run: expected 200, got %d", rr.Code)
	}
	run := decode[struct {
		State struct {
			IsComplete bool `json:"isComplete"`
		} `json:"state"`
	}](t, rr)
	if !run.State.IsComplete {
		t.Error("expected the finished run to be complete")
	}

	rr = a.do("GET", "/api/guides", "")
	if list := decode[[]guide.Summary](t, rr); len(list) != 1 || list[0].ID != done.TravelGuide.ID {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestStreamGuide_FailedRunEndsWithErrorFrame(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do("POST", "/api/guides/stream", `{"prompt":"somewhere nice"}`)
	fs := frames(t, rr.Body.Bytes())
	if len(fs) == 0 || fs[len(fs)-1].Type != sse.FrameError {
		t.Fatalf("expected a terminal error frame, got %+v", fs)
	}
	var payload sse.ErrorPayload
	if err := json.Unmarshal(fs[len(fs)-1].Data, &payload); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(payload.Error, "analyze: ") {
		t.Errorf("error = %q, want analyze prefix", payload.Error)
	}
	if payload.Code != string(errors.ErrCodeStepFailed) || payload.Step != "analyze" {
		t.Errorf("code = %q step = %q, want STEP_FAILED analyze", payload.Code, payload.Step)
	}
}

func TestStreamGuide_RejectsInvalidRequests(t *testing.T) {
	a := newTestAPI(t)
	tests := []struct {
		name string
		body string
	}{
		{"not json", `prompt=rome`},
		{"missing prompt", `{"destination":"Rome"}`},
		{"too many days", `{"prompt":"Rome","days":45}`},
		{"bad date", `{"prompt":"Rome","startDate":"next monday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.do("POST", "/api/guides/stream", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if code := errorCode(t, rr); code != errors.ErrCodeInvalidInput {
				t.Errorf("error code = %s", code)
			}
		})
	}
	if a.hub.Count() != 0 {
		t.Errorf("rejected requests must not open streams, hub has %d", a.hub.Count())
	}
}

func TestStreamGuide_ClientLimit(t *testing.T) {
	a := newTestAPI(t, middleware.RateLimit(middleware.RateLimitConfig{Capacity: 1, Window: time.Minute}))

	if rr := a.do("POST", "/api/guides/stream", `{"prompt":"a weekend in Rome"}`); rr.Code != http.StatusOK {
		t.Fatalf("first run: expected 200, got %d", rr.Code)
	}
	rr := a.do("POST", "/api/guides/stream", `{"prompt":"a weekend in Rome"}`)
	if rr.Code != http.StatusTooManyRequests || errorCode(t, rr) != errors.ErrCodeRateLimited {
		t.Errorf("second run: expected 429 RATE_LIMITED, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestLookupsNotFound(t *testing.T) {
	a := newTestAPI(t)
	tests := []struct {
		path     string
		wantCode int
		want     errors.ErrorCode
	}{
		{"/api/guides/not-a-uuid", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/api/guides/" + uuid.NewString(), http.StatusNotFound, errors.ErrCodeNotFound},
		{"/api/guides/" + uuid.NewString() + "/export", http.StatusNotFound, errors.ErrCodeNotFound},
		{"/api/runs/" + uuid.NewString(), http.StatusNotFound, errors.ErrCodeNotFound},
		{"/api/guides?limit=0", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/api/guides?limit=ten", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := a.do("GET", tt.path, "")
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			if code := errorCode(t, rr); code != tt.want {
				t.Errorf("error code = %s, want %s", code, tt.want)
			}
		})
	}
}

func TestGeocode(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do("POST", "/api/geocode", `{"address":"Montmartre","hint":"Paris"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if res := decode[*geocode.Result](t, rr); res == nil || res.QueryUsed != "Montmartre Paris" {
		t.Errorf("unexpected result %+v", res)
	}

	rr = a.do("POST", "/api/geocode", `{"address":"Atlantis"}`)
	if rr.Code != http.StatusOK || decode[*geocode.Result](t, rr) != nil {
		t.Errorf("a miss should be a null result: %d %s", rr.Code, rr.Body.String())
	}

	rr = a.do("POST", "/api/geocode", `{"hint":"Paris"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing address: expected 400, got %d", rr.Code)
	}
}

func TestGeocodeBatch(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do("POST", "/api/geocode/batch", `{"addresses":["Louvre",42,"Atlantis",null,"Old Town"],"hint":"Prague"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	batch := decode[geocode.BatchResult](t, rr)
	if batch.Total != 5 || batch.Successful != 2 || len(batch.Results) != 5 {
		t.Fatalf("unexpected batch %+v", batch)
	}
	if batch.Results[0] == nil || batch.Results[1] != nil || batch.Results[2] != nil || batch.Results[3] != nil {
		t.Errorf("unexpected result positions %+v", batch.Results)
	}
	if batch.Results[4] == nil || batch.Results[4].QueryUsed != "Old Town Prague" {
		t.Errorf("expected hint rewrite for Old Town, got %+v", batch.Results[4])
	}

	rr = a.do("POST", "/api/geocode/batch", `{"addresses":[]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("empty batch: expected 200, got %d", rr.Code)
	}
	if empty := decode[geocode.BatchResult](t, rr); empty.Total != 0 || empty.Successful != 0 || len(empty.Results) != 0 {
		t.Errorf("unexpected empty batch %+v", empty)
	}
	if rr := a.do("POST", "/api/geocode/batch", `{"hint":"Prague"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("missing addresses: expected 400, got %d", rr.Code)
	}
}

func TestWeather(t *testing.T) {
	a := newTestAPI(t)
	tests := []struct {
		name     string
		query    string
		wantCode int
		contains string
	}{
		{"current", "place=Paris", http.StatusOK, "Currently in Paris"},
		{"date range", "place=Paris&start=2026-07-11&days=2", http.StatusOK, "2-day stay in Paris"},
		{"days only", "place=Rome&days=4", http.StatusOK, "4-day stay"},
		{"beyond horizon", "place=Paris&start=2026-12-20&days=3", http.StatusOK, "beyond the 7-day forecast"},
		{"missing place", "", http.StatusBadRequest, ""},
		{"bad days", "place=Paris&days=40", http.StatusBadRequest, ""},
		{"bad start", "place=Paris&start=20-12-2026", http.StatusBadRequest, ""},
		{"unknown place", "place=Atlantis", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.do("GET", "/api/weather?"+tt.query, "")
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if tt.contains == "" {
				return
			}
			data := decode[map[string]any](t, rr)
			if advisory, _ := data["advisory"].(string); !strings.Contains(advisory, tt.contains) {
				t.Errorf("advisory %q missing %q", advisory, tt.contains)
			}
		})
	}
}

func TestRateLimits(t *testing.T) {
	a := newTestAPI(t)
	a.do("POST", "/api/geocode", `{"address":"Paris"}`)

	rr := a.do("GET", "/api/rate-limits", "")
	statuses := decode[[]resilience.WindowStatus](t, rr)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 limiters, got %+v", statuses)
	}
	counts := map[string]int{}
	for _, s := range statuses {
		counts[s.Name] = s.Count
	}
	if counts["geocoding"] != 1 || counts["weather"] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
}
