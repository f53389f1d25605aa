package guide

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/guidegen/geocode"
	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/pipeline"
	"github.com/kbukum/guidegen/resilience"
	"github.com/kbukum/guidegen/sse"
	"github.com/kbukum/guidegen/weather"
)

var today = time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return today }

type recorder struct {
	mu        sync.Mutex
	snapshots []pipeline.State
	result    any
	err       error
	final     pipeline.State
}

func (r *recorder) PublishProgress(s pipeline.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *recorder) Complete(result any, s pipeline.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result, r.final = result, s
}

func (r *recorder) Fail(err error, s pipeline.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err, r.final = err, s
}

func stepOf(s pipeline.State, id string) pipeline.Step {
	st, _ := s.Step(id)
	return st
}

type failingGenerator struct{}

func (failingGenerator) Name() string { return "failing" }

func (failingGenerator) Generate(context.Context, Input) (*TravelGuide, error) {
	return nil, errors.New("model unavailable")
}

func limiter(t *testing.T, name string, capacity int) *resilience.WindowLimiter {
	t.Helper()
	l, err := resilience.NewWindowLimiter(resilience.WindowConfig{Name: name, Capacity: capacity, Window: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func newTestService(t *testing.T, gen Generator, cfg Config) (*Service, *sse.Hub) {
	t.Helper()
	hub := sse.NewHub(sse.Config{})
	svc, err := NewService(cfg, Dependencies{
		Resolver: geocode.NewResolver(geocode.DefaultTable(), limiter(t, "geocoding", 100),
			geocode.WithPolicy(resilience.PolicyFailFast)),
		Advisor: weather.NewAdvisor(weather.NewStaticProvider(7, clock, weather.DefaultClimates()), limiter(t, "weather", 100),
			weather.WithClock(clock)),
		Generator: gen,
		Repo:      NewMemoryRepository(10),
		Hub:       hub,
		Log:       logger.Nop(),
	})
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	return svc, hub
}

func TestService_Run(t *testing.T) {
	svc, _ := newTestService(t, NewTemplateGenerator(3), Config{})
	rec := &recorder{}

	g, state, err := svc.Run(context.Background(), "run-1",
		Request{Prompt: "3 days in Paris starting 2026-07-11, visit the Louvre, Montmartre and Atlantis"}, rec)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !state.IsComplete || len(state.Steps) != 5 {
		t.Fatalf("unexpected final state: %+v", state)
	}
	for _, st := range state.Steps {
		if st.Status != pipeline.StatusCompleted {
			t.Errorf("step %s = %s, want completed", st.ID, st.Status)
		}
	}
	if rec.result != g || rec.err != nil {
		t.Errorf("expected Complete with the guide, got result=%v err=%v", rec.result, rec.err)
	}

	if g.RunID != "run-1" || g.ID == "" {
		t.Errorf("unexpected ids: run=%q id=%q", g.RunID, g.ID)
	}
	if g.Location == nil || g.Location.FormattedAddress != "Paris, France" {
		t.Errorf("destination not resolved: %+v", g.Location)
	}
	if len(g.Places) != 3 || g.Places[1].Location == nil || g.Places[1].Location.QueryUsed != "Montmartre Paris" {
		t.Errorf("expected Montmartre resolved with the hint: %+v", g.Places)
	}
	if g.Places[2].Location != nil {
		t.Error("Atlantis should stay unresolved")
	}
	if !strings.Contains(g.Weather, "Paris") {
		t.Errorf("expected a weather advisory, got %q", g.Weather)
	}

	geo, ok := stepOf(state, StepGeocode).Result.(GeocodeSummary)
	if !ok || geo.Total != 4 || geo.Successful != 3 {
		t.Errorf("unexpected geocode summary: %+v", stepOf(state, StepGeocode).Result)
	}
	persisted := stepOf(state, StepPersist).Result.(PersistSummary)
	if stored, err := svc.Repository().Get(context.Background(), persisted.GuideID); err != nil || stored.Title != g.Title {
		t.Errorf("guide not persisted: %v", err)
	}

	// Geocode progress is reported per resolved address.
	var geoProgress []int
	for _, s := range rec.snapshots {
		if st := stepOf(s, StepGeocode); st.Status == pipeline.StatusRunning {
			geoProgress = append(geoProgress, st.Progress)
		}
	}
	if len(geoProgress) < 2 || geoProgress[len(geoProgress)-1] != 100 {
		t.Errorf("unexpected geocode progress: %v", geoProgress)
	}
}

func TestService_GeneratorFailure(t *testing.T) {
	svc, _ := newTestService(t, failingGenerator{}, Config{})
	rec := &recorder{}

	_, state, err := svc.Run(context.Background(), "run-2", Request{Prompt: "a weekend in Rome"}, rec)
	var stepErr *pipeline.StepError
	if !errors.As(err, &stepErr) || stepErr.StepID != StepGenerate {
		t.Fatalf("expected generate step error, got %v", err)
	}
	if rec.err == nil || !strings.Contains(rec.err.Error(), "generate: model unavailable") {
		t.Errorf("unexpected failure message: %v", rec.err)
	}

	want := map[string]pipeline.Status{
		StepAnalyze:  pipeline.StatusCompleted,
		StepGeocode:  pipeline.StatusCompleted,
		StepWeather:  pipeline.StatusCompleted,
		StepGenerate: pipeline.StatusFailed,
		StepPersist:  pipeline.StatusPending,
	}
	for id, status := range want {
		if got := stepOf(state, id).Status; got != status {
			t.Errorf("step %s = %s, want %s", id, got, status)
		}
	}
	if state.IsComplete {
		t.Error("a run with a pending step is not complete")
	}
}

func TestService_AnalyzeFailure(t *testing.T) {
	svc, _ := newTestService(t, NewTemplateGenerator(3), Config{})
	_, state, err := svc.Run(context.Background(), "run-3", Request{Prompt: "somewhere nice"}, &recorder{})
	if !errors.Is(err, ErrNoDestination) {
		t.Fatalf("expected ErrNoDestination, got %v", err)
	}
	if stepOf(state, StepAnalyze).Status != pipeline.StatusFailed || stepOf(state, StepGeocode).Status != pipeline.StatusPending {
		t.Errorf("unexpected state: %+v", state)
	}
}

func TestService_WeatherIsSoft(t *testing.T) {
	svc, _ := newTestService(t, NewTemplateGenerator(3), Config{})
	g, state, err := svc.Run(context.Background(), "run-4", Request{Prompt: "3 days", Destination: "Atlantis"}, &recorder{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	ws := stepOf(state, StepWeather).Result.(WeatherSummary)
	if ws.Available || ws.Error == "" {
		t.Errorf("expected an unavailable forecast, got %+v", ws)
	}
	if g.Weather != "" || g.Location != nil {
		t.Errorf("unexpected guide: %+v", g)
	}
}

func TestService_GenerateStreams(t *testing.T) {
	svc, hub := newTestService(t, NewTemplateGenerator(3), Config{})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	stream, err := svc.Generate(context.Background(), Request{Prompt: "two days in Lisbon"})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	w := httptest.NewRecorder()
	if err := stream.Serve(context.Background(), w); err != nil {
		t.Fatalf("Serve() error: %v", err)
	}

	var frames []sse.Frame
	sc := bufio.NewScanner(strings.NewReader(w.Body.String()))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line, ok := strings.CutPrefix(sc.Text(), "data: ")
		if !ok {
			continue
		}
		var f sse.Frame
		if err := json.Unmarshal([]byte(line), &f); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
		frames = append(frames, f)
	}
	if len(frames) < 2 {
		t.Fatalf("expected progress and terminal frames, got %d", len(frames))
	}
	if last := frames[len(frames)-1]; last.Type != sse.FrameComplete {
		t.Errorf("last frame = %s, want complete", last.Type)
	}
	for _, f := range frames[:len(frames)-1] {
		if f.Type != sse.FrameProgress {
			t.Errorf("unexpected frame before terminal: %s", f.Type)
		}
	}

	if _, ok := hub.Snapshot(stream.ID()); !ok {
		t.Error("finished run should stay queryable")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if _, err := svc.Generate(context.Background(), Request{Prompt: "in Rome"}); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped after Stop, got %v", err)
	}
}

func TestService_Busy(t *testing.T) {
	block := make(chan struct{})
	gen := generatorFunc(func(ctx context.Context, in Input) (*TravelGuide, error) {
		<-block
		return NewTemplateGenerator(1).Generate(ctx, in)
	})
	svc, _ := newTestService(t, gen, Config{MaxConcurrentRuns: 1})

	if _, err := svc.Generate(context.Background(), Request{Prompt: "in Rome"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Generate(context.Background(), Request{Prompt: "in Paris"}); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		t.Fatal(err)
	}
}

type generatorFunc func(ctx context.Context, in Input) (*TravelGuide, error)

func (generatorFunc) Name() string { return "func" }

func (f generatorFunc) Generate(ctx context.Context, in Input) (*TravelGuide, error) { return f(ctx, in) }

func TestNewService_RequiresDependencies(t *testing.T) {
	if _, err := NewService(Config{}, Dependencies{}); err == nil {
		t.Error("expected an error without dependencies")
	}
	if _, err := NewService(Config{StepTimeout: -time.Second}, Dependencies{}); err == nil {
		t.Error("expected a config error")
	}
}
