package sse

import (
	"context"
	"testing"
	"time"

	"github.com/kbukum/guidegen/component"
	"github.com/kbukum/guidegen/pipeline"
)

func TestHubOpenAndSnapshot(t *testing.T) {
	h := NewHub(Config{})
	s, err := h.Open("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Open("run-1"); err == nil {
		t.Error("expected duplicate run error")
	}
	if _, ok := h.Snapshot("run-1"); ok {
		t.Error("no snapshot before the first publish")
	}

	s.PublishProgress(testState(pipeline.StatusRunning))
	state, ok := h.Snapshot("run-1")
	if !ok || state.Steps[0].Status != pipeline.StatusRunning {
		t.Errorf("unexpected snapshot %+v", state)
	}
	if _, ok := h.Snapshot("missing"); ok {
		t.Error("unknown run should have no snapshot")
	}
}

func TestHubRemoveAndClose(t *testing.T) {
	h := NewHub(Config{})
	a, _ := h.Open("a")
	b, _ := h.Open("b")
	if ids := h.IDs(); len(ids) != 2 || ids[0] != "a" {
		t.Errorf("unexpected ids %v", ids)
	}

	h.Remove("a")
	if !a.Detached() || h.Count() != 1 {
		t.Error("Remove should detach and forget the stream")
	}
	h.Close()
	if !b.Detached() || h.Count() != 0 {
		t.Error("Close should detach every stream")
	}
}

func TestHubSweepKeepsActiveRuns(t *testing.T) {
	h := NewHub(Config{Retention: time.Minute})
	done, _ := h.Open("done")
	_, _ = h.Open("active")
	done.Complete("guide", testState(pipeline.StatusCompleted))

	if n := h.sweep(time.Now()); n != 0 {
		t.Errorf("recently finished run swept: %d", n)
	}
	if n := h.sweep(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Errorf("expected one swept run, got %d", n)
	}
	if _, ok := h.Get("active"); !ok {
		t.Error("active run must stay")
	}
}

func TestComponentLifecycle(t *testing.T) {
	c := NewComponent(Config{}, "/api/guides/stream")
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	s, _ := c.Hub().Open("run")
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("unexpected health %+v", h)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if !s.Detached() {
		t.Error("Stop should detach open streams")
	}
	if c.Describe().Type != "sse" {
		t.Error("unexpected description")
	}
}
