package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/guidegen/logger"
)

func stage(id string, body StepFunc) Stage {
	return Stage{Definition: Definition{ID: id, Name: strings.ToUpper(id)}, Body: body}
}

func returns(v any) StepFunc {
	return func(context.Context, *Progress) (any, error) { return v, nil }
}

func fails(msg string) StepFunc {
	return func(context.Context, *Progress) (any, error) { return nil, errors.New(msg) }
}

type recorder struct {
	mu    sync.Mutex
	snaps []State
}

func (r *recorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func quiet() Option { return WithLogger(logger.Nop()) }

func TestRunSuccess(t *testing.T) {
	var rec recorder
	result, state, err := StartRun(context.Background(),
		[]Stage{stage("a", returns(1)), stage("b", returns(2)), stage("c", returns("guide"))},
		rec.record, quiet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "guide" {
		t.Errorf("expected last step result, got %v", result)
	}
	if !state.IsComplete || state.Completed() != 3 {
		t.Errorf("expected complete state, got %+v", state)
	}
	// running + completed per step
	if len(rec.snaps) != 6 {
		t.Errorf("expected 6 snapshots, got %d", len(rec.snaps))
	}
	for _, st := range state.Steps {
		if st.Progress != 100 || st.StartTime.IsZero() || st.EndTime.IsZero() {
			t.Errorf("unexpected step %+v", st)
		}
	}
}

func TestRunMiddleStepFails(t *testing.T) {
	var rec recorder
	cRan := false
	_, state, err := StartRun(context.Background(), []Stage{
		stage("A", returns("a")),
		stage("B", fails("model unavailable")),
		stage("C", func(context.Context, *Progress) (any, error) { cRan = true; return nil, nil }),
	}, rec.record, quiet())

	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.StepID != "B" {
		t.Fatalf("expected StepError for B, got %v", err)
	}
	if cRan {
		t.Error("step C must not run after B fails")
	}

	want := []Status{StatusCompleted, StatusFailed, StatusPending}
	for i, st := range state.Steps {
		if st.Status != want[i] {
			t.Errorf("step %s status = %s, want %s", st.ID, st.Status, want[i])
		}
	}
	b, _ := state.Step("B")
	if b.Error != "model unavailable" || b.Result != nil {
		t.Errorf("unexpected failed step %+v", b)
	}
	a, _ := state.Step("A")
	if a.Result != "a" {
		t.Errorf("completed step lost its result: %+v", a)
	}
	if state.IsComplete {
		t.Error("state with a pending step is not complete")
	}
	last := rec.snaps[len(rec.snaps)-1]
	if last.Steps[1].Status != StatusFailed {
		t.Error("last snapshot should report the failure")
	}
}

func TestStatusTransitionsAreMonotonic(t *testing.T) {
	var rec recorder
	body := func(_ context.Context, p *Progress) (any, error) {
		for _, pct := range []int{10, 5, 40, -3, 40, 250} {
			p.Report(pct)
		}
		return nil, nil
	}
	_, _, _ = StartRun(context.Background(), []Stage{stage("a", body), stage("b", fails("x"))}, rec.record, quiet())

	rank := map[Status]int{StatusPending: 0, StatusRunning: 1, StatusCompleted: 2, StatusFailed: 2}
	prev := make([]Step, 2)
	for i := range prev {
		prev[i].Status = StatusPending
	}
	for _, snap := range rec.snaps {
		for i, st := range snap.Steps {
			if rank[st.Status] < rank[prev[i].Status] {
				t.Fatalf("step %s regressed from %s to %s", st.ID, prev[i].Status, st.Status)
			}
			if prev[i].Status.Terminal() && st.Status != prev[i].Status {
				t.Fatalf("terminal step %s changed status", st.ID)
			}
			if st.Progress < prev[i].Progress {
				t.Fatalf("step %s progress decreased", st.ID)
			}
			prev[i] = st
		}
	}
}

func TestProgressReportsClampAndEmit(t *testing.T) {
	var rec recorder
	var seen []int
	body := func(_ context.Context, p *Progress) (any, error) {
		p.Report(10)
		p.Report(5)   // ignored
		p.Report(250) // clamped
		p.Fraction(1, 0)
		return nil, nil
	}
	_, _, err := StartRun(context.Background(), []Stage{stage("a", body)}, func(s State) {
		rec.record(s)
		seen = append(seen, s.Steps[0].Progress)
	}, quiet())
	if err != nil {
		t.Fatal(err)
	}
	// running(0), 10, 100 (clamped), completed(100)
	want := []int{0, 10, 100, 100}
	if len(seen) != len(want) {
		t.Fatalf("progress sequence = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("progress sequence = %v, want %v", seen, want)
		}
	}
}

func TestIsCompleteIffAllTerminal(t *testing.T) {
	var rec recorder
	_, _, _ = StartRun(context.Background(), []Stage{stage("a", returns(nil)), stage("b", returns(nil))}, rec.record, quiet())

	for _, snap := range rec.snaps {
		all := true
		for _, st := range snap.Steps {
			all = all && st.Status.Terminal()
		}
		if snap.IsComplete != all {
			t.Fatalf("isComplete=%v with steps %+v", snap.IsComplete, snap.Steps)
		}
	}
	if !rec.snaps[len(rec.snaps)-1].IsComplete {
		t.Error("final snapshot should be complete")
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	o, err := New([]Stage{stage("a", returns(1)), stage("b", returns(2))}, quiet())
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = o.Run(context.Background(), func(s State) {
		s.Steps[0].Status = StatusFailed
		s.Steps[0].Error = "tampered"
	})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := o.State().Step("a")
	if a.Status != StatusCompleted || a.Error != "" {
		t.Errorf("callback mutated orchestrator state: %+v", a)
	}
}

func TestRunOnlyOnce(t *testing.T) {
	o, _ := New([]Stage{stage("a", returns(1))}, quiet())
	if _, _, err := o.Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := o.Run(context.Background(), nil); !errors.Is(err, ErrAlreadyRun) {
		t.Errorf("expected ErrAlreadyRun, got %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		stages []Stage
		want   string
	}{
		{"empty", nil, "no steps"},
		{"missing id", []Stage{stage("", returns(1))}, "no id"},
		{"duplicate", []Stage{stage("a", returns(1)), stage("a", returns(2))}, "duplicate"},
		{"nil body", []Stage{{Definition: Definition{ID: "a"}}}, "no body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.stages)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCancellationBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var bodyCtxErr error
	_, state, err := StartRun(ctx, []Stage{
		stage("a", func(bctx context.Context, _ *Progress) (any, error) {
			cancel()
			bodyCtxErr = bctx.Err()
			return "done", nil
		}),
		stage("b", returns(2)),
	}, nil, quiet())

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if bodyCtxErr != nil {
		t.Error("in-flight step should not observe caller cancellation")
	}
	if state.Steps[0].Status != StatusCompleted || state.Steps[1].Status != StatusPending {
		t.Errorf("unexpected state %+v", state.Steps)
	}
}

func TestStepTimeout(t *testing.T) {
	_, state, err := StartRun(context.Background(), []Stage{
		stage("slow", func(ctx context.Context, _ *Progress) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	}, nil, quiet(), WithStepTimeout(10*time.Millisecond))

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if state.Steps[0].Status != StatusFailed {
		t.Errorf("expected failed step, got %s", state.Steps[0].Status)
	}
}

func TestPanicBecomesFailure(t *testing.T) {
	_, state, err := StartRun(context.Background(), []Stage{
		stage("boom", func(context.Context, *Progress) (any, error) { panic("nil map") }),
	}, nil, quiet())
	if err == nil || !strings.Contains(err.Error(), "panic: nil map") {
		t.Fatalf("unexpected error %v", err)
	}
	if state.Steps[0].Status != StatusFailed {
		t.Error("panicking step should be failed")
	}
}

func TestConcurrentProgressReports(t *testing.T) {
	var rec recorder
	body := func(_ context.Context, p *Progress) (any, error) {
		var wg sync.WaitGroup
		for i := 1; i <= 50; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				p.Fraction(n, 50)
			}(i)
		}
		wg.Wait()
		return nil, nil
	}
	if _, _, err := StartRun(context.Background(), []Stage{stage("batch", body)}, rec.record, quiet()); err != nil {
		t.Fatal(err)
	}
	prev := 0
	for _, s := range rec.snaps {
		if s.Steps[0].Progress < prev {
			t.Fatal("snapshots out of mutation order")
		}
		prev = s.Steps[0].Progress
	}
}

func TestClockOption(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	_, state, _ := StartRun(context.Background(), []Stage{stage("a", returns(1))}, nil,
		quiet(), WithClock(func() time.Time { return fixed }))
	if !state.Steps[0].StartTime.Equal(fixed) || !state.Steps[0].EndTime.Equal(fixed) {
		t.Errorf("clock not applied: %+v", state.Steps[0])
	}
}
