package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/observability"
)

// StepFunc is the body of a step. Its result becomes the step result and,
// for the last step, the result of the run.
type StepFunc func(ctx context.Context, p *Progress) (any, error)

// Stage pairs a step definition with its body.
type Stage struct {
	Definition
	Body StepFunc
}

// SnapshotFunc receives a copy of the state after every mutation. It runs
// synchronously on the mutating goroutine and must not report progress.
type SnapshotFunc func(State)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStepTimeout bounds each step body. Zero means no bound.
func WithStepTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.stepTimeout = d }
}

// WithClock overrides the time source for step timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithMetrics overrides the metrics instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger overrides the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// Orchestrator executes stages strictly in order for one run.
//
// Cancellation is checked between steps only: an in-flight step body runs
// with a context detached from the caller's cancellation and finishes (or
// hits the step timeout) before the run notices. Later steps then stay
// pending and Run returns the context error.
type Orchestrator struct {
	stages      []Stage
	stepTimeout time.Duration
	clock       func() time.Time
	metrics     *observability.Metrics
	log         *logger.Logger

	mu         sync.Mutex
	state      State
	onSnapshot SnapshotFunc
	used       bool
}

// New validates stages and builds an orchestrator for a single run.
func New(stages []Stage, opts ...Option) (*Orchestrator, error) {
	if len(stages) == 0 {
		return nil, ErrNoSteps
	}
	seen := make(map[string]bool, len(stages))
	defs := make([]Definition, len(stages))
	for i, s := range stages {
		if s.ID == "" {
			return nil, fmt.Errorf("pipeline: step %d has no id", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("pipeline: duplicate step id %q", s.ID)
		}
		if s.Body == nil {
			return nil, fmt.Errorf("pipeline: step %q has no body", s.ID)
		}
		seen[s.ID] = true
		defs[i] = s.Definition
	}

	o := &Orchestrator{
		stages: stages,
		clock:  time.Now,
		state:  newState(defs),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = observability.Default()
	}
	if o.log == nil {
		o.log = logger.WithComponent("pipeline")
	}
	return o, nil
}

// StartRun builds a fresh orchestrator for stages and runs it.
func StartRun(ctx context.Context, stages []Stage, onSnapshot SnapshotFunc, opts ...Option) (any, State, error) {
	o, err := New(stages, opts...)
	if err != nil {
		return nil, State{}, err
	}
	return o.Run(ctx, onSnapshot)
}

// State returns a copy of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// Run executes every stage in order. It returns the last step's result on
// success. On the first failing step it returns a *StepError and leaves
// later steps pending. The final state is returned in both cases.
func (o *Orchestrator) Run(ctx context.Context, onSnapshot SnapshotFunc) (any, State, error) {
	o.mu.Lock()
	if o.used {
		o.mu.Unlock()
		return nil, State{}, ErrAlreadyRun
	}
	o.used = true
	o.onSnapshot = onSnapshot
	o.mu.Unlock()

	log := o.log.WithContext(ctx)
	ctx, span := observability.StartSpan(ctx, "pipeline.run",
		attribute.String(observability.AttrRunID, logger.RunIDFromContext(ctx)),
		attribute.Int("steps", len(o.stages)))

	var result any
	for i, stage := range o.stages {
		if err := ctx.Err(); err != nil {
			log.Warn("Run canceled between steps", logger.Fields(logger.FieldStepID, stage.ID, logger.FieldError, err.Error()))
			observability.EndSpan(span, err)
			return nil, o.State(), err
		}

		out, err := o.runStep(ctx, i, stage, log)
		if err != nil {
			observability.EndSpan(span, err)
			return nil, o.State(), &StepError{StepID: stage.ID, Err: err}
		}
		result = out
	}

	observability.EndSpan(span, nil)
	return result, o.State(), nil
}

func (o *Orchestrator) runStep(ctx context.Context, i int, stage Stage, log *logger.Logger) (any, error) {
	start := o.clock()
	o.mutate(i, func(st *Step) {
		st.Status = StatusRunning
		st.StartTime = start
	})
	log.Debug("Step started", logger.Fields(logger.FieldStepID, stage.ID))

	stepCtx, span := observability.StartSpan(context.WithoutCancel(ctx), "pipeline.step",
		attribute.String(observability.AttrStepID, stage.ID))
	if o.stepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(stepCtx, o.stepTimeout)
		defer cancel()
	}

	out, err := o.invoke(stepCtx, i, stage.Body)
	end := o.clock()
	elapsed := end.Sub(start)

	if err != nil {
		o.mutate(i, func(st *Step) {
			st.Status = StatusFailed
			st.Error = err.Error()
			st.EndTime = end
		})
		o.metrics.RecordStep(ctx, stage.ID, string(StatusFailed), elapsed)
		span.SetAttributes(attribute.String(observability.AttrStatus, string(StatusFailed)))
		observability.EndSpan(span, err)

		fields := logger.DurationFields(stage.ID, elapsed)
		fields[logger.FieldStepID] = stage.ID
		fields[logger.FieldError] = err.Error()
		log.Error("Step failed", fields)
		return nil, err
	}

	o.mutate(i, func(st *Step) {
		st.Status = StatusCompleted
		st.Progress = 100
		st.Result = out
		st.EndTime = end
	})
	o.metrics.RecordStep(ctx, stage.ID, string(StatusCompleted), elapsed)
	span.SetAttributes(attribute.String(observability.AttrStatus, string(StatusCompleted)))
	observability.EndSpan(span, nil)

	fields := logger.DurationFields(stage.ID, elapsed)
	fields[logger.FieldStepID] = stage.ID
	log.Info("Step completed", fields)
	return out, nil
}

// invoke runs body, turning a panic into a step failure.
func (o *Orchestrator) invoke(ctx context.Context, i int, body StepFunc) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return body(ctx, &Progress{o: o, index: i})
}

func (o *Orchestrator) report(i, pct int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := &o.state.Steps[i]
	if st.Status != StatusRunning || pct <= st.Progress {
		return
	}
	st.Progress = pct
	o.emitLocked()
}

// mutate applies fn to step i and emits a snapshot while holding the lock
// so emissions follow mutation order.
func (o *Orchestrator) mutate(i int, fn func(*Step)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.state.Steps[i])
	o.state.refresh()
	o.emitLocked()
}

func (o *Orchestrator) emitLocked() {
	if o.onSnapshot != nil {
		o.onSnapshot(o.state.Clone())
	}
}
