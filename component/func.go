package component

import "context"

// Func adapts plain functions to Component. Nil hooks are no-ops and a nil
// HealthFn reports healthy.
type Func struct {
	ComponentName string
	StartFn       func(ctx context.Context) error
	StopFn        func(ctx context.Context) error
	HealthFn      func(ctx context.Context) Health
	Desc          Description
}

func (f *Func) Name() string { return f.ComponentName }

func (f *Func) Start(ctx context.Context) error {
	if f.StartFn == nil {
		return nil
	}
	return f.StartFn(ctx)
}

func (f *Func) Stop(ctx context.Context) error {
	if f.StopFn == nil {
		return nil
	}
	return f.StopFn(ctx)
}

func (f *Func) Health(ctx context.Context) Health {
	if f.HealthFn == nil {
		return Health{Name: f.ComponentName, Status: StatusHealthy}
	}
	return f.HealthFn(ctx)
}

func (f *Func) Describe() Description { return f.Desc }
