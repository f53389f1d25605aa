package guide

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/kbukum/guidegen/component"
	apperrors "github.com/kbukum/guidegen/errors"
	"github.com/kbukum/guidegen/geocode"
	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/observability"
	"github.com/kbukum/guidegen/pipeline"
	"github.com/kbukum/guidegen/sse"
	"github.com/kbukum/guidegen/weather"
)

var (
	// ErrBusy is returned when the concurrent run limit is reached.
	ErrBusy = errors.New("too many generation runs in flight")
	// ErrStopped is returned once the service is shutting down.
	ErrStopped = errors.New("guide service is stopped")
)

// Dependencies are the collaborators of a Service.
type Dependencies struct {
	Resolver  *geocode.Resolver
	Advisor   *weather.Advisor
	Generator Generator
	Repo      Repository
	Hub       *sse.Hub
	Metrics   *observability.Metrics
	Log       *logger.Logger
}

// Service runs guide generations.
type Service struct {
	cfg       Config
	resolver  *geocode.Resolver
	advisor   *weather.Advisor
	generator Generator
	repo      Repository
	hub       *sse.Hub
	metrics   *observability.Metrics
	log       *logger.Logger
	sem       *semaphore.Weighted

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

var _ component.Component = (*Service)(nil)

// NewService builds a service. Resolver, Advisor, Generator, Repo and Hub
// are required.
func NewService(cfg Config, deps Dependencies) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Resolver == nil:
		return nil, errors.New("guide: resolver is required")
	case deps.Advisor == nil:
		return nil, errors.New("guide: advisor is required")
	case deps.Generator == nil:
		return nil, errors.New("guide: generator is required")
	case deps.Repo == nil:
		return nil, errors.New("guide: repository is required")
	case deps.Hub == nil:
		return nil, errors.New("guide: stream hub is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.Default()
	}
	if deps.Log == nil {
		deps.Log = logger.WithComponent("guide")
	}
	return &Service{
		cfg:       cfg,
		resolver:  deps.Resolver,
		advisor:   deps.Advisor,
		generator: deps.Generator,
		repo:      deps.Repo,
		hub:       deps.Hub,
		metrics:   deps.Metrics,
		log:       deps.Log,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrentRuns)),
	}, nil
}

// Repository returns the guide repository.
func (s *Service) Repository() Repository { return s.repo }

// Generate opens a stream for a new run and executes the run in the
// background. Cancelling ctx stops the run at the next step boundary.
func (s *Service) Generate(ctx context.Context, req Request) (*sse.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrStopped
	}
	if !s.sem.TryAcquire(1) {
		return nil, ErrBusy
	}

	runID := uuid.NewString()
	stream, err := s.hub.Open(runID)
	if err != nil {
		s.sem.Release(1)
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sem.Release(1)
		_, _, _ = s.Run(ctx, runID, req, stream)
	}()
	return stream, nil
}

// Run executes one generation synchronously, publishing every snapshot and
// the terminal outcome to pub.
func (s *Service) Run(ctx context.Context, runID string, req Request, pub sse.Publisher) (*TravelGuide, pipeline.State, error) {
	ctx = logger.ContextWithRunID(ctx, runID)
	log := s.log.WithContext(ctx)
	r := &run{svc: s, id: runID, req: req}

	log.Info("Generation started", logger.Fields("prompt_len", len(req.Prompt)))
	_, state, err := pipeline.StartRun(ctx, r.stages(), pub.PublishProgress,
		pipeline.WithStepTimeout(s.cfg.StepTimeout),
		pipeline.WithMetrics(s.metrics),
		pipeline.WithLogger(s.log),
	)
	if err != nil {
		log.Warn("Generation failed", logger.Fields(logger.FieldError, err.Error()))
		pub.Fail(failure(err), state)
		return nil, state, err
	}

	log.Info("Generation completed", logger.Fields("guide_id", r.guide.ID, "destination", r.guide.Destination))
	pub.Complete(r.guide, state)
	return r.guide, state, nil
}

// failure turns a run error into the message shown to the consumer.
func failure(err error) error {
	var stepErr *pipeline.StepError
	if errors.As(err, &stepErr) {
		return apperrors.StepFailed(stepErr.StepID, stepErr.Err)
	}
	return err
}

func (s *Service) Name() string { return "guides" }

func (s *Service) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = false
	return nil
}

// Stop refuses new runs and waits for in-flight runs until ctx is done.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("guide service: runs still in flight: %w", ctx.Err())
	}
}

func (s *Service) Health(_ context.Context) component.Health {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "stopped"}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy, Message: "generator=" + s.generator.Name()}
}

func (s *Service) Describe() component.Description {
	return component.Description{
		Name:    "Guide generation",
		Type:    "pipeline",
		Details: fmt.Sprintf("generator=%s max_runs=%d step_timeout=%s", s.generator.Name(), s.cfg.MaxConcurrentRuns, s.cfg.StepTimeout),
	}
}
