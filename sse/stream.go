package sse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/kbukum/guidegen/errors"
	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/observability"
	"github.com/kbukum/guidegen/pipeline"
)

// Publisher receives the events of one run.
type Publisher interface {
	PublishProgress(state pipeline.State)
	Complete(result any, state pipeline.State)
	Fail(err error, state pipeline.State)
}

var _ Publisher = (*Stream)(nil)

// Stream carries the frames of one run to one consumer.
//
// Publishing never blocks: progress frames go into a bounded buffer and are
// dropped when it is full. The terminal frame has its own slot and is never
// dropped while the consumer is attached. After Detach every publish only
// updates the latest snapshot.
type Stream struct {
	id        string
	keepAlive time.Duration
	metrics   *observability.Metrics

	events   chan []byte
	terminal chan []byte
	detached chan struct{}

	mu         sync.Mutex
	isDetached bool
	finished   bool
	finishedAt time.Time
	latest     pipeline.State
	hasLatest  bool
	dropped    int
}

// NewStream creates a stream for run id.
func NewStream(id string, cfg Config) *Stream {
	cfg.ApplyDefaults()
	return &Stream{
		id:        id,
		keepAlive: cfg.KeepAlive,
		metrics:   observability.Default(),
		events:    make(chan []byte, cfg.BufferSize),
		terminal:  make(chan []byte, 1),
		detached:  make(chan struct{}),
	}
}

// ID returns the run ID.
func (s *Stream) ID() string { return s.id }

// PublishProgress queues a progress frame. Its signature matches
// pipeline.SnapshotFunc.
func (s *Stream) PublishProgress(state pipeline.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.latest, s.hasLatest = state, true
	if s.isDetached {
		return
	}

	data, err := encode(Frame{Type: FrameProgress, Data: state})
	if err != nil {
		logger.Error("[SSE] Encoding progress frame failed", logger.Fields(logger.FieldRunID, s.id, logger.FieldError, err.Error()))
		return
	}
	select {
	case s.events <- data:
	default:
		s.dropped++
		s.metrics.RecordDroppedFrame(context.Background())
		logger.Warn("[SSE] Stream buffer full, dropping progress frame", logger.Fields(
			logger.FieldRunID, s.id,
			"dropped", s.dropped,
		))
	}
}

// Complete ends the stream with a complete frame.
func (s *Stream) Complete(result any, state pipeline.State) {
	s.finish(Frame{Type: FrameComplete, Data: CompletePayload{TravelGuide: result, Progress: state}}, state)
}

// Fail ends the stream with an error frame. An AppError contributes its
// message, code and failing step.
func (s *Stream) Fail(err error, state pipeline.State) {
	payload := ErrorPayload{Error: "unknown error", Progress: state}
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		payload.Error, payload.Code = appErr.Message, string(appErr.Code)
		if step, ok := appErr.Details["step"].(string); ok {
			payload.Step = step
		}
	case err != nil:
		payload.Error = err.Error()
	}
	s.finish(Frame{Type: FrameError, Data: payload}, state)
}

func (s *Stream) finish(f Frame, state pipeline.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.finished = true
	s.finishedAt = time.Now()
	s.latest, s.hasLatest = state, true
	if s.isDetached {
		return
	}

	data, err := encode(f)
	if err != nil {
		// The consumer still needs a terminal frame.
		data, _ = encode(Frame{Type: FrameError, Data: ErrorPayload{
			Error:    fmt.Sprintf("encoding %s frame: %v", f.Type, err),
			Progress: state,
		}})
	}
	s.terminal <- data
}

// Detach stops frame delivery. It is safe to call more than once.
func (s *Stream) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isDetached {
		return
	}
	s.isDetached = true
	close(s.detached)
}

// Detached reports whether the consumer has gone.
func (s *Stream) Detached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDetached
}

// Finished reports whether a terminal frame was published.
func (s *Stream) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Latest returns the most recent snapshot.
func (s *Stream) Latest() (pipeline.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

// Dropped returns the number of progress frames dropped so far.
func (s *Stream) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Stream) finishedBefore(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished && s.finishedAt.Before(t)
}

// Serve writes frames to w until the terminal frame is written, ctx is
// done, or the stream is detached. A canceled ctx detaches the stream.
func (s *Stream) Serve(ctx context.Context, w http.ResponseWriter) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return fmt.Errorf("sse: response writer does not support flushing")
	}

	// SSE connections outlive the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug("[SSE] Could not disable write deadline", logger.Fields(logger.FieldRunID, s.id, logger.FieldError, err.Error()))
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	write := func(data []byte) error {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			s.Detach()
			logger.Debug("[SSE] Consumer disconnected", logger.Fields(logger.FieldRunID, s.id, "reason", ctx.Err().Error()))
			return ctx.Err()

		case <-s.detached:
			return nil

		case data := <-s.events:
			if err := write(data); err != nil {
				s.Detach()
				return err
			}

		case data := <-s.terminal:
			// Progress frames queued before the terminal frame go first.
			for drained := false; !drained; {
				select {
				case ev := <-s.events:
					if err := write(ev); err != nil {
						s.Detach()
						return err
					}
				default:
					drained = true
				}
			}
			return write(data)

		case <-keepAlive.C:
			if _, err := fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix()); err != nil {
				s.Detach()
				return err
			}
			flusher.Flush()
		}
	}
}
