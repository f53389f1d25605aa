package sse

import (
	"encoding/json"

	"github.com/kbukum/guidegen/pipeline"
)

// Frame types.
const (
	FrameProgress = "progress"
	FrameComplete = "complete"
	FrameError    = "error"
)

// Frame is one event on a run stream.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// CompletePayload is the data of a complete frame.
type CompletePayload struct {
	TravelGuide any            `json:"travelGuide"`
	Progress    pipeline.State `json:"progress"`
}

// ErrorPayload is the data of an error frame.
type ErrorPayload struct {
	Error    string         `json:"error"`
	Code     string         `json:"code,omitempty"`
	Step     string         `json:"step,omitempty"`
	Progress pipeline.State `json:"progress"`
}

// IsTerminal reports whether f ends the stream.
func (f Frame) IsTerminal() bool {
	return f.Type == FrameComplete || f.Type == FrameError
}

func encode(f Frame) ([]byte, error) {
	return json.Marshal(f)
}
