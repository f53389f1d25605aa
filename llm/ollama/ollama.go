// Package ollama registers the "ollama" dialect for Ollama's native chat
// API.
package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/guidegen/llm"
)

// DialectName is the registered name of the dialect.
const DialectName = "ollama"

func init() {
	llm.RegisterDialect(DialectName, &Dialect{})
}

// Dialect maps completions to POST /api/chat.
type Dialect struct{}

var _ llm.Dialect = (*Dialect)(nil)

func (d *Dialect) Name() string       { return DialectName }
func (d *Dialect) ChatPath() string   { return "/api/chat" }
func (d *Dialect) HealthPath() string { return "/api/tags" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

// BuildRequest always asks for a single non-streamed response.
func (d *Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("ollama: model is required")
	}
	all := req.AllMessages()
	msgs := make([]chatMessage, len(all))
	for i, m := range all {
		msgs[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	out := chatRequest{Model: req.Model, Messages: msgs}
	if req.JSON {
		out.Format = "json"
	}
	if req.Temperature != 0 || req.MaxTokens != 0 {
		out.Options = &chatOptions{Temperature: req.Temperature, NumPredict: req.MaxTokens}
	}
	return out, nil
}

func (d *Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	return &llm.CompletionResponse{
		Content: resp.Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}
