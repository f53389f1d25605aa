package ollama

import (
	"testing"

	"github.com/kbukum/guidegen/llm"
)

func TestRegistered(t *testing.T) {
	if _, err := llm.GetDialect(DialectName); err != nil {
		t.Fatal(err)
	}
}

func TestBuildRequest(t *testing.T) {
	d := &Dialect{}
	body, err := d.BuildRequest(llm.CompletionRequest{
		Model:        "llama3",
		SystemPrompt: "sys",
		Messages:     []llm.Message{{Role: "user", Content: "hi"}},
		Temperature:  0.4,
		JSON:         true,
	})
	if err != nil {
		t.Fatal(err)
	}
	req := body.(chatRequest)
	if req.Stream || req.Format != "json" || len(req.Messages) != 2 || req.Messages[0].Role != "system" {
		t.Errorf("unexpected request %+v", req)
	}
	if req.Options == nil || req.Options.Temperature != 0.4 {
		t.Errorf("unexpected options %+v", req.Options)
	}
	if _, err := d.BuildRequest(llm.CompletionRequest{}); err == nil {
		t.Error("expected model error")
	}
}

func TestParseResponse(t *testing.T) {
	resp, err := (&Dialect{}).ParseResponse([]byte(`{"model":"llama3","message":{"role":"assistant","content":"ok"},"done":true,"prompt_eval_count":3,"eval_count":4}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "ok" || resp.Usage.TotalTokens != 7 {
		t.Errorf("unexpected response %+v", resp)
	}
	if _, err := (&Dialect{}).ParseResponse([]byte(`not json`)); err == nil {
		t.Error("expected decode error")
	}
}
