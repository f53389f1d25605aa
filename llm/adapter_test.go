package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockDialect struct {
	healthPath string
	buildErr   error
}

func (d *mockDialect) Name() string       { return "mock" }
func (d *mockDialect) ChatPath() string   { return "/chat" }
func (d *mockDialect) HealthPath() string { return d.healthPath }

func (d *mockDialect) BuildRequest(req CompletionRequest) (any, error) {
	if d.buildErr != nil {
		return nil, d.buildErr
	}
	return map[string]any{
		"model":       req.Model,
		"messages":    req.AllMessages(),
		"temperature": req.Temperature,
		"json":        req.JSON,
	}, nil
}

func (d *mockDialect) ParseResponse(body []byte) (*CompletionResponse, error) {
	var raw struct {
		Content string `json:"content"`
		Model   string `json:"model"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return &CompletionResponse{Content: raw.Content, Model: raw.Model, Usage: Usage{TotalTokens: 10}}, nil
}

func newTestAdapter(t *testing.T, d Dialect, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	a, err := NewWithDialect(d, Config{BaseURL: srv.URL, Model: "test-model", Timeout: time.Second, APIKey: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestAdapterExecute(t *testing.T) {
	var got map[string]any
	a := newTestAdapter(t, &mockDialect{}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"content":"Hello traveler","model":"test-model"}`))
	})

	resp, err := a.Execute(context.Background(), CompletionRequest{
		SystemPrompt: "You write travel guides.",
		Messages:     []Message{{Role: "user", Content: "Lisbon"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "Hello traveler" || resp.Usage.TotalTokens != 10 {
		t.Errorf("unexpected response %+v", resp)
	}
	if got["model"] != "test-model" || got["temperature"] != 0.7 {
		t.Errorf("adapter defaults not applied: %v", got)
	}
	if msgs, _ := got["messages"].([]any); len(msgs) != 2 {
		t.Errorf("expected system and user messages, got %v", got["messages"])
	}
}

func TestAdapterExecuteErrors(t *testing.T) {
	a := newTestAdapter(t, &mockDialect{buildErr: errors.New("bad request")}, func(w http.ResponseWriter, _ *http.Request) {})
	if _, err := a.Execute(context.Background(), CompletionRequest{}); err == nil {
		t.Error("expected build error")
	}

	b := newTestAdapter(t, &mockDialect{}, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	if _, err := b.Execute(context.Background(), CompletionRequest{}); err == nil {
		t.Error("expected HTTP error")
	}
}

func TestAdapterIsAvailable(t *testing.T) {
	up := newTestAdapter(t, &mockDialect{healthPath: "/health"}, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	if !up.IsAvailable(context.Background()) {
		t.Error("expected available")
	}
	down := newTestAdapter(t, &mockDialect{healthPath: "/health"}, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if down.IsAvailable(context.Background()) {
		t.Error("expected unavailable")
	}
	noHealth := newTestAdapter(t, &mockDialect{}, func(http.ResponseWriter, *http.Request) {})
	if !noHealth.IsAvailable(context.Background()) {
		t.Error("dialect without health path is assumed available")
	}
}

func TestCompleteStructured(t *testing.T) {
	var askedJSON bool
	a := newTestAdapter(t, &mockDialect{}, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		askedJSON, _ = body["json"].(bool)
		_ = json.NewEncoder(w).Encode(map[string]string{"content": "```json\n{\"title\":\"Lisbon in 3 days\"}\n```"})
	})

	var out struct {
		Title string `json:"title"`
	}
	if err := CompleteStructured(context.Background(), a, "system", "user", &out); err != nil {
		t.Fatal(err)
	}
	if out.Title != "Lisbon in 3 days" || !askedJSON {
		t.Errorf("unexpected structured result %+v (json=%v)", out, askedJSON)
	}
}

func TestComplete(t *testing.T) {
	a := newTestAdapter(t, &mockDialect{}, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":"plain text"}`))
	})
	text, err := Complete(context.Background(), a, "s", "u")
	if err != nil || text != "plain text" {
		t.Errorf("unexpected (%q, %v)", text, err)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{`Sure! Here it is: {"a":1} Enjoy.`, `{"a":1}`},
		{`no json`, `no json`},
	}
	for _, tt := range tests {
		if got := extractJSON(tt.in); got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewWithDialectRequiresDialect(t *testing.T) {
	if _, err := NewWithDialect(nil, Config{}); !errors.Is(err, ErrNoDialect) {
		t.Errorf("expected ErrNoDialect, got %v", err)
	}
}
