package llm

import (
	"fmt"
	"sort"
	"sync"
)

// Dialect maps universal completion types to and from one provider's HTTP
// format. Dialects register themselves from init in their own package:
//
//	import _ "github.com/kbukum/guidegen/llm/ollama"
type Dialect interface {
	// Name returns the dialect identifier, e.g. "ollama".
	Name() string
	// ChatPath is the chat completion endpoint, e.g. "/api/chat".
	ChatPath() string
	// HealthPath is a GET endpoint that answers when the provider is up.
	// Empty means no health endpoint.
	HealthPath() string
	// BuildRequest maps req to the provider's JSON request body.
	BuildRequest(req CompletionRequest) (any, error)
	// ParseResponse maps the provider's JSON response body.
	ParseResponse(body []byte) (*CompletionResponse, error)
}

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

// RegisterDialect adds d under name, replacing any previous entry.
func RegisterDialect(name string, d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[name] = d
}

// GetDialect returns the dialect registered under name.
func GetDialect(name string) (Dialect, error) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("llm: unknown dialect %q (forgot to import driver?)", name)
	}
	return d, nil
}

// Dialects returns the registered dialect names in sorted order.
func Dialects() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
