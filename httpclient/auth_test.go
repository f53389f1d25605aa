package httpclient

import (
	"net/http"
	"testing"
)

func TestAuthConfig_Apply(t *testing.T) {
	tests := []struct {
		name   string
		auth   *AuthConfig
		header string
		want   string
		query  string
	}{
		{"bearer", BearerAuth("tok"), "Authorization", "Bearer tok", ""},
		{"api key header", APIKeyHeader("k1", "X-Key"), "X-Key", "k1", ""},
		{"api key default name", &AuthConfig{Type: AuthAPIKey, Key: "k2"}, "X-API-Key", "k2", ""},
		{"api key query", APIKeyQuery("k3", "appid"), "", "", "appid=k3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "http://example.test/path", nil)
			tt.auth.apply(req)
			if tt.header != "" && req.Header.Get(tt.header) != tt.want {
				t.Errorf("header %s = %q, want %q", tt.header, req.Header.Get(tt.header), tt.want)
			}
			if tt.query != "" && req.URL.RawQuery != tt.query {
				t.Errorf("query = %q, want %q", req.URL.RawQuery, tt.query)
			}
		})
	}
}

func TestAuthConfig_NilIsNoop(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.test", nil)
	var auth *AuthConfig
	auth.apply(req)
	if len(req.Header) != 0 {
		t.Errorf("expected no headers, got %v", req.Header)
	}
}
