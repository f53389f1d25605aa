package security

import (
	"crypto/tls"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuild_Disabled(t *testing.T) {
	var nilCfg *TLSConfig
	for _, cfg := range []*TLSConfig{nilCfg, {}} {
		got, err := cfg.Build()
		if err != nil || got != nil {
			t.Errorf("Build() = %v, %v; want nil, nil", got, err)
		}
	}
}

func TestBuild_Settings(t *testing.T) {
	got, err := (&TLSConfig{SkipVerify: true, ServerName: "cache.internal"}).Build()
	if err != nil {
		t.Fatal(err)
	}
	if !got.InsecureSkipVerify || got.ServerName != "cache.internal" || got.MinVersion != tls.VersionTLS12 {
		t.Errorf("unexpected config: %+v", got)
	}

	got, err = (&TLSConfig{Enabled: true}).Build()
	if err != nil || got == nil || got.RootCAs != nil {
		t.Errorf("Enabled alone should use system roots, got %+v, %v", got, err)
	}
}

func TestBuild_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pem")
	if err := os.WriteFile(bad, []byte("not a certificate"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  TLSConfig
		want string
	}{
		{"missing CA", TLSConfig{CAFile: filepath.Join(dir, "none.pem")}, "read CA file"},
		{"invalid CA", TLSConfig{CAFile: bad}, "no certificates found"},
		{"missing pair", TLSConfig{CertFile: bad, KeyFile: bad}, "load client certificate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Build()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Build() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	var nilCfg *TLSConfig
	if err := nilCfg.Validate("cache"); err != nil {
		t.Error(err)
	}
	if err := (&TLSConfig{CertFile: "c.pem", KeyFile: "k.pem"}).Validate("cache"); err != nil {
		t.Error(err)
	}
	err := (&TLSConfig{CertFile: "c.pem"}).Validate("cache")
	if err == nil || !strings.HasPrefix(err.Error(), "cache.tls:") {
		t.Errorf("expected cache.tls error, got %v", err)
	}
}

func TestBuild_TrustsCAFile(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	block := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(caFile, block, 0o600); err != nil {
		t.Fatal(err)
	}

	tlsCfg, err := (&TLSConfig{CAFile: caFile, ServerName: "example.com"}).Build()
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: tlsCfg}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request with CA file failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
