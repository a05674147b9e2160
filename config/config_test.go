package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "zero page limit",
			mutate: func(cfg *Config) {
				cfg.PageLimit = 0
			},
			wantErr: "page limit",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "empty products path",
			mutate: func(cfg *Config) {
				cfg.ProductsPath = " "
			},
			wantErr: "products path",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative debounce",
			mutate: func(cfg *Config) {
				cfg.SearchDebounce = -time.Millisecond
			},
			wantErr: "search debounce",
		},
		{
			name: "backoff above max",
			mutate: func(cfg *Config) {
				cfg.RetryBackoff = 5 * time.Second
				cfg.RetryBackoffMax = time.Second
			},
			wantErr: "retry backoff",
		},
		{
			name: "unknown export format",
			mutate: func(cfg *Config) {
				cfg.ExportFormat = "xml"
			},
			wantErr: "export format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.PageLimit != 12 || cfg.SearchDebounce != 500*time.Millisecond {
		t.Fatalf("unexpected defaults: limit=%d debounce=%s", cfg.PageLimit, cfg.SearchDebounce)
	}
}

func TestEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://example.test/"
	if got := cfg.Endpoint("/api/products"); got != "http://example.test/api/products" {
		t.Fatalf("endpoint=%q", got)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CAMPAIGNS_BASE_URL", "http://env.test")
	t.Setenv("CAMPAIGNS_PAGE_LIMIT", "24")
	t.Setenv("CAMPAIGNS_SEARCH_DEBOUNCE", "250ms")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.BaseURL != "http://env.test" {
		t.Fatalf("base url=%q", cfg.BaseURL)
	}
	if cfg.PageLimit != 24 {
		t.Fatalf("page limit=%d", cfg.PageLimit)
	}
	if cfg.SearchDebounce != 250*time.Millisecond {
		t.Fatalf("debounce=%s", cfg.SearchDebounce)
	}
}

func TestApplyEnvInvalidInt(t *testing.T) {
	t.Setenv("CAMPAIGNS_PAGE_LIMIT", "many")
	if err := ApplyEnv(DefaultConfig()); err == nil || !strings.Contains(err.Error(), "CAMPAIGNS_PAGE_LIMIT") {
		t.Fatalf("expected page limit error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "campaigns.yaml")
	doc := "base_url: http://yaml.test\npage_limit: 6\nsearch_debounce: 1s\nbrand_name: Acme\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := DefaultConfig()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.BaseURL != "http://yaml.test" || cfg.PageLimit != 6 || cfg.BrandName != "Acme" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SearchDebounce != time.Second {
		t.Fatalf("debounce=%s", cfg.SearchDebounce)
	}
	if cfg.HistoryLimit != 6 {
		t.Fatalf("unset fields should keep defaults, history limit=%d", cfg.HistoryLimit)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CAMPAIGNS_BRAND_NAME=FromFile\nCAMPAIGNS_USER_AGENT=file-agent\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CAMPAIGNS_BRAND_NAME", "FromEnv")
	t.Setenv("CAMPAIGNS_USER_AGENT", "")
	os.Unsetenv("CAMPAIGNS_USER_AGENT")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got, _ := EnvString("CAMPAIGNS_BRAND_NAME"); got != "FromEnv" {
		t.Fatalf("brand=%q, want FromEnv", got)
	}
	if got, _ := EnvString("CAMPAIGNS_USER_AGENT"); got != "file-agent" {
		t.Fatalf("user agent=%q, want file-agent", got)
	}
}
