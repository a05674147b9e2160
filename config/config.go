package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds client configuration.
type Config struct {
	BaseURL          string        `yaml:"base_url"`
	ProductsPath     string        `yaml:"products_path"`
	GeneratePath     string        `yaml:"generate_path"`
	HistoryPath      string        `yaml:"history_path"`
	PageLimit        int           `yaml:"page_limit"`
	InitialPage      int           `yaml:"initial_page"`
	HistoryLimit     int           `yaml:"history_limit"`
	SearchDebounce   time.Duration `yaml:"search_debounce"`
	Timeout          time.Duration `yaml:"timeout"`
	GenerateTimeout  time.Duration `yaml:"generate_timeout"`
	MaxRetries       int           `yaml:"max_retries"`
	RetryBackoff     time.Duration `yaml:"retry_backoff"`
	RetryBackoffMax  time.Duration `yaml:"retry_backoff_max"`
	UserAgent        string        `yaml:"user_agent"`
	BrandName        string        `yaml:"brand_name"`
	HistoryCacheSize int           `yaml:"history_cache_size"`
	HistoryCacheTTL  time.Duration `yaml:"history_cache_ttl"`
	ExportFile       string        `yaml:"export_file"`
	ExportFormat     string        `yaml:"export_format"` // csv, json, or dual
	BatchSize        int           `yaml:"batch_size"`
	PipelineBuffer   int           `yaml:"pipeline_buffer"`
	DedupeMaxSize    int           `yaml:"dedupe_max_size"`
	Verbose          bool          `yaml:"verbose"`
	MetricsAddr      string        `yaml:"metrics_addr"`
}

// DefaultConfig returns defaults matching the hosted campaign API.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          "https://homeless-chelsae-personal-01-a2adb1b6.koyeb.app",
		ProductsPath:     "/api/products",
		GeneratePath:     "/api/branding/generate",
		HistoryPath:      "/api/branding/list",
		PageLimit:        12,
		InitialPage:      1,
		HistoryLimit:     6,
		SearchDebounce:   500 * time.Millisecond,
		Timeout:          15 * time.Second,
		GenerateTimeout:  2 * time.Minute,
		MaxRetries:       1,
		RetryBackoff:     200 * time.Millisecond,
		RetryBackoffMax:  2 * time.Second,
		UserAgent:        "go-campaign-studio/1.0",
		BrandName:        "Britannia",
		HistoryCacheSize: 32,
		HistoryCacheTTL:  30 * time.Second,
		ExportFile:       "output/products.csv",
		ExportFormat:     "csv",
		BatchSize:        64,
		PipelineBuffer:   512,
		DedupeMaxSize:    100000,
		Verbose:          false,
		MetricsAddr:      "",
	}
}

// Endpoint joins the base URL with an API path.
func (c *Config) Endpoint(path string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	for name, path := range map[string]string{
		"products path": c.ProductsPath,
		"generate path": c.GeneratePath,
		"history path":  c.HistoryPath,
	} {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
	}

	if c.PageLimit <= 0 {
		return fmt.Errorf("page limit must be positive")
	}
	if c.InitialPage <= 0 {
		return fmt.Errorf("initial page must be positive")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive")
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search debounce cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.GenerateTimeout <= 0 {
		return fmt.Errorf("generate timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.HistoryCacheSize <= 0 {
		return fmt.Errorf("history cache size must be positive")
	}
	if c.HistoryCacheTTL < 0 {
		return fmt.Errorf("history cache ttl cannot be negative")
	}
	if c.ExportFile == "" {
		return fmt.Errorf("export file cannot be empty")
	}
	if c.ExportFormat != "csv" && c.ExportFormat != "json" && c.ExportFormat != "dual" {
		return fmt.Errorf("export format must be csv, json, or dual")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.PipelineBuffer <= 0 {
		return fmt.Errorf("pipeline buffer must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}

	return nil
}
