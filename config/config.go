package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Browser   BrowserConfig   `yaml:"browser"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Engine    EngineConfig    `yaml:"engine"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Batch     BatchConfig     `yaml:"batch"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"` // default: "0.0.0.0"
	Port int    `yaml:"port"` // default: 8080
	Mode string `yaml:"mode"` // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Enabled launches a headless browser at startup. Without it only the
	// http fetch method is available.
	Enabled bool `yaml:"enabled"` // default: true

	Headless bool `yaml:"headless"` // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int `yaml:"max_pages"` // default: 10

	// MaxPageUses retires a tab after this many navigations.
	MaxPageUses int `yaml:"max_page_uses"` // default: 50

	DefaultProxy string `yaml:"proxy"`

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool `yaml:"no_sandbox"`

	BrowserBin string `yaml:"browser_bin"`
}

// ScraperConfig controls fetch behavior shared by all engines.
type ScraperConfig struct {
	DefaultTimeout time.Duration `yaml:"default_timeout"` // default: 30s
	MaxTimeout     time.Duration `yaml:"max_timeout"`     // default: 120s

	// BlockedResourceTypes lists browser resource types to block.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string `yaml:"blocked_resources"`

	// BlockAds drops requests to known ad and tracking hosts in the browser.
	BlockAds bool `yaml:"block_ads"` // default: true
}

// EngineConfig controls the auto-mode racing dispatcher.
type EngineConfig struct {
	EnableMultiEngine bool `yaml:"multi_engine"` // default: true

	// EscalationDelays is the staged start delay for each engine tier.
	EscalationDelays []time.Duration `yaml:"escalation_delays"` // default: [0s, 2s, 5s]

	// HTTPTimeout is the deadline for the static HTTP engine in a race.
	HTTPTimeout time.Duration `yaml:"http_timeout"` // default: 10s

	// DomainMemoryTTL is how long a host remembers its winning engine.
	DomainMemoryTTL time.Duration `yaml:"domain_memory_ttl"` // default: 24h
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool     `yaml:"enabled"` // default: true
	APIKeys []string `yaml:"api_keys"`
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"rps"`   // default: 5
	Burst             int     `yaml:"burst"` // default: 10
}

// CacheConfig controls the structured document cache.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries"` // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "text"; default: "json"
}

// AnalysisConfig selects the summarizer and classifier.
type AnalysisConfig struct {
	// Provider is "lead" (extractive, no model), "openai" or "gemini".
	Provider string `yaml:"provider"` // default: "lead"

	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`

	// Classify enables sentiment classification with the provider's model.
	Classify bool `yaml:"classify"` // default: true

	SummaryInputRunes  int `yaml:"summary_input_runes"`  // default: 1000
	ClassifyInputRunes int `yaml:"classify_input_runes"` // default: 512

	// LeadSentences and LeadWords bound the extractive "lead" summary.
	LeadSentences int `yaml:"lead_sentences"` // default: 3
	LeadWords     int `yaml:"lead_words"`     // default: 60

	// Timeout bounds each summarizer or classifier call.
	Timeout time.Duration `yaml:"timeout"` // default: 30s
}

// BatchConfig controls batch scrape jobs.
type BatchConfig struct {
	MaxConcurrency int           `yaml:"max_concurrency"` // default: 5
	JobTTL         time.Duration `yaml:"job_ttl"`         // default: 1h
	WebhookTimeout time.Duration `yaml:"webhook_timeout"` // default: 10s
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080, Mode: "release"},
		Browser: BrowserConfig{
			Enabled:     true,
			Headless:    true,
			MaxPages:    10,
			MaxPageUses: 50,
		},
		Scraper: ScraperConfig{
			DefaultTimeout:       30 * time.Second,
			MaxTimeout:           120 * time.Second,
			BlockedResourceTypes: []string{"Image", "Stylesheet", "Font", "Media"},
			BlockAds:             true,
		},
		Engine: EngineConfig{
			EnableMultiEngine: true,
			EscalationDelays:  []time.Duration{0, 2 * time.Second, 5 * time.Second},
			HTTPTimeout:       10 * time.Second,
			DomainMemoryTTL:   24 * time.Hour,
		},
		Auth:      AuthConfig{Enabled: true},
		RateLimit: RateLimitConfig{RequestsPerSecond: 5, Burst: 10},
		Cache:     CacheConfig{MaxEntries: 1000},
		Log:       LogConfig{Level: "info", Format: "json"},
		Analysis: AnalysisConfig{
			Provider:           "lead",
			Classify:           true,
			SummaryInputRunes:  1000,
			ClassifyInputRunes: 512,
			LeadSentences:      3,
			LeadWords:          60,
			Timeout:            30 * time.Second,
		},
		Batch: BatchConfig{
			MaxConcurrency: 5,
			JobTTL:         time.Hour,
			WebhookTimeout: 10 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// WEBSTRUCT_CONFIG (if set), then WEBSTRUCT_* environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("WEBSTRUCT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = envOr("WEBSTRUCT_HOST", c.Server.Host)
	c.Server.Port = envIntOr("WEBSTRUCT_PORT", c.Server.Port)
	c.Server.Mode = envOr("WEBSTRUCT_MODE", c.Server.Mode)

	c.Browser.Enabled = envBoolOr("WEBSTRUCT_BROWSER", c.Browser.Enabled)
	c.Browser.Headless = envBoolOr("WEBSTRUCT_HEADLESS", c.Browser.Headless)
	c.Browser.MaxPages = envIntOr("WEBSTRUCT_MAX_PAGES", c.Browser.MaxPages)
	c.Browser.MaxPageUses = envIntOr("WEBSTRUCT_MAX_PAGE_USES", c.Browser.MaxPageUses)
	c.Browser.DefaultProxy = envOr("WEBSTRUCT_PROXY", c.Browser.DefaultProxy)
	c.Browser.NoSandbox = envBoolOr("WEBSTRUCT_NO_SANDBOX", c.Browser.NoSandbox)
	c.Browser.BrowserBin = envOr("WEBSTRUCT_BROWSER_BIN", c.Browser.BrowserBin)

	c.Scraper.DefaultTimeout = envDurationOr("WEBSTRUCT_DEFAULT_TIMEOUT", c.Scraper.DefaultTimeout)
	c.Scraper.MaxTimeout = envDurationOr("WEBSTRUCT_MAX_TIMEOUT", c.Scraper.MaxTimeout)
	c.Scraper.BlockedResourceTypes = envSliceOr("WEBSTRUCT_BLOCKED_RESOURCES", c.Scraper.BlockedResourceTypes)
	c.Scraper.BlockAds = envBoolOr("WEBSTRUCT_BLOCK_ADS", c.Scraper.BlockAds)

	c.Engine.EnableMultiEngine = envBoolOr("WEBSTRUCT_MULTI_ENGINE", c.Engine.EnableMultiEngine)
	c.Engine.EscalationDelays = envDurationSliceOr("WEBSTRUCT_ESCALATION_DELAYS", c.Engine.EscalationDelays)
	c.Engine.HTTPTimeout = envDurationOr("WEBSTRUCT_HTTP_TIMEOUT", c.Engine.HTTPTimeout)
	c.Engine.DomainMemoryTTL = envDurationOr("WEBSTRUCT_DOMAIN_MEMORY_TTL", c.Engine.DomainMemoryTTL)

	c.Auth.Enabled = envBoolOr("WEBSTRUCT_AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.APIKeys = envSliceOr("WEBSTRUCT_API_KEYS", c.Auth.APIKeys)

	c.RateLimit.RequestsPerSecond = envFloatOr("WEBSTRUCT_RATE_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = envIntOr("WEBSTRUCT_RATE_BURST", c.RateLimit.Burst)

	c.Cache.MaxEntries = envIntOr("WEBSTRUCT_CACHE_MAX_ENTRIES", c.Cache.MaxEntries)

	c.Log.Level = envOr("WEBSTRUCT_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("WEBSTRUCT_LOG_FORMAT", c.Log.Format)

	c.Analysis.Provider = envOr("WEBSTRUCT_SUMMARIZER", c.Analysis.Provider)
	c.Analysis.APIKey = envOr("WEBSTRUCT_LLM_API_KEY", c.Analysis.APIKey)
	c.Analysis.Model = envOr("WEBSTRUCT_LLM_MODEL", c.Analysis.Model)
	c.Analysis.BaseURL = envOr("WEBSTRUCT_LLM_BASE_URL", c.Analysis.BaseURL)
	c.Analysis.Classify = envBoolOr("WEBSTRUCT_CLASSIFY", c.Analysis.Classify)
	c.Analysis.SummaryInputRunes = envIntOr("WEBSTRUCT_SUMMARY_INPUT_RUNES", c.Analysis.SummaryInputRunes)
	c.Analysis.ClassifyInputRunes = envIntOr("WEBSTRUCT_CLASSIFY_INPUT_RUNES", c.Analysis.ClassifyInputRunes)
	c.Analysis.LeadSentences = envIntOr("WEBSTRUCT_LEAD_SENTENCES", c.Analysis.LeadSentences)
	c.Analysis.LeadWords = envIntOr("WEBSTRUCT_LEAD_WORDS", c.Analysis.LeadWords)
	c.Analysis.Timeout = envDurationOr("WEBSTRUCT_ANALYSIS_TIMEOUT", c.Analysis.Timeout)

	c.Batch.MaxConcurrency = envIntOr("WEBSTRUCT_BATCH_CONCURRENCY", c.Batch.MaxConcurrency)
	c.Batch.JobTTL = envDurationOr("WEBSTRUCT_BATCH_JOB_TTL", c.Batch.JobTTL)
	c.Batch.WebhookTimeout = envDurationOr("WEBSTRUCT_WEBHOOK_TIMEOUT", c.Batch.WebhookTimeout)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		return splitTrimmed(v)
	}
	return fallback
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var result []time.Duration
	for _, p := range splitTrimmed(v) {
		if d, err := time.ParseDuration(p); err == nil {
			result = append(result, d)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func splitTrimmed(v string) []string {
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
