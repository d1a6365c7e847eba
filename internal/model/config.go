package model

import "time"

// Config is the complete groundcheck configuration
type Config struct {
	Checkers    CheckersConfig    `yaml:"checkers" mapstructure:"checkers"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// CheckersConfig controls which checkers run and their inputs
type CheckersConfig struct {
	// Disabled lists checker ids to skip entirely
	Disabled []string `yaml:"disabled" mapstructure:"disabled"`

	// Experimental enables checkers marked experimental
	Experimental bool `yaml:"experimental" mapstructure:"experimental"`

	// SchemaPath overrides the schema DSL location (project-relative)
	SchemaPath string `yaml:"schema_path" mapstructure:"schema_path"`

	// AllowedNewPaths are globs for paths plans may introduce
	AllowedNewPaths []string `yaml:"allowed_new_paths" mapstructure:"allowed_new_paths"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	JSON    string `yaml:"json" mapstructure:"json"` // JSON report path ("" = stdout text only)
}

// CacheConfig controls the review-response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// LLMConfig configures the optional hosted-model reviewer
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, ""
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"-" mapstructure:"-"` // Environment only, never persisted
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Stream     bool   `yaml:"stream" mapstructure:"stream"`
	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy" mapstructure:"no_proxy"`

	// ContextTokens budgets the project context sent with a review
	ContextTokens int `yaml:"context_tokens" mapstructure:"context_tokens"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers" mapstructure:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Checkers: CheckersConfig{
			Experimental: false,
		},
		Output: OutputConfig{
			Verbose: false,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		LLM: LLMConfig{
			Provider:      "",
			Timeout:       60,
			MaxTokens:     2000,
			Stream:        true,
			ContextTokens: 12000,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 1,
			Burst:             2,
		},
	}
}
