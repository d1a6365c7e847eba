package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/groundcheck/internal/cache"
	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/llm"
	"github.com/ppiankov/groundcheck/internal/model"
)

// loadConfig merges the config file and environment over the defaults.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	_ = viper.Unmarshal(cfg)
	return cfg
}

// buildCache constructs the review-response cache, or nil when caching
// is disabled.
func buildCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cache.NewMemoryCache(cfg.Cache.MemoryTTL, 10*time.Minute)
		}
		dir = filepath.Join(home, ".groundcheck", "cache")
	}
	return cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
}

// buildProvider constructs the hosted-model reviewer. API keys come
// from the environment only and are never persisted.
func buildProvider(cfg *model.Config) (llm.Provider, error) {
	if cfg.LLM.Provider == "" {
		return nil, nil
	}
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
}

// enabledCheckers builds the enabled set from the disabled list and the
// experimental switch. Nil means everything is on.
func enabledCheckers(registry *checker.Registry, cfg *model.Config) map[string]bool {
	off := make(map[string]bool, len(cfg.Checkers.Disabled))
	for _, id := range cfg.Checkers.Disabled {
		off[id] = true
	}
	if len(off) == 0 && cfg.Checkers.Experimental {
		return nil
	}
	enabled := make(map[string]bool)
	for _, c := range registry.Checkers() {
		if off[c.ID()] {
			continue
		}
		if c.Experimental() && !cfg.Checkers.Experimental {
			continue
		}
		enabled[c.ID()] = true
	}
	return enabled
}

// checkOptions maps the checker section of the config to run options.
func checkOptions(cfg *model.Config) model.CheckOptions {
	return model.CheckOptions{
		SchemaPath:      cfg.Checkers.SchemaPath,
		AllowedNewPaths: cfg.Checkers.AllowedNewPaths,
	}
}

// readPlan loads a plan file.
func readPlan(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read plan: %w", err)
	}
	return string(data), nil
}
