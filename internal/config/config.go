package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/instasite/internal/llm"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (INSTASITE_*). Models left unset anywhere
// come from the preset of the resulting provider and quality.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults, minus the models which depend on the provider.
	cfg := DefaultConfig()
	cfg.BlueprintModel, cfg.PageModel = "", ""

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: INSTASITE_PROVIDER -> provider, etc.
	if err := k.Load(env.Provider("INSTASITE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "INSTASITE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// LOG_LEVEL is honoured unless the prefixed variable is also set.
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" && os.Getenv("INSTASITE_LOG_LEVEL") == "" {
		cfg.LogLevel = lvl
	}

	cfg.ApplyPreset()
	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderGoogle:     true,
	ProviderOpenAI:     true,
	ProviderOpenRouter: true,
	ProviderAnthropic:  true,
	ProviderOllama:     true,
}

// validQualityTiers is the set of recognized quality tier values.
var validQualityTiers = map[QualityTier]bool{
	QualityLite:   true,
	QualityNormal: true,
	QualityMax:    true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of google, openai, openrouter, anthropic, ollama", c.Provider)
	}

	if c.Quality != "" && !validQualityTiers[c.Quality] {
		return fmt.Errorf("invalid quality %q: must be one of lite, normal, max", c.Quality)
	}

	if c.BlueprintModel == "" {
		return fmt.Errorf("blueprint_model is required")
	}
	if c.PageModel == "" {
		return fmt.Errorf("page_model is required")
	}

	if c.PageTemperature < 0 || c.PageTemperature > 2 {
		return fmt.Errorf("page_temperature must be between 0 and 2")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.LedgerPath == "" {
		return fmt.Errorf("ledger_path is required")
	}

	if c.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm must be non-negative")
	}
	if c.GenerationTimeout < 0 {
		return fmt.Errorf("generation_timeout must be non-negative")
	}
	if c.DeployDelay < 0 {
		return fmt.Errorf("deploy_delay must be non-negative")
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	return llm.APIKeyEnvVar(string(provider))
}
