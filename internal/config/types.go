package config

import "time"

// QualityTier controls the model selection and trade-off between speed/cost and quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderGoogle     ProviderType = "google"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOllama     ProviderType = "ollama"
)

// DefaultPath is the configuration file read when --config is not given.
const DefaultPath = ".instasite.yml"

// Config is the top-level instasite configuration, corresponding to .instasite.yml.
type Config struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Quality  QualityTier  `yaml:"quality" koanf:"quality"`
	// BlueprintModel plans sites; PageModel writes page and section code.
	// Empty values are filled from the provider's quality preset.
	BlueprintModel    string        `yaml:"blueprint_model" koanf:"blueprint_model"`
	PageModel         string        `yaml:"page_model" koanf:"page_model"`
	PageTemperature   float64       `yaml:"page_temperature" koanf:"page_temperature"`
	Port              int           `yaml:"port" koanf:"port"`
	OutputDir         string        `yaml:"output_dir" koanf:"output_dir"`
	LedgerPath        string        `yaml:"ledger_path" koanf:"ledger_path"`
	RateLimitRPM      int           `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	GenerationTimeout time.Duration `yaml:"generation_timeout" koanf:"generation_timeout"`
	DeployDelay       time.Duration `yaml:"deploy_delay" koanf:"deploy_delay"`
	LogLevel          string        `yaml:"log_level" koanf:"log_level"`
	AllowAllOrigins   bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
