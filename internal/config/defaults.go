package config

import "time"

// QualityPreset describes the models to use for a given quality tier.
type QualityPreset struct {
	BlueprintModel string
	PageModel      string
}

// qualityPresets maps each provider+quality combination to its model choices.
// Blueprints go to the faster model, page code to the stronger one.
var qualityPresets = map[ProviderType]map[QualityTier]QualityPreset{
	ProviderGoogle: {
		QualityLite:   {BlueprintModel: "gemini-3-flash-preview", PageModel: "gemini-3-flash-preview"},
		QualityNormal: {BlueprintModel: "gemini-3-flash-preview", PageModel: "gemini-3-pro-preview"},
		QualityMax:    {BlueprintModel: "gemini-3-pro-preview", PageModel: "gemini-3-pro-preview"},
	},
	ProviderOpenAI: {
		QualityLite:   {BlueprintModel: "gpt-4o-mini", PageModel: "gpt-4o-mini"},
		QualityNormal: {BlueprintModel: "gpt-4o-mini", PageModel: "gpt-4o"},
		QualityMax:    {BlueprintModel: "gpt-4o", PageModel: "gpt-4o"},
	},
	ProviderOpenRouter: {
		QualityLite:   {BlueprintModel: "google/gemini-3-flash-preview", PageModel: "google/gemini-3-flash-preview"},
		QualityNormal: {BlueprintModel: "google/gemini-3-flash-preview", PageModel: "google/gemini-3-pro-preview"},
		QualityMax:    {BlueprintModel: "google/gemini-3-pro-preview", PageModel: "google/gemini-3-pro-preview"},
	},
	ProviderAnthropic: {
		QualityLite:   {BlueprintModel: "claude-haiku-4-5-20251001", PageModel: "claude-haiku-4-5-20251001"},
		QualityNormal: {BlueprintModel: "claude-haiku-4-5-20251001", PageModel: "claude-sonnet-4-5-20250929"},
		QualityMax:    {BlueprintModel: "claude-sonnet-4-5-20250929", PageModel: "claude-opus-4-6"},
	},
	ProviderOllama: {
		QualityLite:   {BlueprintModel: "llama3", PageModel: "llama3"},
		QualityNormal: {BlueprintModel: "llama3", PageModel: "llama3"},
		QualityMax:    {BlueprintModel: "llama3", PageModel: "llama3:70b"},
	},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	preset := GetPreset(ProviderGoogle, QualityNormal)
	return &Config{
		Provider:          ProviderGoogle,
		Quality:           QualityNormal,
		BlueprintModel:    preset.BlueprintModel,
		PageModel:         preset.PageModel,
		PageTemperature:   0.7,
		Port:              8080,
		OutputDir:         "site",
		LedgerPath:        ".instasite/usage.db",
		GenerationTimeout: 3 * time.Minute,
		DeployDelay:       4500 * time.Millisecond,
		LogLevel:          "info",
	}
}

// GetPreset returns the quality preset for the given provider and tier.
// Returns the Normal Google preset if the combination is not found.
func GetPreset(provider ProviderType, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets[ProviderGoogle][QualityNormal]
}

// ApplyPreset fills empty model names from the provider's quality preset.
func (c *Config) ApplyPreset() {
	preset := GetPreset(c.Provider, c.Quality)
	if c.BlueprintModel == "" {
		c.BlueprintModel = preset.BlueprintModel
	}
	if c.PageModel == "" {
		c.PageModel = preset.PageModel
	}
}
