package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to instasite! Let's configure your workspace.")
	fmt.Println()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"google", "openai", "openrouter", "anthropic", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	// 2. Quality tier.
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	items := make([]string, len(tiers))
	for i, tier := range tiers {
		p := GetPreset(provider, tier)
		items[i] = fmt.Sprintf("%-6s (plan: %s, pages: %s)", tier, p.BlueprintModel, p.PageModel)
	}
	qualityPrompt := promptui.Select{
		Label:     "Select quality tier",
		Items:     items,
		CursorPos: 1,
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	quality := tiers[qualityIdx]

	// 3. Port for the editor.
	portPrompt := promptui.Prompt{
		Label:    "Editor port",
		Default:  "8080",
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	// 4. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory for exported sites",
		Default: "site",
	}
	outputDir, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	// Build the config.
	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Quality = quality
	cfg.BlueprintModel, cfg.PageModel = "", ""
	cfg.ApplyPreset()
	cfg.Port = port
	cfg.OutputDir = outputDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before generating a site.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return errors.New("enter a port between 1 and 65535")
	}
	return nil
}
