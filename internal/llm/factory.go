package llm

import (
	"fmt"
	"os"
)

// ErrMissingCredential is reported by providers created without an API key.
var ErrMissingCredential = fmt.Errorf("api key not set")

// APIKeyEnvVar returns the environment variable holding the credential for
// the given provider type, or "" when the provider needs none.
func APIKeyEnvVar(providerType string) string {
	switch providerType {
	case "google":
		return "GOOGLE_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// NewProvider creates a provider of the given type with a default model.
// Supported types: "google", "openai", "openrouter", "anthropic", "ollama".
//
// A missing API key is not an error here: the returned provider fails its
// first Complete call instead.
func NewProvider(providerType string, model string) (Provider, error) {
	envVar := APIKeyEnvVar(providerType)
	apiKey := ""
	if envVar != "" {
		apiKey = os.Getenv(envVar)
	}

	missing := func() Provider {
		return &unconfiguredProvider{
			name: providerType,
			err:  fmt.Errorf("%w: set %s", ErrMissingCredential, envVar),
		}
	}

	switch providerType {
	case "google":
		if apiKey == "" {
			return missing(), nil
		}
		return NewGoogleProvider(apiKey, model), nil

	case "openai":
		if apiKey == "" {
			return missing(), nil
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "openrouter":
		if apiKey == "" {
			return missing(), nil
		}
		return NewOpenRouterProvider(apiKey, model), nil

	case "anthropic":
		if apiKey == "" {
			return missing(), nil
		}
		return NewAnthropicProvider(apiKey, model), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
