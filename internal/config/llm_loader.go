package config

import (
	"fmt"
	"strings"

	"github.com/edutate/vanessa/internal/llm"
	"github.com/spf13/viper"
)

// LoadLLMConfig loads LLM configuration from Viper and Environment variables.
// It handles precedence: Explicit Viper Config > Environment Variables > Defaults.
// A missing API key is not an error here; callers decide whether they can
// run without a model.
func LoadLLMConfig() (llm.Config, error) {
	// 1. Provider
	provider := viper.GetString("llm.provider")
	if provider == "" {
		provider = string(llm.DefaultProvider)
	}

	llmProvider, err := llm.ParseProvider(provider)
	if err != nil {
		return llm.Config{}, fmt.Errorf("invalid provider: %w", err)
	}

	// 2. Model
	model := viper.GetString("llm.model")
	if model == "" {
		model = llmProvider.DefaultModel()
	}

	// 3. API Key
	apiKey := ResolveAPIKey(llmProvider)

	// 4. Base URL (Ollama or OpenAI-compatible)
	baseURL := viper.GetString("llm.baseURL")
	if baseURL == "" && llmProvider == llm.ProviderOllama {
		baseURL = llm.DefaultOllamaURL
	}

	return llm.Config{
		Provider: llmProvider,
		Model:    model,
		APIKey:   apiKey,
		BaseURL:  baseURL,
	}, nil
}

// ResolveAPIKey returns the best API key for the given provider using
// the per-provider config key, then the legacy llm.apiKey, then
// provider-specific env vars.
func ResolveAPIKey(provider llm.Provider) string {
	keyFromViper := func(path string) string {
		if viper.IsSet(path) {
			return strings.TrimSpace(viper.GetString(path))
		}
		return ""
	}

	if key := keyFromViper(fmt.Sprintf("llm.apiKeys.%s", provider)); key != "" {
		return key
	}
	if key := keyFromViper("llm.apiKey"); key != "" {
		return key
	}
	return provider.EnvAPIKey()
}

// HasCredentials reports whether cfg can reach its provider.
func HasCredentials(cfg llm.Config) bool {
	return !cfg.Provider.NeedsAPIKey() || cfg.APIKey != ""
}
