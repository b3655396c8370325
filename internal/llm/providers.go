package llm

import (
	"fmt"
	"os"
	"strings"
)

// Provider identifies a language-model vendor.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
)

// DefaultProvider is used when none is configured.
const DefaultProvider = ProviderGemini

// DefaultOllamaURL is where a local Ollama server listens by default.
const DefaultOllamaURL = "http://localhost:11434"

type providerSpec struct {
	defaultModel string
	// prefixes of model ids served by this provider
	prefixes []string
	// envKeys are checked in order for an API key
	envKeys []string
}

var providerSpecs = map[Provider]providerSpec{
	ProviderGemini: {
		defaultModel: "gemini-2.5-flash",
		prefixes:     []string{"gemini-"},
		envKeys:      []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	},
	ProviderOpenAI: {
		defaultModel: "gpt-5-mini",
		prefixes:     []string{"gpt-", "o1", "o3", "o4"},
		envKeys:      []string{"OPENAI_API_KEY"},
	},
	ProviderAnthropic: {
		defaultModel: "claude-3-5-sonnet-latest",
		prefixes:     []string{"claude-"},
		envKeys:      []string{"ANTHROPIC_API_KEY"},
	},
	ProviderOllama: {
		defaultModel: "llama3.2",
		prefixes:     []string{"llama", "mistral", "qwen", "phi", "gemma"},
	},
}

// Providers lists the supported providers.
func Providers() []Provider {
	return []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOllama}
}

// ParseProvider accepts a provider name in any case.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := providerSpecs[p]; !ok {
		names := make([]string, 0, len(providerSpecs))
		for _, known := range Providers() {
			names = append(names, string(known))
		}
		return "", fmt.Errorf("unsupported provider %q (supported: %s)", s, strings.Join(names, ", "))
	}
	return p, nil
}

// DefaultModel is the model used when none is configured, or "" for an
// unknown provider.
func (p Provider) DefaultModel() string {
	return providerSpecs[p].defaultModel
}

// NeedsAPIKey reports whether the provider is a hosted API.
func (p Provider) NeedsAPIKey() bool {
	return len(providerSpecs[p].envKeys) > 0
}

// EnvAPIKey returns the first non-empty API key from the provider's
// environment variables.
func (p Provider) EnvAPIKey() string {
	for _, name := range providerSpecs[p].envKeys {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// ProviderForModel guesses which provider serves a model id.
func ProviderForModel(model string) (Provider, bool) {
	model = strings.ToLower(model)
	for _, p := range Providers() {
		for _, prefix := range providerSpecs[p].prefixes {
			if strings.HasPrefix(model, prefix) {
				return p, true
			}
		}
	}
	return "", false
}
