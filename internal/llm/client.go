// Package llm provides the language-model transports: chat models via
// CloudWeGo Eino for conversation, and schema-constrained oracles for
// plan reconciliation.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// defaultMaxTokens caps replies for providers that require a limit.
const defaultMaxTokens = 4096

// Config selects a provider and the credentials to reach it.
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	// BaseURL points at an Ollama server or an OpenAI-compatible gateway.
	BaseURL string
}

// resolve fills in the provider's default model and checks credentials.
func (c Config) resolve() (Config, error) {
	if _, ok := providerSpecs[c.Provider]; !ok {
		return c, fmt.Errorf("unsupported LLM provider: %q", c.Provider)
	}
	if c.Model == "" {
		c.Model = c.Provider.DefaultModel()
	}
	if c.Provider.NeedsAPIKey() && c.APIKey == "" {
		return c, fmt.Errorf("%s API key is required", c.Provider)
	}
	return c, nil
}

type chatFactory func(ctx context.Context, cfg Config) (model.BaseChatModel, error)

var chatFactories = map[Provider]chatFactory{
	ProviderGemini: func(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
		client, err := newGenAIClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		return gemini.NewChatModel(ctx, &gemini.Config{Client: client, Model: cfg.Model})
	},
	ProviderOpenAI: func(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	},
	ProviderAnthropic: func(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
		return claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: defaultMaxTokens,
		})
	},
	ProviderOllama: func(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
		url := cfg.BaseURL
		if url == "" {
			url = DefaultOllamaURL
		}
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{BaseURL: url, Model: cfg.Model})
	},
}

// NewChatModel builds the Eino chat model for cfg.Provider.
func NewChatModel(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	chat, err := chatFactories[cfg.Provider](ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s chat model: %w", cfg.Provider, err)
	}
	return chat, nil
}

func newGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}
