package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/edutate/vanessa/internal/planner"
	"github.com/edutate/vanessa/types"
	"google.golang.org/genai"
)

// contentGenerator is the slice of the genai Models service used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiOracle produces schema-constrained JSON using Gemini's native
// response schema support.
type GeminiOracle struct {
	models contentGenerator
	model  string
}

// NewGeminiOracle creates an oracle backed by the Gemini API.
func NewGeminiOracle(ctx context.Context, cfg Config) (*GeminiOracle, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	client, err := newGenAIClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	return &GeminiOracle{models: client.Models, model: cfg.Model}, nil
}

// GenerateStructured implements planner.Oracle.
func (o *GeminiOracle) GenerateStructured(ctx context.Context, req planner.StructuredRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenAISchema(req.Schema),
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	resp, err := o.models.GenerateContent(ctx, o.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", types.NewTransportError("generate structured", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", types.NewTransportError("generate structured", fmt.Errorf("empty response from %s", o.model))
	}
	return text, nil
}

// toGenAISchema converts the provider-neutral schema into genai's form.
func toGenAISchema(s *planner.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description:      s.Description,
		Required:         s.Required,
		PropertyOrdering: s.PropertyOrdering,
		Enum:             s.Enum,
		Items:            toGenAISchema(s.Items),
	}
	switch s.Type {
	case planner.TypeObject:
		out.Type = genai.TypeObject
	case planner.TypeArray:
		out.Type = genai.TypeArray
	case planner.TypeBoolean:
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenAISchema(prop)
		}
	}
	return out
}

// ChatModelOracle drives any Eino chat model as an oracle. The schema is
// embedded in the system message since these providers are not given a
// native response schema.
type ChatModelOracle struct {
	chat model.BaseChatModel
}

// NewChatModelOracle wraps an existing chat model.
func NewChatModelOracle(chat model.BaseChatModel) *ChatModelOracle {
	return &ChatModelOracle{chat: chat}
}

// GenerateStructured implements planner.Oracle.
func (o *ChatModelOracle) GenerateStructured(ctx context.Context, req planner.StructuredRequest) (string, error) {
	schemaJSON, err := json.MarshalIndent(req.Schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode schema: %w", err)
	}

	system := req.SystemInstruction + "\n\nRespond with a single JSON value and nothing else. It must conform to this JSON schema:\n" + string(schemaJSON)
	resp, err := o.chat.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(req.Prompt),
	})
	if err != nil {
		return "", types.NewTransportError("generate structured", err)
	}
	return resp.Content, nil
}

// NewOracle picks the best oracle for the configured provider.
func NewOracle(ctx context.Context, cfg Config) (planner.Oracle, error) {
	if cfg.Provider == ProviderGemini {
		return NewGeminiOracle(ctx, cfg)
	}
	chat, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewChatModelOracle(chat), nil
}

var (
	_ planner.Oracle = (*GeminiOracle)(nil)
	_ planner.Oracle = (*ChatModelOracle)(nil)
)
