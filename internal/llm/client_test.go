package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/edutate/vanessa/internal/planner"
	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{in: "openai", want: ProviderOpenAI},
		{in: "ollama", want: ProviderOllama},
		{in: "anthropic", want: ProviderAnthropic},
		{in: " GEMINI ", want: ProviderGemini},
		{in: "bedrock", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProvider(tt.in)
			if tt.wantErr {
				assert.ErrorContains(t, err, "supported: gemini, openai, anthropic, ollama")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvider_Defaults(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", ProviderGemini.DefaultModel())
	assert.Equal(t, "gpt-5-mini", ProviderOpenAI.DefaultModel())
	assert.Equal(t, "claude-3-5-sonnet-latest", ProviderAnthropic.DefaultModel())
	assert.Equal(t, "llama3.2", ProviderOllama.DefaultModel())
	assert.Empty(t, Provider("unknown").DefaultModel())

	assert.True(t, ProviderGemini.NeedsAPIKey())
	assert.False(t, ProviderOllama.NeedsAPIKey())
}

func TestProvider_EnvAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	assert.Equal(t, "google-key", ProviderGemini.EnvAPIKey())

	t.Setenv("GEMINI_API_KEY", " gemini-key ")
	assert.Equal(t, "gemini-key", ProviderGemini.EnvAPIKey())
	assert.Empty(t, ProviderOllama.EnvAPIKey())
}

func TestProviderForModel(t *testing.T) {
	tests := map[string]Provider{
		"gemini-2.5-pro":            ProviderGemini,
		"gpt-4o-mini-2024-07-18":    ProviderOpenAI,
		"o3-mini":                   ProviderOpenAI,
		"claude-3-5-haiku-20241022": ProviderAnthropic,
		"llama3.1:8b":               ProviderOllama,
		"Qwen2.5":                   ProviderOllama,
	}
	for modelID, want := range tests {
		got, ok := ProviderForModel(modelID)
		assert.True(t, ok, modelID)
		assert.Equal(t, want, got, modelID)
	}

	_, ok := ProviderForModel("mystery-model")
	assert.False(t, ok)
}

func TestNewChatModel_MissingKeys(t *testing.T) {
	ctx := context.Background()
	for _, p := range []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini} {
		_, err := NewChatModel(ctx, Config{Provider: p})
		assert.ErrorContains(t, err, "key is required", string(p))
	}

	_, err := NewChatModel(ctx, Config{Provider: "bedrock"})
	assert.ErrorContains(t, err, "unsupported LLM provider")
}

// fakeChat is a scripted Eino chat model.
type fakeChat struct {
	reply     string
	chunks    []string
	genErr    error
	streamErr error
	midErr    error
	got       []*schema.Message
}

func (f *fakeChat) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.got = input
	if f.genErr != nil {
		return nil, f.genErr
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChat) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.got = input
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	sr, sw := schema.Pipe[*schema.Message](len(f.chunks) + 1)
	for _, c := range f.chunks {
		sw.Send(schema.AssistantMessage(c, nil), nil)
	}
	if f.midErr != nil {
		sw.Send(nil, f.midErr)
	}
	sw.Close()
	return sr, nil
}

func TestChatTransport_Stream(t *testing.T) {
	chat := &fakeChat{chunks: []string{"Hel", "", "lo", "!"}}
	tr := NewChatTransport(chat, "You are Vanessa.")

	history := []models.Message{
		{Role: models.RoleModel, Text: "Hi there"},
		{Role: models.RoleUser, Text: "When is the SAT?"},
		{Role: models.RoleModel, Text: ""},
	}

	var parts []string
	for chunk, err := range tr.Stream(context.Background(), history, "Thanks") {
		require.NoError(t, err)
		parts = append(parts, chunk)
	}
	assert.Equal(t, []string{"Hel", "lo", "!"}, parts)

	require.Len(t, chat.got, 4)
	assert.Equal(t, schema.System, chat.got[0].Role)
	assert.Equal(t, schema.Assistant, chat.got[1].Role)
	assert.Equal(t, schema.User, chat.got[2].Role)
	assert.Equal(t, "Thanks", chat.got[3].Content)
}

func TestChatTransport_StreamErrors(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("open fails", func(t *testing.T) {
		tr := NewChatTransport(&fakeChat{streamErr: boom}, "")
		var errs []error
		for _, err := range tr.Stream(context.Background(), nil, "hi") {
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		var te *types.TransportError
		require.True(t, errors.As(errs[0], &te))
		assert.ErrorIs(t, errs[0], boom)
	})

	t.Run("mid-stream failure", func(t *testing.T) {
		tr := NewChatTransport(&fakeChat{chunks: []string{"partial"}, midErr: boom}, "")
		var text string
		var last error
		for chunk, err := range tr.Stream(context.Background(), nil, "hi") {
			text += chunk
			last = err
		}
		assert.Equal(t, "partial", text)
		var te *types.TransportError
		assert.True(t, errors.As(last, &te))
	})

	t.Run("early break", func(t *testing.T) {
		tr := NewChatTransport(&fakeChat{chunks: []string{"a", "b", "c"}}, "")
		var got []string
		for chunk := range tr.Stream(context.Background(), nil, "hi") {
			got = append(got, chunk)
			break
		}
		assert.Equal(t, []string{"a"}, got)
	})
}

func TestChatTransport_Generate(t *testing.T) {
	tr := NewChatTransport(&fakeChat{reply: "Keep going!"}, "")
	text, err := tr.Generate(context.Background(), "quote please")
	require.NoError(t, err)
	assert.Equal(t, "Keep going!", text)

	tr = NewChatTransport(&fakeChat{genErr: errors.New("429")}, "")
	_, err = tr.Generate(context.Background(), "quote please")
	var te *types.TransportError
	assert.True(t, errors.As(err, &te))
}

func TestChatModelOracle(t *testing.T) {
	chat := &fakeChat{reply: `[{"id":"s"}]`}
	o := NewChatModelOracle(chat)

	out, err := o.GenerateStructured(context.Background(), planner.StructuredRequest{
		SystemInstruction: "policy",
		Prompt:            "prompt",
		Schema:            planner.PlanSchema(),
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"s"}]`, out)

	require.Len(t, chat.got, 2)
	assert.True(t, strings.HasPrefix(chat.got[0].Content, "policy"))
	assert.Contains(t, chat.got[0].Content, `"isCompleted"`)
	assert.Equal(t, "prompt", chat.got[1].Content)
}

type fakeGenerator struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	config *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGeminiOracle(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(`[]`)}
	o := &GeminiOracle{models: gen, model: "gemini-2.5-flash"}

	out, err := o.GenerateStructured(context.Background(), planner.StructuredRequest{
		SystemInstruction: "policy",
		Prompt:            "prompt",
		Schema:            planner.PlanSchema(),
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
	assert.Equal(t, "gemini-2.5-flash", gen.model)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
	require.NotNil(t, gen.config.SystemInstruction)
	assert.Equal(t, genai.TypeArray, gen.config.ResponseSchema.Type)

	gen.resp = textResponse("  ")
	_, err = o.GenerateStructured(context.Background(), planner.StructuredRequest{Prompt: "p"})
	var te *types.TransportError
	assert.True(t, errors.As(err, &te))

	gen.err = errors.New("quota exceeded")
	_, err = o.GenerateStructured(context.Background(), planner.StructuredRequest{Prompt: "p"})
	assert.True(t, errors.As(err, &te))
}

func TestToGenAISchema(t *testing.T) {
	s := toGenAISchema(planner.PlanSchema())

	item := s.Items.Properties["items"].Items
	todo := item.Properties["todos"].Items
	assert.Equal(t, genai.TypeObject, item.Type)
	assert.Equal(t, genai.TypeBoolean, todo.Properties["isCompleted"].Type)
	assert.Equal(t, genai.TypeString, todo.Properties["text"].Type)
	assert.Equal(t, []string{"id", "text", "isCompleted"}, todo.Required)
	assert.Equal(t, []string{"High", "Medium", "Low"}, todo.Properties["priority"].Enum)
	assert.Nil(t, toGenAISchema(nil))
}
