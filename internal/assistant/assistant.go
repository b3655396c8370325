// Package assistant holds the conversational side of Vanessa: streamed
// chat turns, one-shot generation and motivational quotes.
package assistant

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/types"
)

const (
	// Greeting opens every new conversation.
	Greeting = "Hello! I'm Vanessa. How can I help with your college journey today?"

	// ChatFallback replaces a reply that failed to arrive.
	ChatFallback = "Sorry, I had trouble connecting. Please try again."

	// QuoteFallback is shown when no quote could be fetched.
	QuoteFallback = "Couldn't fetch a quote right now."

	// DefaultQuote is shown before any quote has been requested.
	DefaultQuote = "The future belongs to those who believe in the beauty of their dreams."
)

// SystemInstruction sets the assistant persona for chat turns.
const SystemInstruction = `You are Vanessa, a warm and knowledgeable college counselor. You help high school students plan and complete their college applications: standardized tests, essays, recommendation letters, financial aid and deadlines. Be encouraging, concise and practical. When you are unsure about a specific school's policy, say so and suggest where to check.`

// Transport is the language-model capability the assistant needs.
type Transport interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, history []models.Message, message string) iter.Seq2[string, error]
}

// Assistant sends chat turns and one-shot prompts through a Transport.
type Assistant struct {
	transport Transport
	logger    *slog.Logger
}

// New creates an assistant. A nil logger uses slog.Default().
func New(transport Transport, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{transport: transport, logger: logger}
}

// SendTurn streams the reply to message given the prior history. The
// returned sequence is finite and can be ranged over once.
func (a *Assistant) SendTurn(ctx context.Context, history []models.Message, message string) iter.Seq2[string, error] {
	return a.transport.Stream(ctx, history, message)
}

// Generate returns a one-shot completion for prompt.
func (a *Assistant) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", types.NewValidationError("prompt", "Prompt is required")
	}
	text, err := a.transport.Generate(ctx, prompt)
	if err != nil {
		a.logger.Warn("generate failed", "error", err)
		return "", err
	}
	return text, nil
}

// Quote fetches a short motivational quote suited to mood. On failure it
// returns QuoteFallback together with the error.
func (a *Assistant) Quote(ctx context.Context, mood string) (string, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		mood = "motivated"
	}
	prompt := fmt.Sprintf("Give me one short, original motivational quote for a high school student applying to college who is feeling %s. Reply with the quote only, without quotation marks or attribution.", mood)

	text, err := a.transport.Generate(ctx, prompt)
	if err == nil {
		text = strings.Trim(strings.TrimSpace(text), `"“”`)
		if text == "" {
			err = types.NewTransportError("quote", fmt.Errorf("empty reply"))
		}
	}
	if err != nil {
		a.logger.Warn("quote failed", "mood", mood, "error", err)
		return QuoteFallback, err
	}
	return text, nil
}
