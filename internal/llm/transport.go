package llm

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/types"
)

// ChatTransport adapts an Eino chat model to the assistant's
// request/response and streaming needs.
type ChatTransport struct {
	chat   model.BaseChatModel
	system string
}

// NewChatTransport creates a transport. system, if non-empty, is sent as
// the leading system message of every streamed conversation.
func NewChatTransport(chat model.BaseChatModel, system string) *ChatTransport {
	return &ChatTransport{chat: chat, system: system}
}

// Generate sends a single prompt and returns the full reply.
func (t *ChatTransport) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := t.chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", types.NewTransportError("generate", err)
	}
	return resp.Content, nil
}

// Stream sends history plus message and yields reply fragments in
// arrival order. The sequence is single-use. A failure is yielded once as
// a *types.TransportError and ends the sequence.
func (t *ChatTransport) Stream(ctx context.Context, history []models.Message, message string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		sr, err := t.chat.Stream(ctx, t.messages(history, message))
		if err != nil {
			yield("", types.NewTransportError("stream", err))
			return
		}
		defer sr.Close()

		for {
			chunk, err := sr.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", types.NewTransportError("stream", err))
				return
			}
			if chunk == nil || chunk.Content == "" {
				continue
			}
			if !yield(chunk.Content, nil) {
				return
			}
		}
	}
}

func (t *ChatTransport) messages(history []models.Message, message string) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history)+2)
	if t.system != "" {
		msgs = append(msgs, schema.SystemMessage(t.system))
	}
	for _, m := range history {
		if m.Text == "" {
			continue
		}
		if m.Role == models.RoleModel {
			msgs = append(msgs, schema.AssistantMessage(m.Text, nil))
		} else {
			msgs = append(msgs, schema.UserMessage(m.Text))
		}
	}
	return append(msgs, schema.UserMessage(message))
}
