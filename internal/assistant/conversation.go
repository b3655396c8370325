package assistant

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"

	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/types"
)

// ErrTurnInFlight is returned when a message is sent while the previous
// reply is still streaming.
var ErrTurnInFlight = errors.New("a reply is already in progress")

// Conversation is a transcript that accumulates streamed replies. Only
// one turn may be in flight at a time.
type Conversation struct {
	assistant *Assistant

	mu         sync.Mutex
	transcript []models.Message
	inFlight   bool
}

// NewConversation starts a transcript with the greeting.
func NewConversation(a *Assistant) *Conversation {
	return &Conversation{
		assistant:  a,
		transcript: []models.Message{{Role: models.RoleModel, Text: Greeting}},
	}
}

// Transcript returns a copy of the messages so far.
func (c *Conversation) Transcript() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Message(nil), c.transcript...)
}

// Busy reports whether a turn is in flight.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Send appends message to the transcript and streams the reply, folding
// each increment into the last transcript entry before yielding it. If
// the transport fails, the failure is yielded once and the transcript
// ends with ChatFallback.
func (c *Conversation) Send(ctx context.Context, message string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		message = strings.TrimSpace(message)
		if message == "" {
			yield("", types.NewValidationError("message", "message is required"))
			return
		}

		c.mu.Lock()
		if c.inFlight {
			c.mu.Unlock()
			yield("", ErrTurnInFlight)
			return
		}
		c.inFlight = true
		history := conversationHistory(c.transcript)
		c.transcript = append(c.transcript,
			models.Message{Role: models.RoleUser, Text: message},
			models.Message{Role: models.RoleModel},
		)
		c.mu.Unlock()

		defer func() {
			c.mu.Lock()
			c.inFlight = false
			c.mu.Unlock()
		}()

		for chunk, err := range c.assistant.SendTurn(ctx, history, message) {
			if err != nil {
				c.fail()
				c.assistant.logger.Warn("chat turn failed", "error", err)
				yield("", err)
				return
			}
			c.mu.Lock()
			c.transcript[len(c.transcript)-1].Text += chunk
			c.mu.Unlock()
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// fail installs the fallback reply: it fills the pending empty entry, or
// follows a partial reply with a new entry.
func (c *Conversation) fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	last := &c.transcript[len(c.transcript)-1]
	if last.Role == models.RoleModel && last.Text == "" {
		last.Text = ChatFallback
		return
	}
	c.transcript = append(c.transcript, models.Message{Role: models.RoleModel, Text: ChatFallback})
}

// conversationHistory copies the transcript without leading model
// entries, since chat providers expect the user to speak first.
func conversationHistory(transcript []models.Message) []models.Message {
	i := 0
	for i < len(transcript) && transcript[i].Role == models.RoleModel {
		i++
	}
	return append([]models.Message(nil), transcript[i:]...)
}
