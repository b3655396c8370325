package assistant

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	reply   string
	genErr  error
	chunks  []string
	err     error
	gate    chan struct{}
	history []models.Message
	prompt  string
}

func (f *fakeTransport) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.genErr
}

func (f *fakeTransport) Stream(_ context.Context, history []models.Message, _ string) iter.Seq2[string, error] {
	f.history = history
	return func(yield func(string, error) bool) {
		if f.gate != nil {
			<-f.gate
		}
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if f.err != nil {
			yield("", types.NewTransportError("stream", f.err))
		}
	}
}

func drain(seq iter.Seq2[string, error]) (string, error) {
	var text string
	var last error
	for chunk, err := range seq {
		text += chunk
		if err != nil {
			last = err
		}
	}
	return text, last
}

func TestConversation_FoldsIncrementsInOrder(t *testing.T) {
	tr := &fakeTransport{chunks: []string{"Start ", "with ", "the ", "Common App."}}
	conv := NewConversation(New(tr, nil))

	text, err := drain(conv.Send(context.Background(), "  Where do I begin?  "))
	require.NoError(t, err)
	assert.Equal(t, "Start with the Common App.", text)

	got := conv.Transcript()
	require.Len(t, got, 3)
	assert.Equal(t, models.Message{Role: models.RoleModel, Text: Greeting}, got[0])
	assert.Equal(t, models.Message{Role: models.RoleUser, Text: "Where do I begin?"}, got[1])
	assert.Equal(t, models.Message{Role: models.RoleModel, Text: "Start with the Common App."}, got[2])
	assert.Empty(t, tr.history, "greeting is not sent as history")
	assert.False(t, conv.Busy())

	_, err = drain(conv.Send(context.Background(), "And then?"))
	require.NoError(t, err)
	assert.Len(t, tr.history, 2)
}

func TestConversation_FailureBeforeAnyText(t *testing.T) {
	tr := &fakeTransport{err: errors.New("connection refused")}
	conv := NewConversation(New(tr, nil))

	_, err := drain(conv.Send(context.Background(), "hello"))
	var te *types.TransportError
	require.True(t, errors.As(err, &te))

	got := conv.Transcript()
	require.Len(t, got, 3)
	assert.Equal(t, ChatFallback, got[2].Text)
}

func TestConversation_FailureAfterPartialText(t *testing.T) {
	tr := &fakeTransport{chunks: []string{"Partial"}, err: errors.New("reset")}
	conv := NewConversation(New(tr, nil))

	_, err := drain(conv.Send(context.Background(), "hello"))
	require.Error(t, err)

	got := conv.Transcript()
	require.Len(t, got, 4)
	assert.Equal(t, "Partial", got[2].Text)
	assert.Equal(t, models.Message{Role: models.RoleModel, Text: ChatFallback}, got[3])
}

func TestConversation_OneTurnInFlight(t *testing.T) {
	tr := &fakeTransport{chunks: []string{"ok"}, gate: make(chan struct{})}
	conv := NewConversation(New(tr, nil))

	done := make(chan error)
	go func() {
		_, err := drain(conv.Send(context.Background(), "first"))
		done <- err
	}()

	require.Eventually(t, conv.Busy, time.Second, time.Millisecond)
	_, err := drain(conv.Send(context.Background(), "second"))
	assert.ErrorIs(t, err, ErrTurnInFlight)

	close(tr.gate)
	require.NoError(t, <-done)
	assert.Len(t, conv.Transcript(), 3)
}

func TestConversation_EmptyMessage(t *testing.T) {
	conv := NewConversation(New(&fakeTransport{}, nil))
	_, err := drain(conv.Send(context.Background(), "   "))
	var ve *types.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, conv.Transcript(), 1)
}

func TestAssistant_Quote(t *testing.T) {
	tr := &fakeTransport{reply: ` "Every application is a step forward." `}
	a := New(tr, nil)

	q, err := a.Quote(context.Background(), "stressed")
	require.NoError(t, err)
	assert.Equal(t, "Every application is a step forward.", q)
	assert.Contains(t, tr.prompt, "stressed")

	tr.genErr = types.NewTransportError("generate", errors.New("timeout"))
	q, err = a.Quote(context.Background(), "")
	assert.Equal(t, QuoteFallback, q)
	var te *types.TransportError
	assert.True(t, errors.As(err, &te))

	tr.genErr = nil
	tr.reply = "  "
	q, err = a.Quote(context.Background(), "tired")
	assert.Equal(t, QuoteFallback, q)
	assert.Error(t, err)
}

func TestAssistant_Generate(t *testing.T) {
	tr := &fakeTransport{reply: "text"}
	a := New(tr, nil)

	out, err := a.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "text", out)

	_, err = a.Generate(context.Background(), " ")
	var ve *types.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Prompt is required", ve.Message)
}
