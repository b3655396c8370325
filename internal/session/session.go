// Package session owns the signed-in user's plan, events and
// conversation. Every change is persisted before it becomes visible, so
// readers only ever see whole, saved states.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/edutate/vanessa/internal/assistant"
	"github.com/edutate/vanessa/internal/planner"
	"github.com/edutate/vanessa/internal/telemetry"
	"github.com/edutate/vanessa/internal/timeline"
	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/store"
	"github.com/edutate/vanessa/types"
)

// GuestIdentity partitions data for users who skip sign-in.
const GuestIdentity = "guest"

var (
	// ErrNotLoggedIn is returned by operations that need a user.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrReconcileInFlight rejects a reconciliation while another one is
	// pending for the same session.
	ErrReconcileInFlight = errors.New("a reconciliation is already in progress")

	// ErrAssistantUnavailable is returned when no language model is
	// configured.
	ErrAssistantUnavailable = errors.New("assistant is not configured")
)

// Reconciler merges free-text updates into a plan.
type Reconciler interface {
	Reconcile(ctx context.Context, plan models.Plan, update string) (*planner.Result, error)
}

// Options configures a Session. Store is required; the rest are
// optional.
type Options struct {
	Store      store.KVStore
	Reconciler Reconciler
	Assistant  *assistant.Assistant
	Telemetry  telemetry.Client
	Logger     *slog.Logger
}

// Session is a single logical user session.
type Session struct {
	store      store.KVStore
	reconciler Reconciler
	assistant  *assistant.Assistant
	telemetry  telemetry.Client
	logger     *slog.Logger

	mu      sync.RWMutex
	user    string
	plan    models.Plan
	events  []models.Event
	conv    *assistant.Conversation
	version uint64

	reconciling atomic.Bool
}

// New creates a logged-out session.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.NewNoopClient()
	}
	return &Session{
		store:      opts.Store,
		reconciler: opts.Reconciler,
		assistant:  opts.Assistant,
		telemetry:  opts.Telemetry,
		logger:     opts.Logger,
		plan:       models.SeedPlan(),
		events:     models.SeedEvents(),
	}
}

// SanitizeIdentity trims and lower-cases identity.
func SanitizeIdentity(identity string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(identity))
	if id == "" {
		return "", types.NewValidationError("identity", "email is required")
	}
	return id, nil
}

// Login loads the user's saved plan and events, falling back to the seed
// data for anything never saved, and remembers the user for Restore.
func (s *Session) Login(ctx context.Context, identity string) error {
	id, err := SanitizeIdentity(identity)
	if err != nil {
		return err
	}

	plan := models.SeedPlan()
	if _, err := s.load(ctx, store.Key(store.NamespacePlan, id), &plan); err != nil {
		return err
	}
	events := models.SeedEvents()
	if _, err := s.load(ctx, store.Key(store.NamespaceEvents, id), &events); err != nil {
		return err
	}
	if err := s.store.Set(ctx, store.LastUserKey, []byte(id)); err != nil {
		return fmt.Errorf("remember user: %w", err)
	}

	s.mu.Lock()
	s.user = id
	s.plan = plan
	s.events = events
	s.conv = nil
	if s.assistant != nil {
		s.conv = assistant.NewConversation(s.assistant)
	}
	s.version++
	s.mu.Unlock()

	s.logger.Debug("session started", "guest", id == GuestIdentity, "incomplete", models.IncompleteCount(plan))
	s.telemetry.Track(telemetry.EventLogin, telemetry.Properties{"guest": id == GuestIdentity})
	return nil
}

// LoginGuest signs in with the guest identity.
func (s *Session) LoginGuest(ctx context.Context) error {
	return s.Login(ctx, GuestIdentity)
}

// Restore signs the last user back in. It reports false when nobody was
// signed in.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	raw, ok, err := s.store.Get(ctx, store.LastUserKey)
	if err != nil {
		return false, fmt.Errorf("read last user: %w", err)
	}
	if !ok || strings.TrimSpace(string(raw)) == "" {
		return false, nil
	}
	if err := s.Login(ctx, string(raw)); err != nil {
		return false, err
	}
	return true, nil
}

// Logout forgets the signed-in user and resets in-memory state. Saved
// plans and events are kept.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, store.LastUserKey); err != nil {
		return fmt.Errorf("forget user: %w", err)
	}

	s.mu.Lock()
	wasLoggedIn := s.user != ""
	s.user = ""
	s.plan = models.SeedPlan()
	s.events = models.SeedEvents()
	s.conv = nil
	s.version++
	s.mu.Unlock()

	if wasLoggedIn {
		s.telemetry.Track(telemetry.EventLogout, nil)
	}
	return nil
}

// User returns the signed-in identity, or "" when logged out.
func (s *Session) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Plan returns a copy of the current plan.
func (s *Session) Plan() models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan.Clone()
}

// Events returns a copy of the current events.
func (s *Session) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneEvents(s.events)
}

// IncompleteCount returns the number of open todos.
func (s *Session) IncompleteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.IncompleteCount(s.plan)
}

// Tasks returns the flattened, sorted task list.
func (s *Session) Tasks(mode timeline.SortMode, showCompleted bool) []timeline.FlatTask {
	return timeline.SortTasks(timeline.Flatten(s.Plan()), mode, showCompleted)
}

// GroupedEvents returns the events bucketed by g.
func (s *Session) GroupedEvents(g timeline.Granularity) []timeline.Bucket {
	return timeline.GroupEvents(s.Events(), g)
}

func (s *Session) load(ctx context.Context, key string, into any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Session) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// updatePlan applies fn to the current plan under the write lock,
// persists the result and only then installs it. Callers must not hold
// s.mu.
func (s *Session) updatePlan(ctx context.Context, fn func(models.Plan) (models.Plan, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == "" {
		return ErrNotLoggedIn
	}
	next, err := fn(s.plan)
	if err != nil {
		return err
	}
	if err := s.save(ctx, store.Key(store.NamespacePlan, s.user), next); err != nil {
		return err
	}
	s.plan = next
	s.version++
	return nil
}

func (s *Session) updateEvents(ctx context.Context, fn func([]models.Event) ([]models.Event, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == "" {
		return ErrNotLoggedIn
	}
	next, err := fn(s.events)
	if err != nil {
		return err
	}
	if err := s.save(ctx, store.Key(store.NamespaceEvents, s.user), next); err != nil {
		return err
	}
	s.events = next
	return nil
}

func (s *Session) conversation() (*assistant.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == "" {
		return nil, ErrNotLoggedIn
	}
	if s.conv == nil {
		return nil, ErrAssistantUnavailable
	}
	return s.conv, nil
}

// Transcript returns the chat transcript so far.
func (s *Session) Transcript() []models.Message {
	conv, err := s.conversation()
	if err != nil {
		return nil
	}
	return conv.Transcript()
}

// Chat sends message to the assistant and streams the reply.
func (s *Session) Chat(ctx context.Context, message string) iter.Seq2[string, error] {
	conv, err := s.conversation()
	if err != nil {
		return func(yield func(string, error) bool) { yield("", err) }
	}
	s.telemetry.Track(telemetry.EventChatTurn, nil)
	return conv.Send(ctx, message)
}

// Quote fetches a motivational quote. On failure the returned text is
// assistant.QuoteFallback.
func (s *Session) Quote(ctx context.Context, mood string) (string, error) {
	if s.assistant == nil {
		return assistant.QuoteFallback, ErrAssistantUnavailable
	}
	q, err := s.assistant.Quote(ctx, mood)
	s.telemetry.Track(telemetry.EventQuoteFetched, telemetry.Properties{"ok": err == nil})
	return q, err
}

// Generate runs a one-shot prompt.
func (s *Session) Generate(ctx context.Context, prompt string) (string, error) {
	if s.assistant == nil {
		return "", ErrAssistantUnavailable
	}
	return s.assistant.Generate(ctx, prompt)
}
