package session

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"sync"
	"testing"

	"github.com/edutate/vanessa/internal/assistant"
	"github.com/edutate/vanessa/internal/planner"
	"github.com/edutate/vanessa/internal/task"
	"github.com/edutate/vanessa/internal/timeline"
	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/store"
	"github.com/edutate/vanessa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	*store.MemoryStore
	setErr error
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type fakeReconciler struct {
	mu      sync.Mutex
	calls   int
	gate    chan struct{}
	entered chan struct{}
	fn      func(models.Plan) (*planner.Result, error)
}

func (f *fakeReconciler) Reconcile(_ context.Context, plan models.Plan, _ string) (*planner.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.fn(plan)
}

type recordingTracker struct {
	mu     sync.Mutex
	events []string
	props  []map[string]any
}

func (r *recordingTracker) Track(event string, properties map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.props = append(r.props, properties)
}

func (r *recordingTracker) Close() error { return nil }

type echoTransport struct{}

func (echoTransport) Generate(_ context.Context, prompt string) (string, error) {
	return "echo: " + prompt, nil
}

func (echoTransport) Stream(_ context.Context, _ []models.Message, message string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !yield("you said ", nil) {
			return
		}
		yield(message, nil)
	}
}

func completeFirst(plan models.Plan) (*planner.Result, error) {
	next := plan.Clone()
	next[0].Items[0].Todos[0].IsCompleted = true
	next[0].Items[0].Status = models.DeriveStatus(next[0].Items[0].Todos)
	return &planner.Result{Plan: next, Changes: timeline.Diff(plan, next), Attempts: 1}, nil
}

func newTestSession(t *testing.T) (*Session, *store.MemoryStore) {
	t.Helper()
	kv := store.NewMemoryStore()
	s := New(Options{
		Store:      kv,
		Reconciler: &fakeReconciler{fn: completeFirst},
		Assistant:  assistant.New(echoTransport{}, nil),
	})
	return s, kv
}

func TestLogin_SanitizesIdentityAndSeeds(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestSession(t)

	require.NoError(t, s.Login(ctx, "  Student@Example.COM "))
	assert.Equal(t, "student@example.com", s.User())
	assert.Equal(t, models.SeedPlan(), s.Plan())
	assert.Equal(t, models.SeedEvents(), s.Events())

	last, ok, err := kv.Get(ctx, store.LastUserKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "student@example.com", string(last))
}

func TestLogin_EmptyIdentity(t *testing.T) {
	s, _ := newTestSession(t)
	err := s.Login(context.Background(), "   ")
	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, s.User())
}

func TestLogin_LoadsSavedState(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestSession(t)

	saved := models.SeedPlan()
	saved[0].Items[0].Todos[0].IsCompleted = true
	data, err := json.Marshal(saved)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, store.Key(store.NamespacePlan, "a@b.com"), data))

	require.NoError(t, s.Login(ctx, "a@b.com"))
	assert.True(t, s.Plan()[0].Items[0].Todos[0].IsCompleted)
	assert.Equal(t, models.SeedEvents(), s.Events(), "events never saved fall back to seed")
}

func TestLogin_CorruptStateIsAnError(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestSession(t)
	require.NoError(t, kv.Set(ctx, store.Key(store.NamespacePlan, "a@b.com"), []byte("{not json")))

	assert.Error(t, s.Login(ctx, "a@b.com"))
	assert.Empty(t, s.User())
}

func TestRestoreAndLogout(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()

	first := New(Options{Store: kv})
	require.NoError(t, first.Login(ctx, "a@b.com"))
	require.NoError(t, first.ToggleTask(ctx, "jrs-1-t1"))

	second := New(Options{Store: kv})
	ok, err := second.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", second.User())
	assert.True(t, second.Plan()[0].Items[0].Todos[0].IsCompleted)

	require.NoError(t, second.Logout(ctx))
	assert.Empty(t, second.User())
	assert.Equal(t, models.SeedPlan(), second.Plan())

	third := New(Options{Store: kv})
	ok, err = third.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Saved data survives logout.
	require.NoError(t, third.Login(ctx, "a@b.com"))
	assert.True(t, third.Plan()[0].Items[0].Todos[0].IsCompleted)
}

func TestUsersArePartitioned(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	require.NoError(t, s.Login(ctx, "a@b.com"))
	require.NoError(t, s.ToggleTask(ctx, "jrs-1-t1"))
	require.NoError(t, s.LoginGuest(ctx))
	assert.Equal(t, GuestIdentity, s.User())
	assert.False(t, s.Plan()[0].Items[0].Todos[0].IsCompleted)
}

func TestMutations_RequireLogin(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	assert.ErrorIs(t, s.ToggleTask(ctx, "jrs-1-t1"), ErrNotLoggedIn)
	assert.ErrorIs(t, s.DeleteEvent(ctx, "evt-1"), ErrNotLoggedIn)
	_, err := s.Reconcile(ctx, "I registered for the SAT")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = drainChat(s.Chat(ctx, "hi"))
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestToggleAndUpsert(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestSession(t)
	require.NoError(t, s.Login(ctx, "a@b.com"))

	before := s.IncompleteCount()
	require.NoError(t, s.ToggleTask(ctx, "jrs-1-t1"))
	assert.Equal(t, before-1, s.IncompleteCount())

	require.NoError(t, s.ToggleSubtask(ctx, "jrs-2-t1", "jrs-2-t1-s1"))
	assert.False(t, s.Plan()[0].Items[1].Todos[0].Subtasks[0].IsCompleted)

	todo, err := s.UpsertTask(ctx, task.TaskInput{Text: "Visit campus", Priority: models.PriorityLow}, "srs-2", "")
	require.NoError(t, err)
	loc, ok := s.Plan().FindTodo(todo.ID)
	require.True(t, ok)
	assert.Equal(t, "srs-2", s.Plan()[loc.Section].Items[loc.Item].ID)

	raw, ok, err := kv.Get(ctx, store.Key(store.NamespacePlan, "a@b.com"))
	require.NoError(t, err)
	require.True(t, ok)
	var persisted models.Plan
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, s.Plan(), persisted)

	var nf *types.NotFoundError
	assert.ErrorAs(t, s.ToggleTask(ctx, "missing"), &nf)
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	require.NoError(t, s.Login(ctx, "a@b.com"))

	ev, err := s.UpsertEvent(ctx, task.EventInput{Title: "Interview", Date: "2024-12-02", Category: "visit"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryVisit, ev.Category)
	assert.Len(t, s.Events(), len(models.SeedEvents())+1)

	require.NoError(t, s.DeleteEvent(ctx, ev.ID))
	require.NoError(t, s.DeleteEvent(ctx, ev.ID))
	assert.Len(t, s.Events(), len(models.SeedEvents()))

	buckets := s.GroupedEvents(timeline.GroupMonth)
	require.NotEmpty(t, buckets)
	assert.Equal(t, "2024-08", buckets[0].Key)
}

func TestPersistFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	kv := &flakyStore{MemoryStore: store.NewMemoryStore()}
	s := New(Options{Store: kv})
	require.NoError(t, s.Login(ctx, "a@b.com"))

	kv.setErr = errors.New("disk full")
	assert.ErrorContains(t, s.ToggleTask(ctx, "jrs-1-t1"), "disk full")
	assert.False(t, s.Plan()[0].Items[0].Todos[0].IsCompleted)

	_, err := s.UpsertEvent(ctx, task.EventInput{Title: "x", Date: "2024-12-02"}, "")
	assert.Error(t, err)
	assert.Len(t, s.Events(), len(models.SeedEvents()))
}

func TestReconcile_AppliesAndPersists(t *testing.T) {
	ctx := context.Background()
	tracker := &recordingTracker{}
	kv := store.NewMemoryStore()
	s := New(Options{Store: kv, Reconciler: &fakeReconciler{fn: completeFirst}, Telemetry: tracker})
	require.NoError(t, s.Login(ctx, "a@b.com"))

	res, err := s.Reconcile(ctx, "I registered for the SAT")
	require.NoError(t, err)
	require.Len(t, res.Changes.Completed, 1)
	assert.True(t, s.Plan()[0].Items[0].Todos[0].IsCompleted)

	raw, _, err := kv.Get(ctx, store.Key(store.NamespacePlan, "a@b.com"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"isCompleted":true`)

	assert.Contains(t, tracker.events, "reconcile_accepted")
	for _, p := range tracker.props {
		for _, v := range p {
			assert.NotEqual(t, "a@b.com", v, "telemetry must not carry the identity")
		}
	}
}

func TestReconcile_RejectionKeepsPlan(t *testing.T) {
	ctx := context.Background()
	rejection := &types.ReconciliationError{Reason: "oracle output failed validation", Violations: []string{"task \"jrs-1-t1\" was removed"}}
	s := New(Options{
		Store:      store.NewMemoryStore(),
		Reconciler: &fakeReconciler{fn: func(models.Plan) (*planner.Result, error) { return nil, rejection }},
	})
	require.NoError(t, s.Login(ctx, "a@b.com"))
	before := s.Plan()

	_, err := s.Reconcile(ctx, "update")
	var re *types.ReconciliationError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, before, s.Plan())
}

func TestReconcile_RejectsConcurrentCall(t *testing.T) {
	ctx := context.Background()
	rec := &fakeReconciler{fn: completeFirst, gate: make(chan struct{}), entered: make(chan struct{})}
	s := New(Options{Store: store.NewMemoryStore(), Reconciler: rec})
	require.NoError(t, s.Login(ctx, "a@b.com"))

	done := make(chan error, 1)
	go func() {
		_, err := s.Reconcile(ctx, "first")
		done <- err
	}()
	<-rec.entered

	_, err := s.Reconcile(ctx, "second")
	assert.ErrorIs(t, err, ErrReconcileInFlight)

	close(rec.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, rec.calls)
}

func TestReconcile_DiscardsResultWhenPlanChanged(t *testing.T) {
	ctx := context.Background()
	rec := &fakeReconciler{fn: completeFirst, gate: make(chan struct{}), entered: make(chan struct{})}
	s := New(Options{Store: store.NewMemoryStore(), Reconciler: rec})
	require.NoError(t, s.Login(ctx, "a@b.com"))

	done := make(chan error, 1)
	go func() {
		_, err := s.Reconcile(ctx, "update")
		done <- err
	}()
	<-rec.entered

	require.NoError(t, s.ToggleTask(ctx, "srf-1-t1"))
	close(rec.gate)

	err := <-done
	var re *types.ReconciliationError
	require.ErrorAs(t, err, &re)
	assert.True(t, s.Plan()[2].Items[0].Todos[0].IsCompleted, "manual edit survives")
	assert.False(t, s.Plan()[0].Items[0].Todos[0].IsCompleted, "stale result discarded")
}

func TestReconcile_Unconfigured(t *testing.T) {
	s := New(Options{Store: store.NewMemoryStore()})
	require.NoError(t, s.Login(context.Background(), "a@b.com"))
	_, err := s.Reconcile(context.Background(), "x")
	assert.ErrorIs(t, err, ErrAssistantUnavailable)

	q, err := s.Quote(context.Background(), "")
	assert.ErrorIs(t, err, ErrAssistantUnavailable)
	assert.Equal(t, assistant.QuoteFallback, q)
}

func drainChat(seq iter.Seq2[string, error]) (string, error) {
	var out string
	var last error
	for chunk, err := range seq {
		out += chunk
		if err != nil {
			last = err
		}
	}
	return out, last
}

func TestChat(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	require.NoError(t, s.Login(ctx, "a@b.com"))

	reply, err := drainChat(s.Chat(ctx, "hello"))
	require.NoError(t, err)
	assert.Equal(t, "you said hello", reply)

	transcript := s.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, assistant.Greeting, transcript[0].Text)
	assert.Equal(t, models.RoleModel, transcript[2].Role)
	assert.Equal(t, "you said hello", transcript[2].Text)

	// A new login starts a new conversation.
	require.NoError(t, s.LoginGuest(ctx))
	assert.Len(t, s.Transcript(), 1)

	out, err := s.Generate(ctx, "plan my week")
	require.NoError(t, err)
	assert.Equal(t, "echo: plan my week", out)
}
