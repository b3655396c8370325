package session

import (
	"context"
	"errors"

	"github.com/edutate/vanessa/internal/planner"
	"github.com/edutate/vanessa/internal/task"
	"github.com/edutate/vanessa/internal/telemetry"
	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/types"
)

// ToggleTask flips a todo's completion.
func (s *Session) ToggleTask(ctx context.Context, taskID string) error {
	err := s.updatePlan(ctx, func(p models.Plan) (models.Plan, error) {
		return task.ToggleTask(p, taskID)
	})
	if err == nil {
		s.telemetry.Track(telemetry.EventTaskToggled, telemetry.Properties{"subtask": false})
	}
	return err
}

// ToggleSubtask flips a subtask's completion.
func (s *Session) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	err := s.updatePlan(ctx, func(p models.Plan) (models.Plan, error) {
		return task.ToggleSubtask(p, taskID, subtaskID)
	})
	if err == nil {
		s.telemetry.Track(telemetry.EventTaskToggled, telemetry.Properties{"subtask": true})
	}
	return err
}

// UpsertTask creates a todo under parentItemID, or edits taskID.
func (s *Session) UpsertTask(ctx context.Context, in task.TaskInput, parentItemID, taskID string) (models.Todo, error) {
	var saved models.Todo
	err := s.updatePlan(ctx, func(p models.Plan) (models.Plan, error) {
		next, todo, err := task.UpsertTask(p, in, parentItemID, taskID)
		saved = todo
		return next, err
	})
	if err != nil {
		return models.Todo{}, err
	}
	s.telemetry.Track(telemetry.EventTaskSaved, telemetry.Properties{"created": taskID == ""})
	return saved, nil
}

// UpsertEvent creates an event, or edits eventID.
func (s *Session) UpsertEvent(ctx context.Context, in task.EventInput, eventID string) (models.Event, error) {
	var saved models.Event
	err := s.updateEvents(ctx, func(events []models.Event) ([]models.Event, error) {
		next, ev, err := task.UpsertEvent(events, in, eventID)
		saved = ev
		return next, err
	})
	if err != nil {
		return models.Event{}, err
	}
	s.telemetry.Track(telemetry.EventEventSaved, telemetry.Properties{"created": eventID == "", "category": string(saved.Category)})
	return saved, nil
}

// DeleteEvent removes an event. Absent ids are not an error.
func (s *Session) DeleteEvent(ctx context.Context, eventID string) error {
	err := s.updateEvents(ctx, func(events []models.Event) ([]models.Event, error) {
		return task.DeleteEvent(events, eventID), nil
	})
	if err == nil {
		s.telemetry.Track(telemetry.EventEventDeleted, nil)
	}
	return err
}

// Reconcile merges a free-text update into the plan. Only one
// reconciliation may be pending per session; a concurrent call fails
// with ErrReconcileInFlight. If the plan was changed by another
// operation while the oracle was working, the result is discarded.
func (s *Session) Reconcile(ctx context.Context, update string) (*planner.Result, error) {
	if s.reconciler == nil {
		return nil, ErrAssistantUnavailable
	}
	if !s.reconciling.CompareAndSwap(false, true) {
		return nil, ErrReconcileInFlight
	}
	defer s.reconciling.Store(false)

	s.mu.RLock()
	user, snapshot, version := s.user, s.plan.Clone(), s.version
	s.mu.RUnlock()
	if user == "" {
		return nil, ErrNotLoggedIn
	}

	res, err := s.reconciler.Reconcile(ctx, snapshot, update)
	if err != nil {
		var re *types.ReconciliationError
		if errors.As(err, &re) {
			s.logger.Warn("reconciliation rejected", "reason", re.Reason, "violations", len(re.Violations))
			s.telemetry.Track(telemetry.EventReconcileRejected, telemetry.Properties{"reason": re.Reason})
		}
		return nil, err
	}

	err = s.updatePlan(ctx, func(current models.Plan) (models.Plan, error) {
		if s.version != version || s.user != user {
			return nil, &types.ReconciliationError{Reason: "plan changed while the update was being processed"}
		}
		return res.Plan, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reconciliation applied",
		"completed", len(res.Changes.Completed),
		"added_items", len(res.Changes.AddedItems),
		"attempts", res.Attempts)
	s.telemetry.Track(telemetry.EventReconcileAccepted, telemetry.Properties{
		"attempts":    res.Attempts,
		"completed":   len(res.Changes.Completed),
		"added_items": len(res.Changes.AddedItems),
		"duration_ms": res.Duration.Milliseconds(),
	})
	return res, nil
}
