// Package task is the mutation façade over the plan and the event log.
// Every operation is pure: it returns a new collection and never writes
// into the one it was given, so callers may keep earlier snapshots.
package task

import (
	"strings"

	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/types"
	"github.com/google/uuid"
)

// TaskInput holds the user-editable fields of a todo.
type TaskInput struct {
	Text     string          `json:"text"`
	Priority models.Priority `json:"priority,omitempty"`
	DueDate  string          `json:"dueDate,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

// NewTaskID mints a fresh todo id. It is a variable so tests can pin ids.
var NewTaskID = func() string {
	return "todo-" + uuid.NewString()
}

// Validate checks the input fields.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Text) == "" {
		return types.NewValidationError("text", "task text is required")
	}
	if !in.Priority.Valid() {
		return types.NewValidationError("priority", "priority must be High, Medium or Low")
	}
	if in.DueDate != "" && !models.IsISODate(in.DueDate) {
		return types.NewValidationError("dueDate", "due date must be formatted YYYY-MM-DD")
	}
	return nil
}

// ToggleTask flips a todo's completion flag and recomputes the owning
// item's status.
func ToggleTask(plan models.Plan, taskID string) (models.Plan, error) {
	loc, ok := plan.FindTodo(taskID)
	if !ok {
		return nil, types.NewNotFoundError("task", taskID)
	}
	next := plan.Clone()
	item := &next[loc.Section].Items[loc.Item]
	item.Todos[loc.Todo].IsCompleted = !item.Todos[loc.Todo].IsCompleted
	item.Status = models.DeriveStatus(item.Todos)
	return next, nil
}

// ToggleSubtask flips a subtask's completion flag. Subtasks are
// informational: the parent todo and item status are left alone.
func ToggleSubtask(plan models.Plan, taskID, subtaskID string) (models.Plan, error) {
	loc, ok := plan.FindTodo(taskID)
	if !ok {
		return nil, types.NewNotFoundError("task", taskID)
	}
	next := plan.Clone()
	todo := &next[loc.Section].Items[loc.Item].Todos[loc.Todo]
	for i := range todo.Subtasks {
		if todo.Subtasks[i].ID == subtaskID {
			todo.Subtasks[i].IsCompleted = !todo.Subtasks[i].IsCompleted
			return next, nil
		}
	}
	return nil, types.NewNotFoundError("subtask", subtaskID)
}

// UpsertTask edits or creates a todo. With a taskID it replaces text,
// priority, due date and notes in place, keeping id, completion and
// subtasks; parentItemID is ignored. Without one it appends a new,
// incomplete todo to parentItemID. The returned todo is the stored value.
func UpsertTask(plan models.Plan, in TaskInput, parentItemID, taskID string) (models.Plan, models.Todo, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := in.Validate(); err != nil {
		return nil, models.Todo{}, err
	}

	if taskID != "" {
		loc, ok := plan.FindTodo(taskID)
		if !ok {
			return nil, models.Todo{}, types.NewNotFoundError("task", taskID)
		}
		next := plan.Clone()
		todo := &next[loc.Section].Items[loc.Item].Todos[loc.Todo]
		todo.Text = in.Text
		todo.Priority = in.Priority
		todo.DueDate = in.DueDate
		todo.Notes = in.Notes
		return next, todo.Clone(), nil
	}

	loc, ok := plan.FindItem(parentItemID)
	if !ok {
		return nil, models.Todo{}, types.NewNotFoundError("item", parentItemID)
	}
	todo := models.Todo{
		ID:       NewTaskID(),
		Text:     in.Text,
		Priority: in.Priority,
		DueDate:  in.DueDate,
		Notes:    in.Notes,
	}
	next := plan.Clone()
	item := &next[loc.Section].Items[loc.Item]
	item.Todos = append(item.Todos, todo)
	item.Status = models.DeriveStatus(item.Todos)
	return next, todo, nil
}
