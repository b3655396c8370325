package models

// Status is the rollup status of a timeline item.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Priority ranks a to-do. The empty value means no priority was set.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is one of the known priorities or unset.
func (p Priority) Valid() bool {
	switch p {
	case "", PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Subtask is a checklist entry owned by a single Todo.
type Subtask struct {
	ID          string `json:"id" validate:"required,nonempty"`
	Text        string `json:"text" validate:"required,nonempty"`
	IsCompleted bool   `json:"isCompleted"`
}

// Todo is a single actionable task under a timeline item.
type Todo struct {
	ID          string    `json:"id" validate:"required,nonempty"`
	Text        string    `json:"text" validate:"required,nonempty"`
	IsCompleted bool      `json:"isCompleted"`
	Priority    Priority  `json:"priority,omitempty" validate:"omitempty,oneof=High Medium Low"`
	DueDate     string    `json:"dueDate,omitempty" validate:"omitempty,isodate"`
	Notes       string    `json:"notes,omitempty"`
	Subtasks    []Subtask `json:"subtasks,omitempty" validate:"dive"`
}

// TimelineItem is a milestone in the application cycle. Its Status is
// always DeriveStatus(Todos).
type TimelineItem struct {
	ID          string `json:"id" validate:"required,nonempty"`
	Title       string `json:"title" validate:"required,nonempty"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Todos       []Todo `json:"todos" validate:"dive"`
	Status      Status `json:"status" validate:"required,oneof=todo in-progress done"`
}

// Section groups timeline items into a phase of the application cycle.
type Section struct {
	ID    string         `json:"id" validate:"required,nonempty"`
	Title string         `json:"title" validate:"required,nonempty"`
	Items []TimelineItem `json:"items" validate:"dive"`
}

// Plan is the ordered sequence of sections. Order is chronological and
// must be preserved by every transformation.
type Plan []Section

// DeriveStatus computes an item's rollup status from its todos.
func DeriveStatus(todos []Todo) Status {
	done := 0
	for _, t := range todos {
		if t.IsCompleted {
			done++
		}
	}
	switch {
	case done == 0:
		return StatusTodo
	case done == len(todos):
		return StatusDone
	default:
		return StatusInProgress
	}
}

// IncompleteCount returns the number of todos not yet completed across
// the whole plan.
func IncompleteCount(plan Plan) int {
	n := 0
	for _, s := range plan {
		for _, it := range s.Items {
			for _, t := range it.Todos {
				if !t.IsCompleted {
					n++
				}
			}
		}
	}
	return n
}

// Clone returns a deep copy of the todo.
func (t Todo) Clone() Todo {
	if t.Subtasks != nil {
		t.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	return t
}

// Clone returns a deep copy of the item.
func (it TimelineItem) Clone() TimelineItem {
	if it.Todos != nil {
		todos := make([]Todo, len(it.Todos))
		for i, t := range it.Todos {
			todos[i] = t.Clone()
		}
		it.Todos = todos
	}
	return it
}

// Clone returns a deep copy of the plan so callers can keep snapshots.
func (p Plan) Clone() Plan {
	if p == nil {
		return nil
	}
	out := make(Plan, len(p))
	for i, s := range p {
		if s.Items != nil {
			items := make([]TimelineItem, len(s.Items))
			for j, it := range s.Items {
				items[j] = it.Clone()
			}
			s.Items = items
		}
		out[i] = s
	}
	return out
}

// Items returns every timeline item in section order.
func (p Plan) Items() []TimelineItem {
	var items []TimelineItem
	for _, s := range p {
		items = append(items, s.Items...)
	}
	return items
}

// Location addresses a node in the plan by index.
type Location struct {
	Section int
	Item    int
	Todo    int
}

// FindItem locates a timeline item by id.
func (p Plan) FindItem(id string) (Location, bool) {
	for si, s := range p {
		for ii, it := range s.Items {
			if it.ID == id {
				return Location{Section: si, Item: ii, Todo: -1}, true
			}
		}
	}
	return Location{}, false
}

// FindTodo locates a todo by id.
func (p Plan) FindTodo(id string) (Location, bool) {
	for si, s := range p {
		for ii, it := range s.Items {
			for ti, t := range it.Todos {
				if t.ID == id {
					return Location{Section: si, Item: ii, Todo: ti}, true
				}
			}
		}
	}
	return Location{}, false
}
