// Package timeline provides read-only projections of a plan: the flat
// task list, task sorting, event bucketing and plan diffs.
package timeline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/edutate/vanessa/models"
)

// FlatTask is a todo projected with a back-reference to its owning item.
// Parent points into the plan that was flattened and must be treated as
// read-only; mutations go through the task service.
type FlatTask struct {
	models.Todo
	Parent    *models.TimelineItem `json:"parent"`
	SectionID string               `json:"sectionId"`
}

// SortMode selects the secondary ordering of SortTasks.
type SortMode string

const (
	SortDefault  SortMode = "default"
	SortPriority SortMode = "priority"
	SortDueDate  SortMode = "dueDate"
)

// ParseSortMode resolves a user-supplied sort mode, case-insensitively.
// An empty string selects SortDefault.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return SortDefault, nil
	case "priority":
		return SortPriority, nil
	case "duedate", "due", "due-date":
		return SortDueDate, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q (expected default, priority or dueDate)", s)
	}
}

// Flatten lists every todo in section, item, then todo order.
func Flatten(plan models.Plan) []FlatTask {
	var out []FlatTask
	for si := range plan {
		for ii := range plan[si].Items {
			item := &plan[si].Items[ii]
			for _, td := range item.Todos {
				out = append(out, FlatTask{Todo: td, Parent: item, SectionID: plan[si].ID})
			}
		}
	}
	return out
}

// priorityRank orders High < Medium < Low < unset.
func priorityRank(p models.Priority) int {
	switch p {
	case models.PriorityHigh:
		return 1
	case models.PriorityMedium:
		return 2
	case models.PriorityLow:
		return 3
	default:
		return 4
	}
}

func compareTasks(mode SortMode) func(a, b FlatTask) int {
	return func(a, b FlatTask) int {
		// Completed tasks always trail.
		if a.IsCompleted != b.IsCompleted {
			if a.IsCompleted {
				return 1
			}
			return -1
		}
		switch mode {
		case SortPriority:
			return priorityRank(a.Priority) - priorityRank(b.Priority)
		case SortDueDate:
			switch {
			case a.DueDate == "" && b.DueDate == "":
				return 0
			case a.DueDate == "":
				return 1
			case b.DueDate == "":
				return -1
			}
			return strings.Compare(a.DueDate, b.DueDate)
		}
		return 0
	}
}

// SortTasks returns a sorted copy of tasks. Incomplete tasks come first;
// mode orders within each group, ties keep their input order. When
// showCompleted is false completed tasks are dropped after sorting.
func SortTasks(tasks []FlatTask, mode SortMode, showCompleted bool) []FlatTask {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, compareTasks(mode))
	if showCompleted {
		return sorted
	}
	return slices.DeleteFunc(sorted, func(t FlatTask) bool { return t.IsCompleted })
}
