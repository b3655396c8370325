package timeline

import "github.com/edutate/vanessa/models"

// TaskChange names a todo together with the item that owns it.
type TaskChange struct {
	TaskID    string `json:"taskId"`
	Text      string `json:"text"`
	ItemID    string `json:"itemId"`
	ItemTitle string `json:"itemTitle"`
}

// ItemChange names a timeline item and, for status changes, the old and
// new rollup status.
type ItemChange struct {
	ItemID    string        `json:"itemId"`
	Title     string        `json:"title"`
	SectionID string        `json:"sectionId"`
	From      models.Status `json:"from,omitempty"`
	To        models.Status `json:"to,omitempty"`
}

// Changes summarizes what differs between two plans.
type Changes struct {
	Completed     []TaskChange `json:"completed,omitempty"`
	Reopened      []TaskChange `json:"reopened,omitempty"`
	AddedTasks    []TaskChange `json:"addedTasks,omitempty"`
	AddedItems    []ItemChange `json:"addedItems,omitempty"`
	StatusChanges []ItemChange `json:"statusChanges,omitempty"`
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Completed) == 0 && len(c.Reopened) == 0 && len(c.AddedTasks) == 0 &&
		len(c.AddedItems) == 0 && len(c.StatusChanges) == 0
}

// Diff compares two plans by id.
func Diff(before, after models.Plan) Changes {
	var c Changes

	prevTasks := make(map[string]models.Todo)
	for _, ft := range Flatten(before) {
		prevTasks[ft.ID] = ft.Todo
	}
	prevItems := make(map[string]models.TimelineItem)
	for _, it := range before.Items() {
		prevItems[it.ID] = it
	}

	for _, s := range after {
		for _, it := range s.Items {
			old, existed := prevItems[it.ID]
			if !existed {
				c.AddedItems = append(c.AddedItems, ItemChange{ItemID: it.ID, Title: it.Title, SectionID: s.ID, To: it.Status})
			} else if old.Status != it.Status {
				c.StatusChanges = append(c.StatusChanges, ItemChange{ItemID: it.ID, Title: it.Title, SectionID: s.ID, From: old.Status, To: it.Status})
			}

			for _, td := range it.Todos {
				tc := TaskChange{TaskID: td.ID, Text: td.Text, ItemID: it.ID, ItemTitle: it.Title}
				prev, ok := prevTasks[td.ID]
				switch {
				case !ok:
					c.AddedTasks = append(c.AddedTasks, tc)
				case !prev.IsCompleted && td.IsCompleted:
					c.Completed = append(c.Completed, tc)
				case prev.IsCompleted && !td.IsCompleted:
					c.Reopened = append(c.Reopened, tc)
				}
			}
		}
	}
	return c
}
