package ui

import (
	"fmt"
	"strings"

	"github.com/edutate/vanessa/internal/timeline"
	"github.com/edutate/vanessa/models"
)

func checkbox(done bool) string {
	if done {
		return StyleSuccess.Render("[x]")
	}
	return StyleSubtle.Render("[ ]")
}

func todoText(t models.Todo) string {
	if t.IsCompleted {
		return StyleDone.Render(t.Text)
	}
	return StyleText.Render(t.Text)
}

// RenderPlan lays out the plan section by section.
func RenderPlan(plan models.Plan) string {
	var sb strings.Builder
	for i, sec := range plan {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(StyleSectionTitle.Render(sec.Title) + "\n")
		for _, it := range sec.Items {
			fmt.Fprintf(&sb, "  %s %s %s\n",
				StyleTitle.Render(it.Title),
				StyleSubtle.Render("("+it.Date+")"),
				StatusStyle(it.Status).Render(string(it.Status)))
			for _, t := range it.Todos {
				fmt.Fprintf(&sb, "    %s %s %s\n", checkbox(t.IsCompleted), todoText(t), StyleSubtle.Render(t.ID))
				for _, st := range t.Subtasks {
					fmt.Fprintf(&sb, "        %s %s\n", checkbox(st.IsCompleted), st.Text)
				}
			}
		}
	}
	return sb.String()
}

// RenderTasks renders the flat task list as a table.
func RenderTasks(tasks []timeline.FlatTask) string {
	if len(tasks) == 0 {
		return StyleSubtle.Render("No tasks.") + "\n"
	}
	tbl := &Table{Headers: []string{"", "ID", "Task", "Priority", "Due", "Milestone"}, MaxWidth: 48}
	for _, t := range tasks {
		parent := ""
		if t.Parent != nil {
			parent = t.Parent.Title
		}
		tbl.Rows = append(tbl.Rows, []string{
			checkbox(t.IsCompleted),
			t.ID,
			todoText(t.Todo),
			PriorityStyle(t.Priority).Render(string(t.Priority)),
			t.DueDate,
			StyleSubtle.Render(parent),
		})
	}
	return tbl.Render()
}

// RenderEvents renders bucketed events.
func RenderEvents(buckets []timeline.Bucket) string {
	if len(buckets) == 0 {
		return StyleSubtle.Render("No events.") + "\n"
	}
	var sb strings.Builder
	for _, b := range buckets {
		sb.WriteString(StyleSectionTitle.Render(b.Label) + "\n")
		for _, ev := range b.Events {
			fmt.Fprintf(&sb, "  %s  %-10s %s %s\n",
				ev.Date,
				CategoryStyle(ev.Category).Render(string(ev.Category)),
				ev.Title,
				StyleSubtle.Render(ev.ID))
			if ev.Description != "" {
				fmt.Fprintf(&sb, "      %s\n", StyleSubtle.Render(ev.Description))
			}
		}
	}
	return sb.String()
}

// RenderChanges summarizes a reconciliation.
func RenderChanges(c timeline.Changes) string {
	if c.Empty() {
		return StyleSubtle.Render("No changes to your plan.") + "\n"
	}
	var sb strings.Builder
	for _, t := range c.Completed {
		fmt.Fprintf(&sb, "%s Completed %q (%s)\n", StyleSuccess.Render("✓"), t.Text, t.ItemTitle)
	}
	for _, t := range c.Reopened {
		fmt.Fprintf(&sb, "%s Reopened %q (%s)\n", StyleWarning.Render("↺"), t.Text, t.ItemTitle)
	}
	for _, it := range c.AddedItems {
		fmt.Fprintf(&sb, "%s New milestone %q\n", StylePrimary.Render("+"), it.Title)
	}
	for _, t := range c.AddedTasks {
		fmt.Fprintf(&sb, "%s New task %q (%s)\n", StylePrimary.Render("+"), t.Text, t.ItemTitle)
	}
	for _, it := range c.StatusChanges {
		fmt.Fprintf(&sb, "%s %s: %s → %s\n", StyleSubtle.Render("•"), it.Title, it.From, it.To)
	}
	return sb.String()
}

// RenderMessage prefixes a transcript entry with its speaker.
func RenderMessage(m models.Message) string {
	if m.Role == models.RoleUser {
		return StylePrefixUser.Render("You: ") + m.Text
	}
	return StylePrefixAssistant.Render("Vanessa: ") + m.Text
}
