package cmd

import (
	"context"
	"fmt"

	"github.com/edutate/vanessa/internal/task"
	"github.com/edutate/vanessa/internal/timeline"
	"github.com/edutate/vanessa/internal/ui"
	"github.com/edutate/vanessa/models"
	"github.com/spf13/cobra"
)

var (
	tasksSort          string
	tasksHideCompleted bool

	taskItemID   string
	taskPriority string
	taskDue      string
	taskNotes    string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the full application timeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app) error {
			out := cmd.OutOrStdout()
			ui.RenderPageHeader(out, "Your plan", fmt.Sprintf("%d open tasks", a.session.IncompleteCount()))
			fmt.Fprint(out, ui.RenderPlan(a.session.Plan()))
			return nil
		})
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List every task across the plan",
	Example: `  vanessa tasks
  vanessa tasks --sort priority --hide-completed`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := timeline.ParseSortMode(tasksSort)
		if err != nil {
			return err
		}
		return withUser(cmd, func(ctx context.Context, a *app) error {
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderTasks(a.session.Tasks(mode, !tasksHideCompleted)))
			return nil
		})
	},
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Add, edit or toggle a task",
}

func taskInput(text string) task.TaskInput {
	return task.TaskInput{
		Text:     text,
		Priority: models.Priority(taskPriority),
		DueDate:  taskDue,
		Notes:    taskNotes,
	}
}

var taskAddCmd = &cobra.Command{
	Use:     "add <text>",
	Short:   "Add a task under a milestone",
	Example: `  vanessa task add "Ask Ms. Lee for a rec letter" --item srf-2 --priority High --due 2025-05-01`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if taskItemID == "" {
			return fmt.Errorf("--item is required")
		}
		return withUser(cmd, func(ctx context.Context, a *app) error {
			todo, err := a.session.UpsertTask(ctx, taskInput(args[0]), taskItemID, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s\n", ui.StyleSuccess.Render("+"), todo.ID)
			return nil
		})
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <task-id> <text>",
	Short: "Replace a task's text and details",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app) error {
			todo, err := a.session.UpsertTask(ctx, taskInput(args[1]), "", args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", todo.ID)
			return nil
		})
	},
}

var taskToggleCmd = &cobra.Command{
	Use:   "toggle <task-id>",
	Short: "Mark a task done or not done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app) error {
			if err := a.session.ToggleTask(ctx, args[0]); err != nil {
				return err
			}
			return printToggled(cmd, a.session.Plan(), args[0])
		})
	},
}

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Work with subtasks",
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "toggle <task-id> <subtask-id>",
	Short: "Mark a subtask done or not done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app) error {
			if err := a.session.ToggleSubtask(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Toggled subtask %s\n", args[1])
			return nil
		})
	},
}

func printToggled(cmd *cobra.Command, plan models.Plan, taskID string) error {
	loc, ok := plan.FindTodo(taskID)
	if !ok {
		return nil
	}
	t := plan[loc.Section].Items[loc.Item].Todos[loc.Todo]
	state := ui.StyleSubtle.Render("open")
	if t.IsCompleted {
		state = ui.StyleSuccess.Render("done")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", t.Text, state)
	return nil
}

func init() {
	tasksCmd.Flags().StringVar(&tasksSort, "sort", string(timeline.SortDefault), "sort order: default, priority or dueDate")
	tasksCmd.Flags().BoolVar(&tasksHideCompleted, "hide-completed", false, "hide completed tasks")

	for _, c := range []*cobra.Command{taskAddCmd, taskEditCmd} {
		c.Flags().StringVar(&taskPriority, "priority", "", "High, Medium or Low")
		c.Flags().StringVar(&taskDue, "due", "", "due date (YYYY-MM-DD)")
		c.Flags().StringVar(&taskNotes, "notes", "", "free-form notes")
	}
	taskAddCmd.Flags().StringVar(&taskItemID, "item", "", "milestone id to add the task under")

	taskCmd.AddCommand(taskAddCmd, taskEditCmd, taskToggleCmd)
	subtaskCmd.AddCommand(subtaskToggleCmd)
	rootCmd.AddCommand(planCmd, tasksCmd, taskCmd, subtaskCmd)
}
