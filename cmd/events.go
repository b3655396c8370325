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
	eventsGroup string

	eventDate        string
	eventCategory    string
	eventDescription string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the calendar of deadlines, tests and visits",
	Example: `  vanessa events
  vanessa events --group week`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := timeline.ParseGranularity(eventsGroup)
		if err != nil {
			return err
		}
		return withUser(cmd, func(ctx context.Context, a *app) error {
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderEvents(a.session.GroupedEvents(g)))
			return nil
		})
	},
}

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Add, edit or delete a calendar event",
}

func eventInput(title string) task.EventInput {
	return task.EventInput{
		Title:       title,
		Date:        eventDate,
		Category:    models.Category(eventCategory),
		Description: eventDescription,
	}
}

var eventAddCmd = &cobra.Command{
	Use:     "add <title>",
	Short:   "Add an event",
	Example: `  vanessa event add "SAT" --date 2025-06-07 --category Testing`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app) error {
			ev, err := a.session.UpsertEvent(ctx, eventInput(args[0]), "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s on %s (%s)\n", ui.StyleSuccess.Render("+"), ev.Title, ev.Date, ev.ID)
			return nil
		})
	},
}

var eventEditCmd = &cobra.Command{
	Use:   "edit <event-id> <title>",
	Short: "Replace an event's details",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app) error {
			ev, err := a.session.UpsertEvent(ctx, eventInput(args[1]), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", ev.ID)
			return nil
		})
	},
}

var eventDeleteCmd = &cobra.Command{
	Use:     "delete <event-id>",
	Aliases: []string{"rm"},
	Short:   "Delete an event",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd, func(ctx context.Context, a *app) error {
			if err := a.session.DeleteEvent(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsGroup, "group", string(timeline.GroupDay), "group by day, week or month")

	for _, c := range []*cobra.Command{eventAddCmd, eventEditCmd} {
		c.Flags().StringVar(&eventDate, "date", "", "event date (YYYY-MM-DD)")
		c.Flags().StringVar(&eventCategory, "category", string(models.CategoryOther), "Deadline, Testing, Visit, To-Do or Other")
		c.Flags().StringVar(&eventDescription, "description", "", "optional details")
	}

	eventCmd.AddCommand(eventAddCmd, eventEditCmd, eventDeleteCmd)
	rootCmd.AddCommand(eventsCmd, eventCmd)
}
