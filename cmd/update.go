package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/edutate/vanessa/internal/planner"
	"github.com/edutate/vanessa/internal/ui"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <what happened>",
	Short: "Tell Vanessa what you got done and let her update your plan",
	Long: `Describe your progress in plain words. Vanessa asks the language model
to merge it into your plan, checks that nothing was lost or renamed, and
saves the result. If the proposed plan fails those checks, your plan is
left untouched.`,
	Example: `  vanessa update "I registered for the June SAT and finished my essay draft"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		return withUser(cmd, func(ctx context.Context, a *app) error {
			out := cmd.OutOrStdout()
			res, err := ui.Busy(cmd.ErrOrStderr(), "Updating your plan...", func() (*planner.Result, error) {
				return a.session.Reconcile(ctx, text)
			})
			if err != nil {
				return err
			}
			fmt.Fprint(out, ui.RenderChanges(res.Changes))
			fmt.Fprintf(out, "%s\n", ui.StyleSubtle.Render(fmt.Sprintf("%d open tasks remaining", a.session.IncompleteCount())))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
