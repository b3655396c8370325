package cmd

import (
	"context"
	"fmt"

	"github.com/edutate/vanessa/internal/session"
	"github.com/edutate/vanessa/internal/ui"
	"github.com/spf13/cobra"
)

var loginGuest bool

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in and load your saved plan",
	Long: `Sign in with an email address. Your plan and events are stored under
that address on this machine; first-time users start from the default
junior-to-senior timeline.

Use --guest to skip the email.`,
	Example: `  vanessa login sam@example.com
  vanessa login --guest`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !loginGuest && len(args) == 0 {
			return fmt.Errorf("provide an email address or use --guest")
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			identity := session.GuestIdentity
			if !loginGuest {
				identity = args[0]
			}
			if err := a.session.Login(ctx, identity); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Signed in as %s\n", ui.StyleSuccess.Render("✓"), a.session.User())
			fmt.Fprintf(out, "  %d open tasks on your plan.\n", a.session.IncompleteCount())
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out (your saved plan stays on disk)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.session.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in and a plan summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			out := cmd.OutOrStdout()
			user := a.session.User()
			if user == "" {
				fmt.Fprintln(out, ui.StyleSubtle.Render("Not signed in."))
				return nil
			}
			ui.RenderPageHeader(out, "Vanessa", "Signed in as "+user)
			fmt.Fprintf(out, "  Open tasks: %d\n", a.session.IncompleteCount())
			fmt.Fprintf(out, "  Events:     %d\n", len(a.session.Events()))
			llmState := ui.StyleWarning.Render("not configured")
			if a.assistant != nil {
				llmState = ui.StyleSuccess.Render("ready")
			}
			fmt.Fprintf(out, "  Assistant:  %s\n", llmState)
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().BoolVar(&loginGuest, "guest", false, "continue without an email address")
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)
}
