package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edutate/vanessa/internal/assistant"
	"github.com/edutate/vanessa/internal/session"
	"github.com/edutate/vanessa/internal/ui"
	"github.com/edutate/vanessa/types"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask Vanessa a question",
	Long: `Send one message to the college counselor assistant and stream the
reply. Each invocation starts a fresh conversation.`,
	Example: `  vanessa chat "How many schools should I apply to?"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := strings.Join(args, " ")
		return withUser(cmd, func(ctx context.Context, a *app) error {
			out := cmd.OutOrStdout()
			fmt.Fprint(out, ui.StylePrefixAssistant.Render("Vanessa: "))
			wrote := false
			for chunk, err := range a.session.Chat(ctx, msg) {
				if err != nil {
					if !isTransportFailure(err) {
						fmt.Fprintln(out)
						return err
					}
					slog.Debug("chat fallback", "error", err)
					if wrote {
						fmt.Fprint(out, "\n\n")
					}
					fmt.Fprint(out, assistant.ChatFallback)
					break
				}
				wrote = true
				fmt.Fprint(out, chunk)
			}
			fmt.Fprintln(out)
			return nil
		})
	},
}

var quoteCmd = &cobra.Command{
	Use:   "quote [mood]",
	Short: "Get a motivational quote",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mood := ""
		if len(args) == 1 {
			mood = args[0]
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			q, err := a.session.Quote(ctx, mood)
			if err != nil && q == "" {
				q = assistant.QuoteFallback
			}
			if err != nil {
				slog.Debug("quote fallback", "error", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderPanel("", q, ui.ColorPrimary))
			return nil
		})
	},
}

// isTransportFailure reports whether err came from the model provider
// rather than from bad input or a missing configuration.
func isTransportFailure(err error) bool {
	var ve *types.ValidationError
	return !errors.As(err, &ve) &&
		!errors.Is(err, session.ErrAssistantUnavailable) &&
		!errors.Is(err, session.ErrNotLoggedIn) &&
		!errors.Is(err, assistant.ErrTurnInFlight)
}

func init() {
	rootCmd.AddCommand(chatCmd, quoteCmd)
}
