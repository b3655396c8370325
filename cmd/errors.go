package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/edutate/vanessa/internal/session"
	"github.com/edutate/vanessa/internal/ui"
	"github.com/edutate/vanessa/types"
	"github.com/spf13/viper"
)

// PrintError prints a user-friendly message. With --verbose the full
// technical error chain is printed instead.
func PrintError(w io.Writer, err error) {
	if viper.GetBool("verbose") {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, ui.StyleError.Render(userMessage(err)))
}

func userMessage(err error) string {
	var (
		ve *types.ValidationError
		nf *types.NotFoundError
		re *types.ReconciliationError
		te *types.TransportError
	)
	switch {
	case errors.Is(err, session.ErrAssistantUnavailable):
		return "No language model is configured. Set GEMINI_API_KEY or run `vanessa config set llm.apiKeys.gemini <key>`."
	case errors.Is(err, session.ErrReconcileInFlight):
		return "Another update is still being processed. Try again in a moment."
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &nf):
		return nf.Error()
	case errors.As(err, &re):
		msg := "Your plan was not changed: " + re.Reason + "."
		if len(re.Violations) > 0 {
			msg += "\n  - " + strings.Join(re.Violations, "\n  - ")
		}
		return msg
	case errors.As(err, &te):
		return "Couldn't reach the language model. Please try again."
	default:
		return "Error: " + err.Error()
	}
}

// exitCode maps errors onto process exit codes: 2 for bad input, 1 for
// everything else.
func exitCode(err error) int {
	var ve *types.ValidationError
	if errors.As(err, &ve) {
		return 2
	}
	return 1
}
