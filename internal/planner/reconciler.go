package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/edutate/vanessa/internal/timeline"
	"github.com/edutate/vanessa/internal/utils"
	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/types"
)

const (
	// DefaultRetryDelay is the base delay between attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// feedbackLimit caps how much of a failed output is echoed back.
	feedbackLimit = 500
)

// StructuredRequest is one schema-constrained generation call.
type StructuredRequest struct {
	SystemInstruction string
	Prompt            string
	Schema            *Schema
}

// Oracle generates JSON conforming to a schema. Implementations are
// untrusted: whatever they return is parsed and validated locally.
type Oracle interface {
	GenerateStructured(ctx context.Context, req StructuredRequest) (string, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, req StructuredRequest) (string, error)

func (f OracleFunc) GenerateStructured(ctx context.Context, req StructuredRequest) (string, error) {
	return f(ctx, req)
}

// Config tunes the reconciler.
type Config struct {
	// MaxAttempts bounds oracle calls per reconciliation. Values below 1
	// mean a single attempt.
	MaxAttempts int
	// Timeout applies to each oracle call. Zero disables it.
	Timeout time.Duration
	// RetryDelay is multiplied by the attempt number between attempts.
	RetryDelay time.Duration
}

// Result is an accepted reconciliation.
type Result struct {
	Plan      models.Plan
	Changes   timeline.Changes
	Attempts  int
	Duration  time.Duration
	RawOutput string
}

// Reconciler merges free-text progress updates into a plan.
type Reconciler struct {
	oracle Oracle
	cfg    Config
	logger *slog.Logger
	tmpl   *template.Template

	// now is overridable for tests.
	now func() time.Time
}

// NewReconciler creates a reconciler backed by oracle. A nil logger uses
// slog.Default().
func NewReconciler(oracle Oracle, cfg Config, logger *slog.Logger) *Reconciler {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		oracle: oracle,
		cfg:    cfg,
		logger: logger,
		tmpl:   template.Must(template.New("reconcile").Parse(reconcilePromptTemplate)),
		now:    time.Now,
	}
}

// Reconcile asks the oracle to apply update to plan and returns the
// validated result. plan is never modified. Any failure is reported as a
// *types.ReconciliationError, except an empty update, which is a
// *types.ValidationError and never reaches the oracle.
func (r *Reconciler) Reconcile(ctx context.Context, plan models.Plan, update string) (*Result, error) {
	update = strings.TrimSpace(update)
	if update == "" {
		return nil, types.NewValidationError("update", "update text is required")
	}

	start := time.Now()
	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, &types.ReconciliationError{Reason: "encode plan", Err: err}
	}
	input := map[string]any{
		"Today":  r.now().Format("2006-01-02"),
		"Plan":   string(planJSON),
		"Update": update,
	}
	schema := PlanSchema()

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := r.wait(ctx, attempt-1); err != nil {
				return nil, &types.ReconciliationError{Reason: "oracle call cancelled", Err: err}
			}
		}

		var buf bytes.Buffer
		if err := r.tmpl.Execute(&buf, input); err != nil {
			return nil, &types.ReconciliationError{Reason: "render prompt", Err: err}
		}

		raw, err := r.call(ctx, StructuredRequest{
			SystemInstruction: SystemInstruction,
			Prompt:            buf.String(),
			Schema:            schema,
		})
		if err != nil {
			lastErr = oracleFailure(err)
			r.logger.Warn("reconcile oracle call failed", "attempt", attempt, "error", err)
			if isTransientError(err) && ctx.Err() == nil {
				continue
			}
			return nil, lastErr
		}

		candidate, err := utils.ExtractAndParseJSON[models.Plan](raw)
		if err != nil {
			lastErr = &types.ReconciliationError{Reason: "oracle returned unparseable output", Err: err}
			r.logger.Warn("reconcile output unparseable", "attempt", attempt, "error", err)
			input["ValidationErrors"] = formatErrorFeedback("JSON Parse Error", err.Error(), raw)
			continue
		}

		result := ValidatePlan(plan, candidate)
		if !result.Valid {
			lastErr = &types.ReconciliationError{
				Reason:     "oracle output failed validation",
				Violations: result.Messages(),
			}
			r.logger.Warn("reconcile output rejected", "attempt", attempt, "violations", len(result.Violations))
			input["ValidationErrors"] = formatValidationFeedback(result)
			continue
		}

		changes := timeline.Diff(plan, candidate)
		r.logger.Debug("reconcile accepted",
			"attempt", attempt,
			"completed", len(changes.Completed),
			"added_items", len(changes.AddedItems),
			"duration", time.Since(start))
		return &Result{
			Plan:      candidate,
			Changes:   changes,
			Attempts:  attempt,
			Duration:  time.Since(start),
			RawOutput: raw,
		}, nil
	}
	return nil, lastErr
}

func (r *Reconciler) call(ctx context.Context, req StructuredRequest) (string, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	return r.oracle.GenerateStructured(ctx, req)
}

func (r *Reconciler) wait(ctx context.Context, n int) error {
	t := time.NewTimer(r.cfg.RetryDelay * time.Duration(n))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func oracleFailure(err error) *types.ReconciliationError {
	reason := "oracle call failed"
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "oracle call timed out"
	}
	return &types.ReconciliationError{Reason: reason, Err: err}
}

// formatErrorFeedback creates a prompt section for error feedback.
func formatErrorFeedback(errorType, errorMsg, rawOutput string) string {
	truncated := utils.Clip(rawOutput, feedbackLimit, "... [truncated]")

	return fmt.Sprintf(`
PREVIOUS ATTEMPT FAILED - PLEASE FIX

Error Type: %s
Error: %s

Your previous output (which failed):
%s

Please ensure your response is valid JSON matching the required schema.
`, errorType, errorMsg, truncated)
}

// formatValidationFeedback creates detailed validation error feedback.
func formatValidationFeedback(result ValidationResult) string {
	var sb strings.Builder
	sb.WriteString("\nPREVIOUS ATTEMPT FAILED - VALIDATION ERRORS\n\n")
	sb.WriteString("Please fix the following issues:\n")

	for i, v := range result.Violations {
		fmt.Fprintf(&sb, "%d. Field '%s': %s\n", i+1, v.Field, v.Message)
		if v.Value != nil {
			fmt.Fprintf(&sb, "   Current value: %v\n", v.Value)
		}
	}

	sb.WriteString("\nPlease regenerate the full timeline with these issues corrected.\n")
	return sb.String()
}

// isTransientError checks if an error is transient and worth retrying.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())

	// Rate limit errors
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "quota exceeded") {
		return true
	}

	// Network errors
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "temporary") {
		return true
	}

	return false
}
