package server

import (
	"github.com/edutate/vanessa/internal/timeline"
	"github.com/edutate/vanessa/models"
)

// GenerateRequest is the payload for /api/generate
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse is the response for /api/generate
type GenerateResponse struct {
	Text string `json:"text"`
}

// LoginRequest is the payload for /api/login
type LoginRequest struct {
	Identity string `json:"identity"`
}

// StatusResponse describes the signed-in session
type StatusResponse struct {
	User            string `json:"user"`
	IncompleteCount int    `json:"incompleteCount"`
}

// TaskRequest creates or edits a todo. ParentItemID is required on create.
type TaskRequest struct {
	ParentItemID string          `json:"parentItemId,omitempty"`
	Text         string          `json:"text"`
	Priority     models.Priority `json:"priority,omitempty"`
	DueDate      string          `json:"dueDate,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// ReconcileRequest is the payload for /api/reconcile
type ReconcileRequest struct {
	Update string `json:"update"`
}

// ReconcileResponse carries the accepted plan and what changed
type ReconcileResponse struct {
	Plan     models.Plan      `json:"plan"`
	Changes  timeline.Changes `json:"changes"`
	Attempts int              `json:"attempts"`
}

// ChatRequest is the payload for /api/chat
type ChatRequest struct {
	Message string `json:"message"`
}

// QuoteRequest is the payload for /api/quote
type QuoteRequest struct {
	Mood string `json:"mood"`
}

// QuoteResponse is the response for /api/quote
type QuoteResponse struct {
	Quote string `json:"quote"`
	Error string `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}
