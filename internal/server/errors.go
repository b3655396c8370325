package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edutate/vanessa/internal/assistant"
	"github.com/edutate/vanessa/internal/session"
	"github.com/edutate/vanessa/types"
)

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		ve *types.ValidationError
		nf *types.NotFoundError
		re *types.ReconciliationError
		te *types.TransportError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, session.ErrReconcileInFlight), errors.Is(err, assistant.ErrTurnInFlight):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrAssistantUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &re):
		if errors.As(err, &te) {
			return http.StatusBadGateway
		}
		return http.StatusUnprocessableEntity
	case errors.As(err, &te):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	body := ErrorResponse{Error: err.Error()}

	var re *types.ReconciliationError
	if errors.As(err, &re) {
		body.Violations = re.Violations
	}
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		body.Error = http.StatusText(code)
	}
	writeJSON(w, code, body)
}
