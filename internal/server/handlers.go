package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/edutate/vanessa/internal/assistant"
	"github.com/edutate/vanessa/internal/session"
	"github.com/edutate/vanessa/internal/task"
	"github.com/edutate/vanessa/internal/timeline"
	"github.com/edutate/vanessa/types"
	"github.com/go-chi/chi/v5"
)

type ctxKey struct{}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(ctxKey{}).(*session.Session)
	return sess
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessionFor(r.Context(), r.Header.Get(IdentityHeader))
		if err != nil {
			var ve *types.ValidationError
			if errors.As(err, &ve) {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: IdentityHeader + " header is required"})
				return
			}
			s.writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return types.NewValidationError("body", "invalid request body")
	}
	return nil
}

// handleGenerate mirrors the one-shot generation endpoint. Its error
// bodies are fixed strings.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Prompt is required"})
		return
	}
	if s.assistant == nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Error generating content"})
		return
	}
	text, err := s.assistant.Generate(r.Context(), req.Prompt)
	if err != nil {
		s.logger.Error("generate failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Error generating content"})
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Text: text})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.sessionFor(r.Context(), req.Identity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{User: sess.User(), IncompleteCount: sess.IncompleteCount()})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.dropSession(r.Context(), r.Header.Get(IdentityHeader)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()).Plan())
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	mode, err := timeline.ParseSortMode(r.URL.Query().Get("sort"))
	if err != nil {
		s.writeError(w, types.NewValidationError("sort", err.Error()))
		return
	}
	showCompleted := true
	if v := r.URL.Query().Get("showCompleted"); v != "" {
		showCompleted, err = strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, types.NewValidationError("showCompleted", "must be true or false"))
			return
		}
	}
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()).Tasks(mode, showCompleted))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	s.upsertTask(w, r, "")
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	s.upsertTask(w, r, chi.URLParam(r, "id"))
}

func (s *Server) upsertTask(w http.ResponseWriter, r *http.Request, taskID string) {
	var req TaskRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	in := task.TaskInput{Text: req.Text, Priority: req.Priority, DueDate: req.DueDate, Notes: req.Notes}
	todo, err := sessionFrom(r.Context()).UpsertTask(r.Context(), in, req.ParentItemID, taskID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if taskID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, todo)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := sess.ToggleTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Plan())
}

func (s *Server) handleToggleSubtask(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := sess.ToggleSubtask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "subtaskId")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Plan())
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	group := r.URL.Query().Get("group")
	if group == "" {
		writeJSON(w, http.StatusOK, timeline.SortEvents(sess.Events()))
		return
	}
	g, err := timeline.ParseGranularity(group)
	if err != nil {
		s.writeError(w, types.NewValidationError("group", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, sess.GroupedEvents(g))
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	s.upsertEvent(w, r, "")
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	s.upsertEvent(w, r, chi.URLParam(r, "id"))
}

func (s *Server) upsertEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	var in task.EventInput
	if err := decode(r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	ev, err := sessionFrom(r.Context()).UpsertEvent(r.Context(), in, eventID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if eventID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, ev)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := sessionFrom(r.Context()).DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := sessionFrom(r.Context()).Reconcile(r.Context(), req.Update)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReconcileResponse{Plan: res.Plan, Changes: res.Changes, Attempts: res.Attempts})
}

// handleChat streams the reply as chunked text/plain. Errors before the
// first chunk get a JSON status; later ones end the stream.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	flusher, _ := w.(http.Flusher)
	started := false
	for chunk, err := range sessionFrom(r.Context()).Chat(r.Context(), req.Message) {
		if err != nil {
			if !started {
				s.writeError(w, err)
				return
			}
			s.logger.Warn("chat stream interrupted", "error", err)
			_, _ = w.Write([]byte("\n\n" + assistant.ChatFallback))
			break
		}
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, werr := w.Write([]byte(chunk)); werr != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	if !started {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()).Transcript())
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
	}
	quote, err := sessionFrom(r.Context()).Quote(r.Context(), req.Mood)
	resp := QuoteResponse{Quote: quote}
	if err != nil {
		s.logger.Warn("quote failed", "error", err)
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
