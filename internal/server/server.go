// Package server exposes a Vanessa session over HTTP. Each caller is
// identified by the X-User-Identity header and gets its own session.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/edutate/vanessa/internal/assistant"
	"github.com/edutate/vanessa/internal/session"
)

// SessionFactory builds a fresh, logged-out session.
type SessionFactory func() *session.Session

// Options configures a Server.
type Options struct {
	Addr       string
	NewSession SessionFactory
	// Assistant serves /api/generate. It may be nil.
	Assistant *assistant.Assistant
	// Origins lists the browser origins allowed by CORS.
	Origins []string
	Logger  *slog.Logger
}

type Server struct {
	newSession SessionFactory
	assistant  *assistant.Assistant
	cors       corsPolicy
	logger     *slog.Logger
	server     *http.Server

	mu       sync.Mutex
	sessions map[string]*session.Session
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		newSession: opts.NewSession,
		assistant:  opts.Assistant,
		cors:       newCORSPolicy(opts.Origins),
		logger:     opts.Logger,
		sessions:   make(map[string]*session.Session),
	}
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves in the background. Errors other than a clean shutdown are
// sent to errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.logger.Info("api server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// sessionFor returns the caller's session, signing it in on first use.
func (s *Server) sessionFor(ctx context.Context, identity string) (*session.Session, error) {
	id, err := session.SanitizeIdentity(identity)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	sess := s.newSession()
	if err := sess.Login(ctx, id); err != nil {
		return nil, err
	}
	s.sessions[id] = sess
	return sess, nil
}

func (s *Server) dropSession(ctx context.Context, identity string) error {
	id, err := session.SanitizeIdentity(identity)
	if err != nil {
		return err
	}
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.Logout(ctx)
}
