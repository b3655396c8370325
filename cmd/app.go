package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edutate/vanessa/internal/assistant"
	"github.com/edutate/vanessa/internal/config"
	"github.com/edutate/vanessa/internal/llm"
	"github.com/edutate/vanessa/internal/planner"
	"github.com/edutate/vanessa/internal/session"
	"github.com/edutate/vanessa/internal/telemetry"
	"github.com/edutate/vanessa/store"
	"github.com/edutate/vanessa/types"
	"github.com/spf13/cobra"
)

// errNotLoggedIn tells the user how to sign in.
var errNotLoggedIn = errors.New("not logged in: run `vanessa login <email>` or `vanessa login --guest`")

// llmDeps are the language-model components a session can use. Either
// field may be nil when no provider is configured.
type llmDeps struct {
	oracle    planner.Oracle
	transport assistant.Transport
}

// buildLLM constructs the oracle and chat transport. Tests replace it.
var buildLLM = func(ctx context.Context, cfg llm.Config) (llmDeps, error) {
	if !config.HasCredentials(cfg) {
		return llmDeps{}, nil
	}
	oracle, err := llm.NewOracle(ctx, cfg)
	if err != nil {
		return llmDeps{}, err
	}
	chat, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		return llmDeps{}, err
	}
	return llmDeps{oracle: oracle, transport: llm.NewChatTransport(chat, assistant.SystemInstruction)}, nil
}

// app bundles everything a command needs.
type app struct {
	cfg        *types.AppConfig
	store      store.KVStore
	telemetry  telemetry.Client
	assistant  *assistant.Assistant
	reconciler session.Reconciler
	session    *session.Session
}

// newApp opens storage, wires the LLM stack and restores the last user.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	kv, err := store.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	llmCfg, err := config.LoadLLMConfig()
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	deps, err := buildLLM(ctx, llmCfg)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("configure %s: %w", llmCfg.Provider, err)
	}

	logger := slog.Default()
	home, _ := config.GetGlobalConfigDir()
	a := &app{
		cfg:   cfg,
		store: kv,
		telemetry: telemetry.New(telemetry.Options{
			Enabled: cfg.Telemetry.Enabled,
			APIKey:  cfg.Telemetry.APIKey,
			Version: GetVersion(),
			Dir:     home,
		}),
	}
	if deps.oracle != nil {
		a.reconciler = planner.NewReconciler(deps.oracle, config.ReconcilerConfig(cfg), logger)
	}
	if deps.transport != nil {
		a.assistant = assistant.New(deps.transport, logger)
	}
	a.session = a.newSession()

	if _, err := a.session.Restore(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// newSession builds a logged-out session sharing the app's store and
// language-model components.
func (a *app) newSession() *session.Session {
	return session.New(session.Options{
		Store:      a.store,
		Reconciler: a.reconciler,
		Assistant:  a.assistant,
		Telemetry:  a.telemetry,
		Logger:     slog.Default(),
	})
}

// requireUser fails unless someone is signed in.
func (a *app) requireUser() error {
	if a.session.User() == "" {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) Close() error {
	_ = a.telemetry.Close()
	return a.store.Close()
}

// withApp runs fn with an open app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	a.telemetry.Track(telemetry.EventCommandExecuted, telemetry.Properties{"command": cmd.Name()})
	return fn(ctx, a)
}

// withUser is withApp for commands that need a signed-in user.
func withUser(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.requireUser(); err != nil {
			return err
		}
		return fn(ctx, a)
	})
}
