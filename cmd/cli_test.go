package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/edutate/vanessa/internal/config"
	"github.com/edutate/vanessa/internal/llm"
	"github.com/edutate/vanessa/internal/planner"
	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type scriptedTransport struct {
	chunks []string
	err    error
}

func (s *scriptedTransport) Generate(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return `"Keep going."`, nil
}

func (s *scriptedTransport) Stream(context.Context, []models.Message, string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range s.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if s.err != nil {
			yield("", s.err)
		}
	}
}

// setupCLI points config and storage at temp dirs and installs stub
// language-model components. A nil transport and oracle leaves the
// assistant unconfigured.
func setupCLI(t *testing.T, oracle planner.Oracle, transport *scriptedTransport) string {
	t.Helper()
	home := t.TempDir()
	dataDir := filepath.Join(home, "data")

	prevDir := config.GetGlobalConfigDir
	config.GetGlobalConfigDir = func() (string, error) { return home, nil }
	prevBuild := buildLLM
	buildLLM = func(context.Context, llm.Config) (llmDeps, error) {
		var deps llmDeps
		if oracle != nil {
			deps.oracle = oracle
		}
		if transport != nil {
			deps.transport = transport
		}
		return deps, nil
	}
	t.Cleanup(func() {
		config.GetGlobalConfigDir = prevDir
		buildLLM = prevBuild
	})

	viper.Set("storage.driver", "file")
	viper.Set("storage.path", dataDir)
	viper.Set("verbose", false)
	return home
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_RequiresLogin(t *testing.T) {
	setupCLI(t, nil, nil)

	_, err := runCLI(t, "tasks")
	require.ErrorIs(t, err, errNotLoggedIn)

	out, err := runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestCLI_LoginPersistsAcrossRuns(t *testing.T) {
	setupCLI(t, nil, nil)

	out, err := runCLI(t, "login", "  Sam@Example.com ")
	require.NoError(t, err)
	assert.Contains(t, out, "sam@example.com")

	_, err = runCLI(t, "task", "toggle", "jrs-1-t1")
	require.NoError(t, err)

	out, err = runCLI(t, "export")
	require.NoError(t, err)
	var doc exportDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "sam@example.com", doc.User)
	loc, ok := doc.Plan.FindTodo("jrs-1-t1")
	require.True(t, ok)
	assert.True(t, doc.Plan[loc.Section].Items[loc.Item].Todos[loc.Todo].IsCompleted)

	_, err = runCLI(t, "logout")
	require.NoError(t, err)
	_, err = runCLI(t, "plan")
	require.ErrorIs(t, err, errNotLoggedIn)

	// Signing back in restores the saved plan.
	_, err = runCLI(t, "login", "sam@example.com")
	require.NoError(t, err)
	out, err = runCLI(t, "export")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	loc, _ = doc.Plan.FindTodo("jrs-1-t1")
	assert.True(t, doc.Plan[loc.Section].Items[loc.Item].Todos[loc.Todo].IsCompleted)
}

func TestCLI_LoginNeedsEmailOrGuest(t *testing.T) {
	setupCLI(t, nil, nil)

	_, err := runCLI(t, "login")
	require.Error(t, err)

	out, err := runCLI(t, "login", "--guest")
	require.NoError(t, err)
	assert.Contains(t, out, "guest")
}

func TestCLI_TaskAndEventCommands(t *testing.T) {
	setupCLI(t, nil, nil)
	_, err := runCLI(t, "login", "--guest")
	require.NoError(t, err)

	_, err = runCLI(t, "task", "add", "Email counselor", "--item", "srf-2", "--priority", "High", "--due", "2024-09-15")
	require.NoError(t, err)

	_, err = runCLI(t, "task", "add", "Orphan")
	require.Error(t, err, "--item is required")

	_, err = runCLI(t, "task", "toggle", "nope")
	var nf *types.NotFoundError
	require.ErrorAs(t, err, &nf)

	out, err := runCLI(t, "tasks", "--sort", "priority", "--hide-completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Email counselor")
	assert.NotContains(t, out, "Make a list of 15-20 potential colleges")

	_, err = runCLI(t, "tasks", "--sort", "alphabetical")
	require.Error(t, err)

	_, err = runCLI(t, "event", "add", "SAT", "--date", "2025-06-07", "--category", "testing")
	require.NoError(t, err)
	_, err = runCLI(t, "event", "add", "Bad", "--date", "June 7th")
	var ve *types.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 2, exitCode(err))

	out, err = runCLI(t, "events", "--group", "month")
	require.NoError(t, err)
	assert.Contains(t, out, "SAT")
	assert.Contains(t, out, "June 2025")

	out, err = runCLI(t, "export", "--format", "yaml")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "guest", doc["user"])
}

func TestCLI_UpdateAppliesOracleResult(t *testing.T) {
	candidate := models.SeedPlan()
	loc, ok := candidate.FindTodo("srs-1-t1")
	require.True(t, ok)
	candidate[loc.Section].Items[loc.Item].Todos[loc.Todo].IsCompleted = true
	candidate[loc.Section].Items[loc.Item].Status = models.StatusInProgress
	raw, err := json.Marshal(candidate)
	require.NoError(t, err)

	oracle := planner.OracleFunc(func(context.Context, planner.StructuredRequest) (string, error) {
		return string(raw), nil
	})
	setupCLI(t, oracle, nil)
	_, err = runCLI(t, "login", "--guest")
	require.NoError(t, err)

	out, err := runCLI(t, "update", "I", "brainstormed", "essay", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "Brainstorm essay topics")
}

func TestCLI_UpdateWithoutModel(t *testing.T) {
	setupCLI(t, nil, nil)
	_, err := runCLI(t, "login", "--guest")
	require.NoError(t, err)

	_, err = runCLI(t, "update", "did stuff")
	require.Error(t, err)
	assert.Contains(t, userMessage(err), "No language model")
}

func TestCLI_ChatStreamsAndFallsBack(t *testing.T) {
	transport := &scriptedTransport{chunks: []string{"Apply ", "early!"}}
	setupCLI(t, nil, transport)
	_, err := runCLI(t, "login", "--guest")
	require.NoError(t, err)

	out, err := runCLI(t, "chat", "When", "should", "I", "apply?")
	require.NoError(t, err)
	assert.Contains(t, out, "Apply early!")

	transport.chunks = nil
	transport.err = types.NewTransportError("chat", errors.New("down"))
	out, err = runCLI(t, "chat", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "trouble connecting")

	out, err = runCLI(t, "quote", "tired")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := setupCLI(t, nil, nil)

	_, err := runCLI(t, "config", "set", "llm.provider", "bogus")
	require.Error(t, err)

	_, err = runCLI(t, "config", "set", "llm.apiKeys.openai", "sk-test-1234")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, config.ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "sk-test-1234")

	out, err := runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "storage.driver")
	assert.NotContains(t, out, "sk-test-1234")
}
