package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	// CrashLogDir is the directory for crash logs under the config dir
	CrashLogDir = "crash_logs"

	// MaxCrashLogs is the maximum number of crash logs to keep
	MaxCrashLogs = 10
)

// crashContext is what a crash report knows about the running command.
// User input is never recorded; plans and chats may hold personal data.
type crashContext struct {
	mu       sync.RWMutex
	fs       afero.Fs
	command  string
	version  string
	basePath string
}

var globalContext = &crashContext{fs: afero.NewOsFs()}

// SetBasePath sets the base path for crash logs (typically ~/.vanessa).
func SetBasePath(path string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.basePath = path
}

// SetVersion sets the application version for crash logs.
func SetVersion(version string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.version = version
}

// SetCommand sets the current command being executed.
func SetCommand(cmd string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.command = cmd
}

// CrashLog represents a crash log entry.
type CrashLog struct {
	Timestamp  time.Time
	Version    string
	Command    string
	PanicValue string
	StackTrace string
	GoVersion  string
	OS         string
	Arch       string
}

// HandlePanic is a deferred function that recovers from panics, writes a
// crash log and exits.
// Usage: defer logger.HandlePanic()
func HandlePanic() {
	if r := recover(); r != nil {
		path, err := WriteCrashLog(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\n[CRASH] Failed to write crash log: %v\n", err)
			fmt.Fprintf(os.Stderr, "[CRASH] Panic: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
		printCrashNotice(os.Stderr, path)
		os.Exit(1)
	}
}

func printCrashNotice(w io.Writer, path string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Vanessa hit an unexpected error and had to stop.")
	fmt.Fprintln(w, "Your saved plan and events are not affected.")
	fmt.Fprintf(w, "A crash log has been saved to:\n  %s\n\n", path)
}

// WriteCrashLog records panicValue with the current stack and returns the
// file it wrote.
func WriteCrashLog(panicValue any) (string, error) {
	log := newCrashLog(panicValue)

	globalContext.mu.RLock()
	fs := globalContext.fs
	globalContext.mu.RUnlock()

	dir := crashLogDir()
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}
	// Make room for the new entry.
	if err := pruneCrashLogs(fs, dir, MaxCrashLogs-1); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to clean old crash logs: %v\n", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("crash_%s.log", log.Timestamp.Format("20060102_150405.000")))
	if err := afero.WriteFile(fs, path, []byte(formatCrashLog(log)), 0600); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}
	return path, nil
}

func newCrashLog(panicValue any) CrashLog {
	globalContext.mu.RLock()
	defer globalContext.mu.RUnlock()

	return CrashLog{
		Timestamp:  time.Now(),
		Version:    globalContext.version,
		Command:    globalContext.command,
		PanicValue: fmt.Sprintf("%v", panicValue),
		StackTrace: string(debug.Stack()),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	}
}

func crashLogDir() string {
	globalContext.mu.RLock()
	basePath := globalContext.basePath
	globalContext.mu.RUnlock()

	if basePath == "" {
		basePath = ".vanessa"
	}
	return filepath.Join(basePath, CrashLogDir)
}

func formatCrashLog(log CrashLog) string {
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\nVANESSA CRASH LOG\n%s\n\n", rule, rule)
	fmt.Fprintf(&sb, "Timestamp: %s\n", log.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Version:   %s\n", log.Version)
	fmt.Fprintf(&sb, "Command:   %s\n", log.Command)
	fmt.Fprintf(&sb, "Go:        %s\n", log.GoVersion)
	fmt.Fprintf(&sb, "OS/Arch:   %s/%s\n", log.OS, log.Arch)
	fmt.Fprintf(&sb, "\n%s\nPANIC VALUE\n%s\n%s\n", thin, thin, log.PanicValue)
	fmt.Fprintf(&sb, "\n%s\nSTACK TRACE\n%s\n%s", thin, thin, log.StackTrace)
	fmt.Fprintf(&sb, "\n%s\nEND OF CRASH LOG\n%s\n", rule, rule)
	return sb.String()
}

// pruneCrashLogs removes the oldest crash logs so at most keep remain.
func pruneCrashLogs(fs afero.Fs, dir string, keep int) error {
	logs, err := listCrashLogs(fs, dir)
	if err != nil {
		return err
	}
	for len(logs) > keep {
		if err := fs.Remove(logs[0]); err != nil {
			return fmt.Errorf("remove old crash log %s: %w", filepath.Base(logs[0]), err)
		}
		logs = logs[1:]
	}
	return nil
}

func listCrashLogs(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, filepath.Join(dir, e.Name()))
		}
	}
	// Names embed the timestamp, so lexical order is oldest first.
	slices.Sort(logs)
	return logs, nil
}

// ListCrashLogs returns the crash logs on disk, oldest first.
func ListCrashLogs() ([]string, error) {
	globalContext.mu.RLock()
	fs := globalContext.fs
	globalContext.mu.RUnlock()
	return listCrashLogs(fs, crashLogDir())
}
