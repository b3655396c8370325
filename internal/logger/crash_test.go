package logger

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := globalContext
	fs := afero.NewMemMapFs()
	globalContext = &crashContext{fs: fs, basePath: "/home/u/.vanessa"}
	t.Cleanup(func() { globalContext = prev })
	return fs
}

func TestWriteCrashLog(t *testing.T) {
	fs := useMemFs(t)
	SetVersion("1.0.0-test")
	SetCommand("vanessa update")

	path, err := WriteCrashLog("boom")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/u/.vanessa", CrashLogDir), filepath.Dir(path))

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "VANESSA CRASH LOG")
	assert.Contains(t, content, "Version:   1.0.0-test")
	assert.Contains(t, content, "Command:   vanessa update")
	assert.Contains(t, content, "boom")
	assert.Contains(t, content, "STACK TRACE")
}

func TestPruneCrashLogs(t *testing.T) {
	fs := useMemFs(t)
	dir := crashLogDir()
	require.NoError(t, fs.MkdirAll(dir, 0755))
	for i := range MaxCrashLogs + 3 {
		name := fmt.Sprintf("crash_20240101_0000%02d.000.log", i)
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name), []byte("x"), 0600))
	}
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "notes.txt"), []byte("x"), 0600))

	require.NoError(t, pruneCrashLogs(fs, dir, MaxCrashLogs))

	logs, err := ListCrashLogs()
	require.NoError(t, err)
	require.Len(t, logs, MaxCrashLogs)
	assert.True(t, strings.HasSuffix(logs[0], "crash_20240101_000003.000.log"), "oldest removed first")

	exists, err := afero.Exists(fs, filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestListCrashLogs_MissingDir(t *testing.T) {
	useMemFs(t)
	logs, err := ListCrashLogs()
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestPrintCrashNotice(t *testing.T) {
	var buf bytes.Buffer
	printCrashNotice(&buf, "/tmp/crash.log")
	assert.Contains(t, buf.String(), "/tmp/crash.log")
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup(&buf, false)
	slog.Debug("hidden")
	slog.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "k=v")

	buf.Reset()
	Setup(&buf, true)
	slog.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
