package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edutate/vanessa/internal/llm"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViperForTest(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "XDG_DATA_HOME"} {
		t.Setenv(env, "")
	}
}

func TestLoadLLMConfig_Defaults(t *testing.T) {
	resetViperForTest(t)

	cfg, err := LoadLLMConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Empty(t, cfg.APIKey)
	assert.False(t, HasCredentials(cfg))
}

func TestLoadLLMConfig_InvalidProvider(t *testing.T) {
	resetViperForTest(t)
	viper.Set("llm.provider", "bedrock")

	_, err := LoadLLMConfig()
	assert.ErrorContains(t, err, "invalid provider")
}

func TestLoadLLMConfig_OllamaBaseURL(t *testing.T) {
	resetViperForTest(t)
	viper.Set("llm.provider", "ollama")

	cfg, err := LoadLLMConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.DefaultOllamaURL, cfg.BaseURL)
	assert.True(t, HasCredentials(cfg))
}

func TestResolveAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.Provider
		viper    map[string]string
		env      map[string]string
		want     string
	}{
		{
			name:     "gemini from GEMINI_API_KEY",
			provider: llm.ProviderGemini,
			env:      map[string]string{"GEMINI_API_KEY": "g-key"},
			want:     "g-key",
		},
		{
			name:     "gemini falls back to GOOGLE_API_KEY",
			provider: llm.ProviderGemini,
			env:      map[string]string{"GOOGLE_API_KEY": "google-key"},
			want:     "google-key",
		},
		{
			name:     "per-provider config wins over env",
			provider: llm.ProviderOpenAI,
			viper:    map[string]string{"llm.apiKeys.openai": " cfg-key "},
			env:      map[string]string{"OPENAI_API_KEY": "env-key"},
			want:     "cfg-key",
		},
		{
			name:     "anthropic env",
			provider: llm.ProviderAnthropic,
			env:      map[string]string{"ANTHROPIC_API_KEY": "a-key"},
			want:     "a-key",
		},
		{
			name:     "ollama needs no key",
			provider: llm.ProviderOllama,
			want:     "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetViperForTest(t)
			for k, v := range tc.viper {
				viper.Set(k, v)
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tc.want, ResolveAPIKey(tc.provider))
		})
	}
}

func TestLoad_DefaultsAndValidation(t *testing.T) {
	resetViperForTest(t)
	SetDefaults()
	viper.Set("storage.path", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)

	rc := ReconcilerConfig(cfg)
	assert.Equal(t, 1, rc.MaxAttempts)
	assert.Equal(t, 60*time.Second, rc.Timeout)

	viper.Set("storage.driver", "postgres")
	_, err = Load()
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoad_EnvOverride(t *testing.T) {
	resetViperForTest(t)
	SetDefaults()
	t.Setenv("VANESSA_STORAGE_DRIVER", "sqlite")
	t.Setenv("VANESSA_RECONCILE_MAXATTEMPTS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 3, ReconcilerConfig(cfg).MaxAttempts)
}

func TestGetDataPath(t *testing.T) {
	resetViperForTest(t)
	home := t.TempDir()
	orig := GetGlobalConfigDir
	GetGlobalConfigDir = func() (string, error) { return filepath.Join(home, ".vanessa"), nil }
	t.Cleanup(func() { GetGlobalConfigDir = orig })
	t.Setenv("XDG_DATA_HOME", "")

	assert.Equal(t, filepath.Join(home, ".vanessa", "data"), GetDataPath())

	t.Setenv("XDG_DATA_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "vanessa"), GetDataPath())

	viper.Set("storage.path", "/explicit")
	assert.Equal(t, "/explicit", GetDataPath())
}

func TestGetGlobalConfigDir_HomeEnv(t *testing.T) {
	t.Setenv(HomeEnv, "/srv/vanessa")
	dir, err := GetGlobalConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/srv/vanessa", dir)
}

func TestSaveSetting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	require.NoError(t, saveSetting(path, "llm.provider", "openai"))
	require.NoError(t, saveSetting(path, "llm.apiKeys.openai", "sk-proj:abc#123"))
	require.NoError(t, saveSetting(path, "llm.provider", "gemini"))
	require.NoError(t, saveSetting(path, "telemetry.enabled", "true"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	assert.Equal(t, "gemini", v.GetString("llm.provider"))
	assert.Equal(t, "sk-proj:abc#123", v.GetString("llm.apiKeys.openai"))
	assert.True(t, v.GetBool("telemetry.enabled"))

	assert.Error(t, saveSetting(path, "llm..model", "x"))
}
