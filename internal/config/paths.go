package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// HomeEnv relocates the whole ~/.vanessa directory.
const HomeEnv = "VANESSA_HOME"

const homeDirName = ".vanessa"

// GetGlobalConfigDir resolves the directory holding config.yaml, crash
// logs and telemetry state. Tests swap it out.
var GetGlobalConfigDir = func() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, homeDirName), nil
}

// GetDataPath picks where plans and events are saved: storage.path if set,
// then $XDG_DATA_HOME/vanessa, then a data/ folder under the config dir.
func GetDataPath() string {
	candidates := []func() string{
		func() string { return viper.GetString("storage.path") },
		func() string {
			if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
				return filepath.Join(xdg, "vanessa")
			}
			return ""
		},
		func() string {
			if dir, err := GetGlobalConfigDir(); err == nil {
				return filepath.Join(dir, "data")
			}
			return ""
		},
	}
	for _, c := range candidates {
		if p := c(); p != "" {
			return p
		}
	}
	return "data"
}
