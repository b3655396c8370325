package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/edutate/vanessa/internal/llm"
	"github.com/edutate/vanessa/internal/planner"
	"github.com/edutate/vanessa/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SetDefaults registers default values and environment bindings on the
// global Viper instance. It is safe to call more than once.
func SetDefaults() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("llm.provider", string(llm.DefaultProvider))
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("storage.driver", DefaultStorageDriver)
	viper.SetDefault("storage.path", "")
	viper.SetDefault("reconcile.maxAttempts", DefaultReconcileMaxAttempts)
	viper.SetDefault("reconcile.timeoutSeconds", int(DefaultReconcileTimeout/time.Second))
	viper.SetDefault("server.addr", DefaultServerAddr)
	viper.SetDefault("server.origins", DefaultServerOrigins)
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.apiKey", "")
}

// Load reads the application configuration from Viper and validates it.
// storage.path falls back to GetDataPath when unset.
func Load() (*types.AppConfig, error) {
	var cfg types.AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = GetDataPath()
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ReconcilerConfig maps the reconcile settings onto the planner.
func ReconcilerConfig(cfg *types.AppConfig) planner.Config {
	out := planner.Config{
		MaxAttempts: cfg.Reconcile.MaxAttempts,
		Timeout:     time.Duration(cfg.Reconcile.TimeoutSeconds) * time.Second,
	}
	if out.MaxAttempts == 0 {
		out.MaxAttempts = DefaultReconcileMaxAttempts
	}
	if out.Timeout == 0 {
		out.Timeout = DefaultReconcileTimeout
	}
	return out
}
