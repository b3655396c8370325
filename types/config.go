/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose   bool            `mapstructure:"verbose"`
	Config    string          `mapstructure:"config"`
	LLM       LLMConfig       `mapstructure:"llm" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LLMConfig holds configuration for LLM integration
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=gemini openai anthropic ollama"`
	Model    string `mapstructure:"model" validate:"omitempty,min=1"`
	BaseURL  string `mapstructure:"baseURL" validate:"omitempty,url"`
}

// StorageConfig holds key-value storage settings
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=file sqlite memory"`
	Path   string `mapstructure:"path"`
}

// ReconcileConfig bounds plan reconciliation
type ReconcileConfig struct {
	// MaxAttempts is the number of oracle calls per update, including retries with validation feedback
	MaxAttempts int `mapstructure:"maxAttempts" validate:"omitempty,min=1,max=5"`
	// TimeoutSeconds bounds each oracle call
	TimeoutSeconds int `mapstructure:"timeoutSeconds" validate:"omitempty,min=5,max=600"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	// Origins are the browser origins allowed by CORS.
	Origins []string `mapstructure:"origins" validate:"dive,url"`
}

// TelemetryConfig holds anonymous usage reporting settings
type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"apiKey"`
}
