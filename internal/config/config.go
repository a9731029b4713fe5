package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue" validate:"required"`
}

// ServerConfig contains process-level settings.
type ServerConfig struct {
	// MetricsPort is where the Prometheus metrics endpoint listens.
	MetricsPort int    `mapstructure:"metrics_port" validate:"required,gt=0,lt=65536"`
	LogLevel    string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// The URL is optional: without one the service runs on the in-memory store.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// LLMConfig contains the classifier provider settings. The API key matching
// the selected provider is required; the others are ignored.
type LLMConfig struct {
	Provider     string `mapstructure:"provider" validate:"required,oneof=rulebased gemini openai"`
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	OpenAIAPIKey string `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`

	// ModelName overrides the provider's default model when set.
	ModelName string `mapstructure:"model_name"`

	// PromptTemplatePath points at a custom classification prompt template.
	// Empty means the built-in template.
	PromptTemplatePath string `mapstructure:"prompt_template_path"`

	MaxRetries        int `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}

// QueueConfig contains job pipeline settings.
type QueueConfig struct {
	// ShutdownTimeoutSeconds bounds how long shutdown waits for the
	// in-flight job before abandoning it.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0,lte=600"`
}
