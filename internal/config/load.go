package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Keys that have no default value still need an explicit binding so viper's
// AutomaticEnv picks them up during Unmarshal.
var envOnlyKeys = []string{
	"database.url",
	"llm.gemini_api_key",
	"llm.openai_api_key",
	"llm.model_name",
	"llm.prompt_template_path",
}

// Load configuration from environment variables.
// Environment variables use the MEMOFLOW_ prefix with underscores separating
// nested keys, e.g. MEMOFLOW_LLM_PROVIDER for llm.provider.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("llm.provider", "rulebased")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("queue.shutdown_timeout_seconds", 30)

	v.SetEnvPrefix("MEMOFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment key %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
