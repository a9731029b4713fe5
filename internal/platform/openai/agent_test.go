package openai

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoflow/internal/classify"
	"memoflow/internal/config"
)

func TestNewOpenAIAgent(t *testing.T) {
	t.Run("nil_logger_returns_error", func(t *testing.T) {
		agent, err := NewOpenAIAgent(nil, config.LLMConfig{OpenAIAPIKey: "test-key"})
		require.Error(t, err)
		assert.Nil(t, agent)
		assert.Contains(t, err.Error(), "logger cannot be nil")
	})

	t.Run("empty_api_key_returns_config_error", func(t *testing.T) {
		agent, err := NewOpenAIAgent(slog.Default(), config.LLMConfig{})
		require.Error(t, err)
		assert.Nil(t, agent)
		assert.ErrorIs(t, err, classify.ErrInvalidConfig)
	})

	t.Run("valid_config_returns_agent", func(t *testing.T) {
		agent, err := NewOpenAIAgent(slog.Default(), config.LLMConfig{
			OpenAIAPIKey: "test-key",
			ModelName:    "gpt-4o",
			MaxRetries:   2,
		})
		require.NoError(t, err)
		require.NotNil(t, agent)
		assert.Equal(t, "gpt-4o", agent.model)
	})

	t.Run("default_model_when_unset", func(t *testing.T) {
		agent, err := NewOpenAIAgent(slog.Default(), config.LLMConfig{OpenAIAPIKey: "test-key"})
		require.NoError(t, err)
		assert.Equal(t, defaultModel, agent.model)
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{
			name:     "bare_object",
			input:    `{"drafts": []}`,
			expected: `{"drafts": []}`,
		},
		{
			name:     "object_with_surrounding_prose",
			input:    "Here is the classification:\n{\"drafts\": []}\nLet me know!",
			expected: `{"drafts": []}`,
		},
		{
			name:     "json_code_fence",
			input:    "```json\n{\"drafts\": [], \"suggested_memo_status\": \"idea\"}\n```",
			expected: `{"drafts": [], "suggested_memo_status": "idea"}`,
		},
		{
			name:     "plain_code_fence",
			input:    "```\n{\"drafts\": []}\n```",
			expected: `{"drafts": []}`,
		},
		{
			name:     "nested_objects",
			input:    `{"drafts": [{"title": "t", "route": "next_action"}]}`,
			expected: `{"drafts": [{"title": "t", "route": "next_action"}]}`,
		},
		{
			name:        "empty_text",
			input:       "   ",
			expectError: true,
		},
		{
			name:        "no_object",
			input:       "I could not classify this memo.",
			expectError: true,
		},
		{
			name:        "malformed_object",
			input:       `{"drafts": [`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := extractJSON(tt.input)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, classify.ErrInvalidResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
