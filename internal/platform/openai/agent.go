package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"

	"memoflow/internal/classify"
	"memoflow/internal/config"
	"memoflow/internal/domain"
)

// defaultModel is used when the configuration does not name one.
const defaultModel = "gpt-4o-mini"

// systemPrompt pins the assistant role; the rendered classification prompt
// carries the policy and the memo itself.
const systemPrompt = "You are a deterministic GTD task clarification engine. " +
	"Respond with a single JSON object and nothing else."

// OpenAIAgent implements the classify.Agent interface using the OpenAI API.
type OpenAIAgent struct {
	logger *slog.Logger
	client openaigo.Client
	prompt *classify.PromptTemplate
	model  string
}

// Ensure OpenAIAgent implements the Agent interface.
var _ classify.Agent = (*OpenAIAgent)(nil)

// NewOpenAIAgent creates a new OpenAIAgent with the provided dependencies.
// Retries for transient API failures are delegated to the SDK's built-in
// retry handling, configured from MaxRetries.
func NewOpenAIAgent(logger *slog.Logger, cfg config.LLMConfig) (*OpenAIAgent, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", classify.ErrInvalidConfig)
	}

	prompt := classify.DefaultPromptTemplate()
	if cfg.PromptTemplatePath != "" {
		var err error
		prompt, err = classify.LoadPromptTemplate(cfg.PromptTemplatePath)
		if err != nil {
			return nil, err
		}
	}

	model := cfg.ModelName
	if model == "" {
		model = defaultModel
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}

	client := openaigo.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(maxRetries),
	)

	return &OpenAIAgent{
		logger: logger.With("component", "openai_agent"),
		client: client,
		prompt: prompt,
		model:  model,
	}, nil
}

// Classify sends the memo through the chat completions API and converts the
// structured response into a domain result.
func (o *OpenAIAgent) Classify(
	ctx context.Context,
	memo domain.MemoSnapshot,
) (*domain.ClassificationResult, error) {
	// Empty memos never reach the provider: no content means no drafts.
	if memo.Empty() {
		o.logger.DebugContext(ctx, "memo has no content, skipping API call",
			"memo_id", memo.MemoID)
		return &domain.ClassificationResult{
			SuggestedMemoStatus: domain.MemoStatusIdea,
		}, nil
	}

	prompt, err := o.prompt.Render(memo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", classify.ErrClassificationFailed, err)
	}

	o.logger.InfoContext(ctx, "making OpenAI API call",
		"memo_id", memo.MemoID,
		"model", o.model)

	completion, err := o.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(o.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.SystemMessage(systemPrompt),
			openaigo.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", classify.ErrTransientFailure, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in completion", classify.ErrInvalidResponse)
	}

	raw, err := extractJSON(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	var parsed classify.ResponseSchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			classify.ErrInvalidResponse, err)
	}

	return parsed.ToResult()
}

// extractJSON pulls the first JSON object out of the completion text,
// tolerating markdown code fences and surrounding prose.
func extractJSON(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty completion text", classify.ErrInvalidResponse)
	}

	// Strip a markdown code fence if the whole payload is wrapped in one.
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in completion text", classify.ErrInvalidResponse)
	}

	candidate := trimmed[start : end+1]
	if !gjson.Valid(candidate) {
		return "", fmt.Errorf("%w: malformed JSON object in completion text", classify.ErrInvalidResponse)
	}
	return candidate, nil
}
