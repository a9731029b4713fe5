package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"memoflow/internal/classify"
	"memoflow/internal/config"
	"memoflow/internal/domain"
)

// defaultModel is used when the configuration does not name one.
const defaultModel = "gemini-2.0-flash"

// GeminiAgent implements the classify.Agent interface using Google's
// Gemini API to classify memo text into task drafts.
type GeminiAgent struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// prompt renders the classification prompt for each memo
	prompt *classify.PromptTemplate

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// Ensure GeminiAgent implements the Agent interface.
var _ classify.Agent = (*GeminiAgent)(nil)

// NewGeminiAgent creates a new GeminiAgent with the provided dependencies.
//
// The prompt template path in the configuration is optional; when empty the
// built-in template is used. Returns classify.ErrInvalidConfig for
// configuration problems.
func NewGeminiAgent(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiAgent, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", classify.ErrInvalidConfig)
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

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			classify.ErrInvalidConfig, err)
	}

	return &GeminiAgent{
		logger: logger.With("component", "gemini_agent"),
		config: cfg,
		prompt: prompt,
		client: client,
		model:  model,
	}, nil
}

// Classify sends the memo through the Gemini API and converts the structured
// response into a domain result.
func (g *GeminiAgent) Classify(
	ctx context.Context,
	memo domain.MemoSnapshot,
) (*domain.ClassificationResult, error) {
	// Empty memos never reach the provider: no content means no drafts.
	if memo.Empty() {
		g.logger.DebugContext(ctx, "memo has no content, skipping API call",
			"memo_id", memo.MemoID)
		return &domain.ClassificationResult{
			SuggestedMemoStatus: domain.MemoStatusIdea,
		}, nil
	}

	prompt, err := g.prompt.Render(memo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", classify.ErrClassificationFailed, err)
	}

	response, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return response.ToResult()
}

// callWithRetry makes a call to the Gemini API with exponential backoff
// retry logic.
//
// It attempts the call up to MaxRetries+1 times, backing off with jitter
// between attempts for transient errors. Permanent errors (content blocked
// by safety filters, malformed responses) are returned immediately.
func (g *GeminiAgent) callWithRetry(ctx context.Context, prompt string) (*classify.ResponseSchema, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	attempt := 0
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	for attempt <= maxRetries {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		var response *classify.ResponseSchema
		var isTransient bool

		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
		switch {
		case err != nil:
			// API-level failures are assumed transient unless proven otherwise.
			isTransient = true
		case resp == nil || len(resp.Candidates) == 0:
			err = fmt.Errorf("%w: no content generated", classify.ErrInvalidResponse)
		case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
			err = fmt.Errorf("%w: content blocked by safety filters", classify.ErrContentBlocked)
		case resp.Candidates[0].Content == nil:
			err = fmt.Errorf("%w: empty content in response", classify.ErrInvalidResponse)
		default:
			var parsed classify.ResponseSchema
			if err = json.Unmarshal([]byte(resp.Text()), &parsed); err != nil {
				err = fmt.Errorf("%w: failed to parse JSON response: %v",
					classify.ErrInvalidResponse, err)
			} else {
				response = &parsed
			}
		}

		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return response, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if errors.Is(err, classify.ErrContentBlocked) || errors.Is(err, classify.ErrInvalidResponse) {
			g.logger.WarnContext(ctx, "permanent error occurred, not retrying")
			return nil, err
		}

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				classify.ErrTransientFailure, maxRetries, err)
		}

		if !isTransient {
			return nil, err
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", classify.ErrTransientFailure, ctx.Err())
		}

		attempt++
	}

	return nil, fmt.Errorf("%w: failed after %d attempts", classify.ErrTransientFailure, attempt)
}
