package classify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"memoflow/internal/domain"
)

// Keyword tables for the rule-based classifier. The reference corpus is
// Japanese memo text, so the markers cover Japanese first with a few latin
// fallbacks. Matching is substring-based: Japanese has no delimiter-based
// word boundaries.
var (
	quickMarkers = []string{
		"すぐ", "今すぐ", "さっそく", "2分", "２分", "right away", "quick",
	}
	delegateMarkers = []string{
		"依頼", "お願い", "頼む", "任せる", "委任", "delegate", "ask ",
	}
	projectMarkers = []string{
		"準備", "計画", "企画", "立ち上げ", "プロジェクト", "plan ", "project",
	}
	actionMarkers = []string{
		"する", "やる", "送る", "送付", "買う", "書く", "読む", "予約", "確認",
		"作成", "連絡", "支払", "申し込", "調べ", "進める", "依頼", "提出",
		"todo", "call", "email", "buy", "schedule", "prepare", "send",
	}
)

// Date expressions the rule-based classifier understands.
var (
	isoDatePattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	shortDatePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)
)

// Relative date words mapped to day offsets.
var relativeDates = map[string]int{
	"今日":  0,
	"明日":  1,
	"明後日": 2,
	"today":    0,
	"tomorrow": 1,
}

// RuleBasedAgent is a deterministic, offline implementation of the
// Clarify/Organize decision policy. It is the default provider when no LLM
// API key is configured and the reference behavior for the pipeline tests.
// It applies the policy rules in order on keyword and date heuristics.
type RuleBasedAgent struct {
	logger *slog.Logger

	// now supplies the wall clock for resolving relative and yearless
	// dates; injectable for tests.
	now func() time.Time
}

// NewRuleBasedAgent creates a rule-based classifier.
func NewRuleBasedAgent(logger *slog.Logger) *RuleBasedAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleBasedAgent{
		logger: logger.With("component", "rule_based_agent"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ensure RuleBasedAgent implements the Agent interface.
var _ Agent = (*RuleBasedAgent)(nil)

// Classify applies the decision policy to the memo content.
func (a *RuleBasedAgent) Classify(
	ctx context.Context,
	memo domain.MemoSnapshot,
) (*domain.ClassificationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}

	content := strings.TrimSpace(memo.Content)
	if content == "" {
		return &domain.ClassificationResult{
			SuggestedMemoStatus: domain.MemoStatusIdea,
		}, nil
	}

	// Rule 6: nothing actionable.
	if !containsAny(content, actionMarkers) {
		a.logger.DebugContext(ctx, "no action marker found, suggesting idea",
			"memo_id", memo.MemoID)
		return &domain.ClassificationResult{
			SuggestedMemoStatus: domain.MemoStatusIdea,
		}, nil
	}

	draft := domain.TaskDraft{
		Title: draftTitle(content),
		// The classifier does not know the tag universe; it forwards the
		// memo text as a tag mention and downstream resolution attaches
		// whichever existing tags the text refers to.
		Tags: []string{content},
	}

	result := &domain.ClassificationResult{
		SuggestedMemoStatus: domain.MemoStatusActive,
	}

	switch {
	// Rule 1: completable within about two minutes.
	case containsAny(content, quickMarkers):
		draft.Route = domain.RouteProgress
		draft.EstimateMinutes = 2

	// Rule 2: should be delegated.
	case containsAny(content, delegateMarkers):
		draft.Route = domain.RouteWaiting

	// Rule 3: tied to a specific date.
	case a.extractDueDate(content) != "":
		draft.Route = domain.RouteCalendar
		draft.DueDate = a.extractDueDate(content)

	// Rule 5: requires multiple steps.
	case containsAny(content, projectMarkers):
		draft.Route = domain.RouteNextAction
		result.ProjectTitle = draftTitle(content)
		draft.ProjectTitle = result.ProjectTitle

	// Rule 4: a single actionable step.
	default:
		draft.Route = domain.RouteNextAction
	}

	result.Drafts = []domain.TaskDraft{draft}
	return result, nil
}

// extractDueDate finds the first recognizable date expression in the content
// and returns it as an ISO-8601 date. Returns "" when no date is present.
func (a *RuleBasedAgent) extractDueDate(content string) string {
	if m := isoDatePattern.FindString(content); m != "" {
		if _, err := domain.ParseDueDate(m); err == nil {
			return m
		}
	}

	if m := shortDatePattern.FindStringSubmatch(content); m != nil {
		month := atoi(m[1])
		day := atoi(m[2])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return a.nextOccurrence(time.Month(month), day).Format("2006-01-02")
		}
	}

	for word, offset := range relativeDates {
		if strings.Contains(content, word) {
			return a.now().AddDate(0, 0, offset).Format("2006-01-02")
		}
	}

	return ""
}

// nextOccurrence resolves a yearless month/day to its next occurrence at or
// after the current time, in UTC.
func (a *RuleBasedAgent) nextOccurrence(month time.Month, day int) time.Time {
	now := a.now()
	candidate := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
	if candidate.Before(now.Truncate(24 * time.Hour)) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate
}

// draftTitle collapses the memo content into a single-line title.
func draftTitle(content string) string {
	line := content
	if idx := strings.IndexAny(line, "\r\n"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	const maxTitleRunes = 120
	runes := []rune(line)
	if len(runes) > maxTitleRunes {
		line = string(runes[:maxTitleRunes])
	}
	return line
}

func containsAny(content string, markers []string) bool {
	lower := strings.ToLower(content)
	for _, marker := range markers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}
