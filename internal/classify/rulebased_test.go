package classify

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoflow/internal/domain"
)

func newTestAgent(now time.Time) *RuleBasedAgent {
	agent := NewRuleBasedAgent(nil)
	agent.now = func() time.Time { return now }
	return agent
}

func classifyText(t *testing.T, agent *RuleBasedAgent, content string) *domain.ClassificationResult {
	t.Helper()
	memo, err := domain.NewMemoSnapshot(uuid.New(), "", content)
	require.NoError(t, err)
	result, err := agent.Classify(context.Background(), memo)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestClassifyEmptyContentYieldsNoDrafts(t *testing.T) {
	agent := newTestAgent(time.Now().UTC())

	for _, content := range []string{"", "   ", "\n\t"} {
		result := classifyText(t, agent, content)
		assert.Empty(t, result.Drafts, "content %q should yield zero drafts", content)
		assert.Equal(t, domain.MemoStatusIdea, result.SuggestedMemoStatus)
	}
}

func TestClassifyQuickActionRoutesProgress(t *testing.T) {
	agent := newTestAgent(time.Now().UTC())

	result := classifyText(t, agent, "会議室の予約を今日すぐやる")

	require.Len(t, result.Drafts, 1)
	assert.Equal(t, domain.RouteProgress, result.Drafts[0].Route)
	assert.Equal(t, domain.MemoStatusActive, result.SuggestedMemoStatus)
}

func TestClassifyDelegationRoutesWaiting(t *testing.T) {
	agent := newTestAgent(time.Now().UTC())

	result := classifyText(t, agent, "経理へ請求書の支払いを依頼")

	require.Len(t, result.Drafts, 1)
	assert.Equal(t, domain.RouteWaiting, result.Drafts[0].Route)
}

func TestClassifyDatedActionRoutesCalendar(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	agent := newTestAgent(now)

	result := classifyText(t, agent, "11/15 に健康診断の予約")

	require.Len(t, result.Drafts, 1)
	draft := result.Drafts[0]
	assert.Equal(t, domain.RouteCalendar, draft.Route)

	due, err := domain.ParseDueDate(draft.DueDate)
	require.NoError(t, err, "due date %q should be valid ISO-8601", draft.DueDate)
	assert.Equal(t, time.November, due.Month())
	assert.Equal(t, 15, due.Day())
	assert.Equal(t, 2025, due.Year(), "11/15 should resolve to the upcoming November 15")
}

func TestClassifyYearlessDatePastRollsToNextYear(t *testing.T) {
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	agent := newTestAgent(now)

	result := classifyText(t, agent, "11/15 に健康診断の予約")

	require.Len(t, result.Drafts, 1)
	due, err := domain.ParseDueDate(result.Drafts[0].DueDate)
	require.NoError(t, err)
	assert.Equal(t, 2026, due.Year())
}

func TestClassifyMultistepEmitsProject(t *testing.T) {
	agent := newTestAgent(time.Now().UTC())

	result := classifyText(t, agent, "引越し準備を進める")

	assert.NotEmpty(t, result.ProjectTitle)
	require.NotEmpty(t, result.Drafts)

	hasNextAction := false
	for _, d := range result.Drafts {
		if d.Route == domain.RouteNextAction {
			hasNextAction = true
		}
	}
	assert.True(t, hasNextAction, "a multi-step result must carry a next_action first step")
}

func TestClassifySingleStepRoutesNextAction(t *testing.T) {
	agent := newTestAgent(time.Now().UTC())

	result := classifyText(t, agent, "請求書の送付")

	require.Len(t, result.Drafts, 1)
	assert.Equal(t, domain.RouteNextAction, result.Drafts[0].Route)
	assert.Empty(t, result.ProjectTitle)
}

func TestClassifyNonActionableSuggestsIdea(t *testing.T) {
	agent := newTestAgent(time.Now().UTC())

	result := classifyText(t, agent, "青い空がきれいだった")

	assert.Empty(t, result.Drafts)
	assert.Equal(t, domain.MemoStatusIdea, result.SuggestedMemoStatus)
}

func TestClassifyIsDeterministic(t *testing.T) {
	agent := newTestAgent(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	memo, err := domain.NewMemoSnapshot(uuid.New(), "", "経理へ請求書の支払いを依頼")
	require.NoError(t, err)

	first, err := agent.Classify(context.Background(), memo)
	require.NoError(t, err)
	second, err := agent.Classify(context.Background(), memo)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestClassifyRespectsContextCancellation(t *testing.T) {
	agent := newTestAgent(time.Now().UTC())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	memo, err := domain.NewMemoSnapshot(uuid.New(), "", "何かする")
	require.NoError(t, err)

	_, err = agent.Classify(ctx, memo)
	assert.ErrorIs(t, err, ErrTransientFailure)
}

func TestDraftTitleCollapsesToSingleLine(t *testing.T) {
	title := draftTitle("first line\nsecond line")
	assert.Equal(t, "first line", title)

	long := ""
	for i := 0; i < 200; i++ {
		long += "あ"
	}
	assert.Equal(t, 120, len([]rune(draftTitle(long))))
}
