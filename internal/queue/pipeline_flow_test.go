package queue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoflow/internal/classify"
	"memoflow/internal/domain"
	"memoflow/internal/persist"
)

// These tests run whole memos through the pipeline with the rule-based
// classifier and the in-memory store, checking the memo-to-draft flow
// end to end rather than the queue mechanics.

func newFlowFixture(t *testing.T, tags ...string) *pipelineFixture {
	t.Helper()

	store := persist.NewMemoryStore(tags...)
	recorder := newCompletionRecorder()
	emitter := newTestEmitter(t, recorder)

	p, err := New(Config{
		Agent:     classify.NewRuleBasedAgent(setupTestLogger()),
		Persister: store,
		Tags:      store,
		Audit:     store,
		Emitter:   emitter,
		Logger:    setupTestLogger(),
	})
	require.NoError(t, err)
	p.Start()

	t.Cleanup(func() { shutdownPipeline(t, p) })

	return &pipelineFixture{pipeline: p, store: store, recorder: recorder}
}

func TestFlowSingleActionMemo(t *testing.T) {
	f := newFlowFixture(t, "請求書")

	jobID, memoID := enqueueMemo(t, f.pipeline, "A社に請求書の送付")
	snap := pollTerminal(t, f.pipeline, jobID)

	require.Equal(t, JobStatusSucceeded, snap.Status)
	require.NotNil(t, snap.Result)
	assert.Equal(t, domain.MemoStatusActive, snap.Result.SuggestedMemoStatus)

	tasks := f.store.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, memoID, tasks[0].MemoID)
	assert.Equal(t, domain.RouteNextAction, tasks[0].Draft.Route)
	assert.Equal(t, []string{"請求書"}, tasks[0].Draft.Tags,
		"mentioned tags resolve to existing canonical names")
	assert.Nil(t, tasks[0].ProjectID)
	assert.Empty(t, f.store.Projects())
}

func TestFlowIdeaMemoProducesNoTasks(t *testing.T) {
	f := newFlowFixture(t)

	jobID, _ := enqueueMemo(t, f.pipeline, "いつか海外に住んでみたい")
	snap := pollTerminal(t, f.pipeline, jobID)

	require.Equal(t, JobStatusSucceeded, snap.Status)
	assert.Equal(t, domain.MemoStatusIdea, snap.Result.SuggestedMemoStatus)
	assert.Empty(t, f.store.Tasks())
	assert.Empty(t, f.store.Projects())
}

func TestFlowEmptyMemoSucceedsWithNothingPersisted(t *testing.T) {
	f := newFlowFixture(t)

	jobID, _ := enqueueMemo(t, f.pipeline, "   \n\t  ")
	snap := pollTerminal(t, f.pipeline, jobID)

	require.Equal(t, JobStatusSucceeded, snap.Status)
	require.NotNil(t, snap.Result.Persistence)
	assert.Empty(t, snap.Result.Persistence.Outcomes)
	assert.Empty(t, f.store.Tasks())
}

func TestFlowMultistepMemoCreatesProject(t *testing.T) {
	f := newFlowFixture(t)

	jobID, memoID := enqueueMemo(t, f.pipeline, "新しいオフィスへの引っ越し準備を進める")
	snap := pollTerminal(t, f.pipeline, jobID)

	require.Equal(t, JobStatusSucceeded, snap.Status)

	projects := f.store.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, memoID, projects[0].MemoID)

	tasks := f.store.Tasks()
	require.NotEmpty(t, tasks)
	for _, task := range tasks {
		require.NotNil(t, task.ProjectID, "multi-step drafts attach to the created project")
		assert.Equal(t, projects[0].ID, *task.ProjectID)
	}

	require.NotNil(t, snap.Result.Persistence.Project)
	assert.Equal(t, projects[0].ID, snap.Result.Persistence.Project.ProjectID)
}

func TestFlowProjectCreationFailureDowngradesGracefully(t *testing.T) {
	f := newFlowFixture(t)
	f.store.FailProject = func(title string) error {
		return errors.New("projects table unavailable")
	}

	jobID, _ := enqueueMemo(t, f.pipeline, "新しいオフィスへの引っ越し準備を進める")
	snap := pollTerminal(t, f.pipeline, jobID)

	require.Equal(t, JobStatusSucceeded, snap.Status,
		"a failed project insert downgrades the memo, it does not fail the job")

	tasks := f.store.Tasks()
	require.NotEmpty(t, tasks, "drafts still persist without the project")
	for _, task := range tasks {
		assert.Nil(t, task.ProjectID)
	}

	require.NotNil(t, snap.Result.Persistence.Project)
	assert.False(t, snap.Result.Persistence.Project.Succeeded())
	assert.Contains(t, snap.Result.Persistence.Project.Error, "projects table unavailable")
}

func TestFlowPartialDraftFailureIsRecordedPerDraft(t *testing.T) {
	f := newFlowFixture(t)
	f.store.FailTask = func(draft domain.TaskDraft) error {
		if draft.Route == domain.RouteCalendar {
			return errors.New("calendar insert rejected")
		}
		return nil
	}

	jobID, _ := enqueueMemo(t, f.pipeline, "11/15に歯医者を予約する")
	snap := pollTerminal(t, f.pipeline, jobID)

	require.Equal(t, JobStatusSucceeded, snap.Status,
		"draft persistence is best effort; failures never fail the job")
	require.NotNil(t, snap.Result.Persistence)
	require.Len(t, snap.Result.Persistence.Outcomes, 1)

	outcome := snap.Result.Persistence.Outcomes[0]
	assert.False(t, outcome.Succeeded())
	assert.Contains(t, outcome.Error, "calendar insert rejected")
	assert.Equal(t, 1, snap.Result.Persistence.FailedCount())
	assert.Empty(t, f.store.Tasks())
}

func TestFlowAuditTrailRecordsPersistedDrafts(t *testing.T) {
	f := newFlowFixture(t, "発注")

	jobID, memoID := enqueueMemo(t, f.pipeline, "カタログの発注をすぐやる")
	snap := pollTerminal(t, f.pipeline, jobID)
	require.Equal(t, JobStatusSucceeded, snap.Status)

	entries := f.store.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, memoID, entries[0].MemoID)
	assert.Equal(t, jobID, entries[0].JobID)
	require.Len(t, entries[0].Items, 1)
	assert.Equal(t, domain.RouteProgress, entries[0].Items[0].Route,
		"two-minute memos route to progress")
}
