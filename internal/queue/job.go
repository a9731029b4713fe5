package queue

import (
	"time"

	"github.com/google/uuid"

	"memoflow/internal/domain"
	"memoflow/internal/persist"
)

// JobStatus represents the current state of a memo job.
type JobStatus string

// Possible job status values. Jobs move strictly forward through
// pending -> running -> {succeeded, failed} and never revisit a state.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// JobResult is the terminal outcome of a job. It is set exactly once, when
// the job reaches a terminal state, and never recomputed afterwards.
type JobResult struct {
	// SuggestedMemoStatus carries the classifier's memo disposition.
	// Unset on failure fallbacks.
	SuggestedMemoStatus domain.MemoStatus `json:"suggested_memo_status,omitempty"`

	// Persistence enumerates which drafts were committed and which failed,
	// plus the project-creation attempt for multi-step memos. Nil on
	// failure fallbacks (nothing was persisted).
	Persistence *persist.ApplyResult `json:"persistence,omitempty"`

	// FailureNote explains why the job failed. Empty on success.
	FailureNote string `json:"failure_note,omitempty"`
}

// memoJob is one enqueued processing request. Only the worker mutates a job
// after enqueue; the single-worker invariant guarantees one writer at a
// time, and terminal jobs are never re-entered.
type memoJob struct {
	id          uuid.UUID
	memo        domain.MemoSnapshot
	status      JobStatus
	enqueuedAt  time.Time
	completedAt *time.Time
	result      *JobResult
}

// JobSnapshot is the caller-visible view of a job, returned by Poll and
// carried in completion events.
type JobSnapshot struct {
	JobID       uuid.UUID           `json:"job_id"`
	Memo        domain.MemoSnapshot `json:"memo"`
	Status      JobStatus           `json:"status"`
	EnqueuedAt  time.Time           `json:"enqueued_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Result      *JobResult          `json:"result,omitempty"`
}

// snapshot captures the caller-visible view. The result pointer is shared,
// not copied: terminal results are immutable, so repeated polls of a
// terminal job return the identical result object.
func (j *memoJob) snapshot() JobSnapshot {
	return JobSnapshot{
		JobID:       j.id,
		Memo:        j.memo,
		Status:      j.status,
		EnqueuedAt:  j.enqueuedAt,
		CompletedAt: j.completedAt,
		Result:      j.result,
	}
}
