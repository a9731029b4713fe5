// Package persist defines the persistence boundary of the memo pipeline:
// the narrow interfaces the queue calls to commit draft records, resolve
// tags, and record audit entries, plus the per-item outcome types used for
// partial-failure reporting.
package persist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"memoflow/internal/domain"
)

// Common store errors shared by all persistence implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")
)

// Persister creates committed Draft-status records from accepted drafts.
// Implementations own their transactional boundaries; the pipeline's
// obligation is to call create once per logical entity and tolerate
// partial failure.
type Persister interface {
	// CreateDraftTask creates a Draft-status task row for the given draft,
	// carrying the memo back-reference and, when non-nil, a project link.
	// Returns the new task's ID.
	CreateDraftTask(
		ctx context.Context,
		memoID uuid.UUID,
		projectID *uuid.UUID,
		draft domain.TaskDraft,
	) (uuid.UUID, error)

	// CreateDraftProject creates a Draft-status project row for the given
	// title, carrying the memo back-reference. Returns the new project's ID.
	CreateDraftProject(ctx context.Context, memoID uuid.UUID, title string) (uuid.UUID, error)
}

// TagSource exposes the existing tag universe used for tag resolution.
// The pipeline only ever reads tags; it never creates them.
type TagSource interface {
	// ListTags returns the names of all existing tags.
	ListTags(ctx context.Context) ([]string, error)
}

// AuditLog records completed job outcomes for later UI display and the
// approval workflow that maps routes to final statuses.
type AuditLog interface {
	// RecordOutcome appends one analysis log entry for a completed job.
	RecordOutcome(ctx context.Context, entry AuditEntry) error
}

// AuditEntry is one analysis log record for a completed job.
type AuditEntry struct {
	JobID     uuid.UUID    `json:"job_id"`
	MemoID    uuid.UUID    `json:"memo_id"`
	Items     []AuditItem  `json:"items"`
	Project   *ProjectInfo `json:"project,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// AuditItem maps one persisted draft task to its routing decision.
type AuditItem struct {
	TaskID uuid.UUID    `json:"task_id"`
	Route  domain.Route `json:"route"`
}

/// DraftOutcome is the tagged per-draft result of persistence: either a
// created task ID or a failure reason, never both.
type DraftOutcome struct {
	// Draft is the sanitized draft this outcome refers to.
	Draft domain.TaskDraft `json:"draft"`

	// TaskID is the created task's ID on success.
	TaskID uuid.UUID `json:"task_id,omitempty"`

	// Error holds the failure reason when creation failed.
	Error string `json:"error,omitempty"`
}

// Succeeded reports whether the draft was persisted.
func (o DraftOutcome) Succeeded() bool {
	return o.Error == "" && o.TaskID != uuid.Nil
}

// ProjectInfo describes the project-creation attempt of a multi-step job.
type ProjectInfo struct {
	// Title is the proposed project title.
	Title string `json:"title"`

	// ProjectID is the created project's ID on success.
	ProjectID uuid.UUID `json:"project_id,omitempty"`

	// Error holds the failure reason when project creation failed. Task
	// drafts are still created without project linkage in that case, so
	// the host can retry project creation independently.
	Error string `json:"error,omitempty"`
}

// Succeeded reports whether the project was created.
func (p *ProjectInfo) Succeeded() bool {
	return p != nil && p.Error == "" && p.ProjectID != uuid.Nil
}

// ApplyResult aggregates the persistence outcomes of one job.
type ApplyResult struct {
	// Outcomes holds one entry per sanitized draft, in classifier order.
	Outcomes []DraftOutcome `json:"outcomes"`

	// Project is set when the classification proposed a project.
	Project *ProjectInfo `json:"project,omitempty"`
}

// FailedCount returns how many drafts could not be persisted.
func (r *ApplyResult) FailedCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			n++
		}
	}
	return n
}
