package persist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"memoflow/internal/domain"
)

// DraftTaskRecord is a Draft-status task row held by the in-memory store.
type DraftTaskRecord struct {
	ID        uuid.UUID
	MemoID    uuid.UUID
	ProjectID *uuid.UUID
	Draft     domain.TaskDraft
	CreatedAt time.Time
}

// DraftProjectRecord is a Draft-status project row held by the in-memory store.
type DraftProjectRecord struct {
	ID        uuid.UUID
	MemoID    uuid.UUID
	Title     string
	CreatedAt time.Time
}

// MemoryStore is an in-memory implementation of Persister, TagSource, and
// AuditLog. It backs the pipeline in tests and in hosts that have no
// database configured. Failure injection hooks let tests exercise the
// partial-failure paths.
type MemoryStore struct {
	mu       sync.Mutex
	tags     []string
	tasks    []DraftTaskRecord
	projects []DraftProjectRecord
	audit    []AuditEntry

	// FailTask, when set, is consulted before each task insert; a non-nil
	// return aborts that insert only.
	FailTask func(draft domain.TaskDraft) error

	// FailProject, when set, is consulted before each project insert.
	FailProject func(title string) error
}

// NewMemoryStore creates a store seeded with the given tag universe.
func NewMemoryStore(tags ...string) *MemoryStore {
	return &MemoryStore{tags: append([]string(nil), tags...)}
}

// Ensure MemoryStore implements the persistence interfaces.
var (
	_ Persister = (*MemoryStore)(nil)
	_ TagSource = (*MemoryStore)(nil)
	_ AuditLog  = (*MemoryStore)(nil)
)

// CreateDraftTask implements Persister.
func (s *MemoryStore) CreateDraftTask(
	ctx context.Context,
	memoID uuid.UUID,
	projectID *uuid.UUID,
	draft domain.TaskDraft,
) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	if memoID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: draft task requires a memo back-reference", ErrInvalidEntity)
	}
	if err := draft.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailTask != nil {
		if err := s.FailTask(draft); err != nil {
			return uuid.Nil, err
		}
	}

	rec := DraftTaskRecord{
		ID:        uuid.New(),
		MemoID:    memoID,
		Draft:     draft,
		CreatedAt: time.Now().UTC(),
	}
	if projectID != nil {
		id := *projectID
		rec.ProjectID = &id
	}
	s.tasks = append(s.tasks, rec)
	return rec.ID, nil
}

// CreateDraftProject implements Persister.
func (s *MemoryStore) CreateDraftProject(
	ctx context.Context,
	memoID uuid.UUID,
	title string,
) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	if memoID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: draft project requires a memo back-reference", ErrInvalidEntity)
	}
	if title == "" {
		return uuid.Nil, fmt.Errorf("%w: project title cannot be empty", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailProject != nil {
		if err := s.FailProject(title); err != nil {
			return uuid.Nil, err
		}
	}

	rec := DraftProjectRecord{
		ID:        uuid.New(),
		MemoID:    memoID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	s.projects = append(s.projects, rec)
	return rec.ID, nil
}

// ListTags implements TagSource.
func (s *MemoryStore) ListTags(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tags...), nil
}

// RecordOutcome implements AuditLog.
func (s *MemoryStore) RecordOutcome(ctx context.Context, entry AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, entry)
	return nil
}

// Tasks returns a copy of the stored draft tasks.
func (s *MemoryStore) Tasks() []DraftTaskRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DraftTaskRecord(nil), s.tasks...)
}

// Projects returns a copy of the stored draft projects.
func (s *MemoryStore) Projects() []DraftProjectRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DraftProjectRecord(nil), s.projects...)
}

// AuditEntries returns a copy of the recorded audit entries.
func (s *MemoryStore) AuditEntries() []AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AuditEntry(nil), s.audit...)
}
