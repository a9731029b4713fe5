package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"memoflow/internal/domain"
	"memoflow/internal/persist"
	"memoflow/internal/platform/logger"
)

// Store implements the persist.Persister, persist.TagSource, and
// persist.AuditLog interfaces using a PostgreSQL database as the storage
// backend.
//
// Tasks and projects created from memo classification always carry Draft
// status; promotion to a live task happens elsewhere, after user review.
type Store struct {
	db     persist.DBTX
	logger *slog.Logger
}

// NewStore creates a new PostgreSQL implementation of the persistence
// interfaces. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewStore(db persist.DBTX, log *slog.Logger) *Store {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &Store{
		db:     db,
		logger: log.With(slog.String("component", "postgres_store")),
	}
}

// Ensure Store implements the persistence interfaces.
var (
	_ persist.Persister = (*Store)(nil)
	_ persist.TagSource = (*Store)(nil)
	_ persist.AuditLog  = (*Store)(nil)
)

// CreateDraftTask implements persist.Persister.
// It saves a sanitized draft as a Draft-status task row.
// Returns persist.ErrInvalidEntity if the referenced project does not exist.
func (s *Store) CreateDraftTask(
	ctx context.Context,
	memoID uuid.UUID,
	projectID *uuid.UUID,
	draft domain.TaskDraft,
) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if memoID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: draft task requires a memo back-reference",
			persist.ErrInvalidEntity)
	}
	if err := draft.Validate(); err != nil {
		log.Warn("draft validation failed during create",
			slog.String("error", err.Error()),
			slog.String("memo_id", memoID.String()))
		return uuid.Nil, fmt.Errorf("%w: %v", persist.ErrInvalidEntity, err)
	}

	var dueDate sql.NullTime
	if draft.DueDate != "" {
		parsed, err := domain.ParseDueDate(draft.DueDate)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: %v", persist.ErrInvalidEntity, err)
		}
		dueDate = sql.NullTime{Time: parsed, Valid: true}
	}

	tagsJSON, err := json.Marshal(draft.Tags)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO draft_tasks
			(id, memo_id, project_id, title, description, due_date, priority,
			 tags, estimate_minutes, route, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		id,
		memoID,
		projectID,
		draft.Title,
		draft.Description,
		dueDate,
		string(draft.Priority),
		tagsJSON,
		draft.EstimateMinutes,
		string(draft.Route),
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to create draft task",
			slog.String("error", err.Error()),
			slog.String("memo_id", memoID.String()))
		return uuid.Nil, MapError(err)
	}

	log.Info("draft task created",
		slog.String("task_id", id.String()),
		slog.String("memo_id", memoID.String()),
		slog.String("route", string(draft.Route)))
	return id, nil
}

// CreateDraftProject implements persist.Persister.
// It saves a Draft-status project row referencing the source memo.
func (s *Store) CreateDraftProject(
	ctx context.Context,
	memoID uuid.UUID,
	title string,
) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if memoID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: draft project requires a memo back-reference",
			persist.ErrInvalidEntity)
	}
	if title == "" {
		return uuid.Nil, fmt.Errorf("%w: project title cannot be empty",
			persist.ErrInvalidEntity)
	}

	id := uuid.New()
	query := `
		INSERT INTO draft_projects (id, memo_id, title, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, id, memoID, title, time.Now().UTC())
	if err != nil {
		log.Error("failed to create draft project",
			slog.String("error", err.Error()),
			slog.String("memo_id", memoID.String()))
		return uuid.Nil, MapError(err)
	}

	log.Info("draft project created",
		slog.String("project_id", id.String()),
		slog.String("memo_id", memoID.String()))
	return id, nil
}

// ListTags implements persist.TagSource.
// It returns the names of all existing tags in creation order.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM tags ORDER BY created_at, name`)
	if err != nil {
		log.Error("failed to list tags", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close tag rows", slog.String("error", cerr.Error()))
		}
	}()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, MapError(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return names, nil
}

// RecordOutcome implements persist.AuditLog.
// It appends one analysis log row per completed job.
func (s *Store) RecordOutcome(ctx context.Context, entry persist.AuditEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	itemsJSON, err := json.Marshal(entry.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal audit items: %w", err)
	}

	var projectJSON []byte
	if entry.Project != nil {
		projectJSON, err = json.Marshal(entry.Project)
		if err != nil {
			return fmt.Errorf("failed to marshal audit project: %w", err)
		}
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO memo_analysis_log (id, job_id, memo_id, items, project, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		uuid.New(),
		entry.JobID,
		entry.MemoID,
		itemsJSON,
		projectJSON,
		createdAt,
	)
	if err != nil {
		log.Error("failed to record analysis log entry",
			slog.String("error", err.Error()),
			slog.String("job_id", entry.JobID.String()))
		return MapError(err)
	}

	return nil
}
