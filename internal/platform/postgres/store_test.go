package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoflow/internal/domain"
	"memoflow/internal/persist"
)

// nopDB satisfies persist.DBTX for constructor tests without a live database.
type nopDB struct{}

func (nopDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, sql.ErrConnDone
}

func (nopDB) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return nil, sql.ErrConnDone
}

func (nopDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, sql.ErrConnDone
}

func (nopDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

func TestNewStore(t *testing.T) {
	t.Run("nil_db_panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewStore(nil, slog.Default())
		})
	})

	t.Run("nil_logger_uses_default", func(t *testing.T) {
		store := NewStore(nopDB{}, nil)
		require.NotNil(t, store)
		assert.NotNil(t, store.logger)
	})
}

func TestCreateDraftTaskRejectsInvalidInput(t *testing.T) {
	store := NewStore(nopDB{}, slog.Default())
	ctx := context.Background()

	t.Run("nil_memo_id", func(t *testing.T) {
		_, err := store.CreateDraftTask(ctx, uuid.Nil, nil, domain.TaskDraft{
			Title: "valid", Route: domain.RouteNextAction,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, persist.ErrInvalidEntity)
	})

	t.Run("invalid_draft", func(t *testing.T) {
		_, err := store.CreateDraftTask(ctx, uuid.New(), nil, domain.TaskDraft{
			Title: "", Route: domain.RouteNextAction,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, persist.ErrInvalidEntity)
	})

	t.Run("unparseable_due_date", func(t *testing.T) {
		_, err := store.CreateDraftTask(ctx, uuid.New(), nil, domain.TaskDraft{
			Title:   "valid",
			Route:   domain.RouteCalendar,
			DueDate: "next tuesday",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, persist.ErrInvalidEntity)
	})
}

func TestCreateDraftProjectRejectsInvalidInput(t *testing.T) {
	store := NewStore(nopDB{}, slog.Default())
	ctx := context.Background()

	t.Run("nil_memo_id", func(t *testing.T) {
		_, err := store.CreateDraftProject(ctx, uuid.Nil, "some project")
		require.Error(t, err)
		assert.ErrorIs(t, err, persist.ErrInvalidEntity)
	})

	t.Run("empty_title", func(t *testing.T) {
		_, err := store.CreateDraftProject(ctx, uuid.New(), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, persist.ErrInvalidEntity)
	})
}
