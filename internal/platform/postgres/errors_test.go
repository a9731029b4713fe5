package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"memoflow/internal/persist"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{
			name:     "nil_error",
			input:    nil,
			expected: nil,
		},
		{
			name:     "no_rows_maps_to_not_found",
			input:    sql.ErrNoRows,
			expected: persist.ErrNotFound,
		},
		{
			name:     "unique_violation_maps_to_duplicate",
			input:    &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "tags_name_key"},
			expected: persist.ErrDuplicate,
		},
		{
			name:     "foreign_key_violation_maps_to_invalid_entity",
			input:    &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "draft_tasks_project_id_fkey"},
			expected: persist.ErrInvalidEntity,
		},
		{
			name:     "check_violation_maps_to_invalid_entity",
			input:    &pgconn.PgError{Code: checkViolationCode, ConstraintName: "draft_tasks_route_check"},
			expected: persist.ErrInvalidEntity,
		},
		{
			name:     "not_null_violation_maps_to_invalid_entity",
			input:    &pgconn.PgError{Code: notNullViolationCode, ColumnName: "title"},
			expected: persist.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MapError(tt.input)
			if tt.expected == nil {
				assert.NoError(t, result)
				return
			}
			assert.ErrorIs(t, result, tt.expected)
		})
	}
}

func TestMapErrorPassesThroughUnknownErrors(t *testing.T) {
	original := fmt.Errorf("connection reset")
	assert.Equal(t, original, MapError(original))

	wrapped := MapError(&pgconn.PgError{Code: "42P01"})
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(wrapped, &pgErr), "unmapped pg errors keep their type")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: foreignKeyViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("something else")))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: foreignKeyViolationCode}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsForeignKeyViolation(nil))
}
