package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyDraftTitle is returned when a task draft's title is empty
	// after trimming whitespace.
	ErrEmptyDraftTitle = errors.New("draft title cannot be empty")

	// ErrInvalidRoute is returned when a route value is not one of the
	// recognized dispositions.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrInvalidPriority is returned when a priority value is not recognized.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidDueDate is returned when a due date does not parse as an
	// ISO-8601 date or datetime.
	ErrInvalidDueDate = errors.New("invalid due date")

	// ErrNegativeEstimate is returned when an effort estimate is negative.
	ErrNegativeEstimate = errors.New("estimate cannot be negative")

	// ErrInvalidMemoStatus is returned when a memo status is not valid.
	ErrInvalidMemoStatus = errors.New("invalid memo status")

	// ErrEmptyMemoID is returned when a memo snapshot is missing its ID.
	ErrEmptyMemoID = errors.New("memo ID cannot be empty")
)
