package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemoStatus represents the disposition of a memo after classification.
type MemoStatus string

// Possible memo status values. A memo with at least one actionable item is
// suggested "active"; a memo with nothing actionable is suggested "idea".
const (
	MemoStatusIdea   MemoStatus = "idea"
	MemoStatusActive MemoStatus = "active"
)

// MemoSnapshot is an immutable copy of a memo taken at enqueue time.
// The pipeline never writes back to the memo itself; the snapshot's fields
// are read-only inputs to the classification decision.
type MemoSnapshot struct {
	MemoID    uuid.UUID  `json:"memo_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Status    MemoStatus `json:"status,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewMemoSnapshot creates a snapshot of the given memo fields.
// Content may be empty; an empty-content memo still classifies (to zero
// drafts), so only the ID is required.
func NewMemoSnapshot(memoID uuid.UUID, title, content string) (MemoSnapshot, error) {
	snap := MemoSnapshot{
		MemoID:    memoID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := snap.Validate(); err != nil {
		return MemoSnapshot{}, err
	}
	return snap, nil
}

// Validate checks that the snapshot refers to a real memo.
func (m MemoSnapshot) Validate() error {
	if m.MemoID == uuid.Nil {
		return ErrEmptyMemoID
	}
	if m.Status != "" && !isValidMemoStatus(m.Status) {
		return ErrInvalidMemoStatus
	}
	return nil
}

// Empty reports whether the memo carries no content worth classifying.
func (m MemoSnapshot) Empty() bool {
	return strings.TrimSpace(m.Content) == ""
}

// isValidMemoStatus checks if the given status is a valid MemoStatus.
func isValidMemoStatus(status MemoStatus) bool {
	switch status {
	case MemoStatusIdea, MemoStatusActive:
		return true
	default:
		return false
	}
}
