package classify

import (
	"context"

	"memoflow/internal/domain"
)

// Agent defines the interface for turning free-form memo text into
// structured task drafts. This interface is the boundary between the
// pipeline core and external AI/LLM services; one adapter exists per
// provider, selected by explicit configuration at construction.
//
// Implementations must honor the contract:
//   - A memo with empty content yields a result with zero drafts and no error.
//   - The memo snapshot is a read-only input; it is never mutated.
//   - Errors are reported, never panicked, so the worker can convert them
//     into a failed job state.
type Agent interface {
	// Classify produces zero or more task drafts with routing metadata
	// for the given memo.
	Classify(ctx context.Context, memo domain.MemoSnapshot) (*domain.ClassificationResult, error)
}
