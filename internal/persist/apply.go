package persist

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"memoflow/internal/domain"
)

// Apply turns an accepted classification result into committed Draft-status
// records, best-effort per item. When the result proposes a project, the
// project is created first; on project failure the tasks are still created
// without linkage and the error is recorded for independent retry. A failure
// creating one draft never prevents the others from being attempted.
func Apply(
	ctx context.Context,
	logger *slog.Logger,
	persister Persister,
	memoID uuid.UUID,
	result *domain.ClassificationResult,
) *ApplyResult {
	if logger == nil {
		logger = slog.Default()
	}

	applied := &ApplyResult{}

	var projectID *uuid.UUID
	if result.Multistep() {
		applied.Project = &ProjectInfo{Title: result.ProjectTitle}

		id, err := persister.CreateDraftProject(ctx, memoID, result.ProjectTitle)
		if err != nil {
			// Downgrade gracefully: tasks must not be lost because the
			// project could not be created.
			applied.Project.Error = err.Error()
			logger.Error("draft project creation failed, continuing without linkage",
				"error", err,
				"memo_id", memoID,
				"project_title", result.ProjectTitle)
		} else {
			applied.Project.ProjectID = id
			projectID = &id
			logger.Info("draft project created",
				"project_id", id,
				"memo_id", memoID)
		}
	}

	for _, draft := range result.Drafts {
		outcome := DraftOutcome{Draft: draft}

		taskID, err := persister.CreateDraftTask(ctx, memoID, projectID, draft)
		if err != nil {
			outcome.Error = err.Error()
			logger.Error("draft task creation failed",
				"error", err,
				"memo_id", memoID,
				"title", draft.Title,
				"route", draft.Route)
		} else {
			outcome.TaskID = taskID
			logger.Debug("draft task created",
				"task_id", taskID,
				"memo_id", memoID,
				"route", draft.Route)
		}

		applied.Outcomes = append(applied.Outcomes, outcome)
	}

	return applied
}
