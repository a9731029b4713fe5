package domain

import (
	"fmt"
	"strings"
	"time"
)

// Route is the classification outcome determining which list a task
// belongs to once approved.
type Route string

// Possible route values, in decision-policy order.
const (
	// RouteProgress marks an action completable within about two minutes.
	RouteProgress Route = "progress"

	// RouteWaiting marks an action that should be delegated to someone else.
	RouteWaiting Route = "waiting"

	// RouteCalendar marks an action tied to a specific date.
	RouteCalendar Route = "calendar"

	// RouteNextAction marks a single actionable step not covered above.
	RouteNextAction Route = "next_action"
)

// Valid reports whether the route is one of the recognized dispositions.
func (r Route) Valid() bool {
	switch r {
	case RouteProgress, RouteWaiting, RouteCalendar, RouteNextAction:
		return true
	default:
		return false
	}
}

// Priority is an optional urgency hint attached to a draft.
type Priority string

// Possible priority values. The empty string means unset.
const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is recognized. Unset is valid.
func (p Priority) Valid() bool {
	switch p {
	case "", PriorityLow, PriorityNormal, PriorityHigh:
		return true
	default:
		return false
	}
}

// dueDateLayouts are the accepted ISO-8601 representations for due dates:
// a bare date, or a datetime with the "Z" designator or an explicit offset.
var dueDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// ParseDueDate parses an ISO-8601 due date string into a UTC time.
// Returns ErrInvalidDueDate if the value matches none of the accepted layouts.
func ParseDueDate(value string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, value)
}

// TaskDraft is a proposed task produced by classification. It is not a
// committed domain entity until the persistence step creates a Draft-status
// record from it.
type TaskDraft struct {
	// Title is the task summary. Required, non-empty after trimming.
	Title string `json:"title"`

	// Description carries optional detail.
	Description string `json:"description,omitempty"`

	// DueDate is an optional ISO-8601 date or datetime. Kept as the string
	// the classifier produced; sanitization drops values that do not parse.
	DueDate string `json:"due_date,omitempty"`

	// Priority is an optional urgency hint.
	Priority Priority `json:"priority,omitempty"`

	// Tags are resolved tag names. Only names already present in the tag
	// universe survive sanitization; no tag is ever created as a side effect.
	Tags []string `json:"tags,omitempty"`

	// EstimateMinutes is an optional non-negative effort estimate.
	EstimateMinutes int `json:"estimate_minutes,omitempty"`

	// Route is the target disposition for the draft.
	Route Route `json:"route"`

	// ProjectTitle links the draft to a proposed project when the memo
	// requires multi-step handling.
	ProjectTitle string `json:"project_title,omitempty"`
}

// Validate checks the draft's field-level invariants.
func (d TaskDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyDraftTitle
	}
	if !d.Route.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRoute, d.Route)
	}
	if !d.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, d.Priority)
	}
	if d.EstimateMinutes < 0 {
		return ErrNegativeEstimate
	}
	if d.DueDate != "" {
		if _, err := ParseDueDate(d.DueDate); err != nil {
			return err
		}
	}
	return nil
}

// ClassificationResult is the classifier's output for one memo.
type ClassificationResult struct {
	// Drafts is the ordered list of proposed tasks. May be empty when the
	// memo describes nothing actionable.
	Drafts []TaskDraft `json:"drafts"`

	// SuggestedMemoStatus is "idea" when nothing actionable was found and
	// "active" when at least one draft was produced. Empty when the
	// classifier could not decide (fallback results).
	SuggestedMemoStatus MemoStatus `json:"suggested_memo_status,omitempty"`

	// ProjectTitle is set when the memo requires multi-step handling; the
	// drafts then collectively belong to one proposed project.
	ProjectTitle string `json:"project_title,omitempty"`
}

// Multistep reports whether the result proposes a project.
func (r *ClassificationResult) Multistep() bool {
	return strings.TrimSpace(r.ProjectTitle) != ""
}
