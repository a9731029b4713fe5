package classify

import (
	"fmt"

	"memoflow/internal/domain"
)

// ResponseSchema is the JSON structure the LLM providers are instructed to
// return. Both the Gemini and OpenAI adapters decode into this shape before
// conversion to domain types.
type ResponseSchema struct {
	// Drafts is the ordered list of proposed tasks. May be empty.
	Drafts []DraftSchema `json:"drafts"`

	// SuggestedMemoStatus is "idea" or "active".
	SuggestedMemoStatus string `json:"suggested_memo_status,omitempty"`

	// ProjectTitle is set when the memo requires multi-step handling.
	ProjectTitle string `json:"project_title,omitempty"`
}

// DraftSchema is a single proposed task in the provider response.
type DraftSchema struct {
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	DueDate         string   `json:"due_date,omitempty"`
	Priority        string   `json:"priority,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	EstimateMinutes int      `json:"estimate_minutes,omitempty"`
	Route           string   `json:"route"`
	ProjectTitle    string   `json:"project_title,omitempty"`
}

// ToResult converts the wire schema into a domain result without applying
// the acceptance rules; Sanitize does that on the queue side. A nil receiver
// is structurally invalid.
func (s *ResponseSchema) ToResult() (*domain.ClassificationResult, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: response is nil", ErrInvalidResponse)
	}

	result := &domain.ClassificationResult{
		SuggestedMemoStatus: domain.MemoStatus(s.SuggestedMemoStatus),
		ProjectTitle:        s.ProjectTitle,
	}

	for _, d := range s.Drafts {
		result.Drafts = append(result.Drafts, domain.TaskDraft{
			Title:           d.Title,
			Description:     d.Description,
			DueDate:         d.DueDate,
			Priority:        domain.Priority(d.Priority),
			Tags:            d.Tags,
			EstimateMinutes: d.EstimateMinutes,
			Route:           domain.Route(d.Route),
			ProjectTitle:    d.ProjectTitle,
		})
	}

	return result, nil
}
