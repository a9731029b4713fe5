package classify

import (
	"strings"

	"memoflow/internal/domain"
)

// Sanitize applies the acceptance rules to a raw classification result and
// returns a cleaned copy. Field-level problems are handled locally rather
// than failing the whole result:
//
//   - drafts whose title is empty after trimming are dropped,
//   - drafts with an unrecognized route are dropped,
//   - malformed due dates are cleared (the draft survives without one),
//   - unrecognized priorities and negative estimates are cleared,
//   - tag mentions are resolved against the existing tag universe; unresolved
//     mentions are silently dropped and no new tag is ever created.
//
// The suggested memo status is normalized to the draft count when the
// classifier's value is missing or unrecognized.
func Sanitize(res *domain.ClassificationResult, universe []string) *domain.ClassificationResult {
	clean := &domain.ClassificationResult{
		SuggestedMemoStatus: res.SuggestedMemoStatus,
		ProjectTitle:        strings.TrimSpace(res.ProjectTitle),
	}

	for _, d := range res.Drafts {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			continue
		}
		if !d.Route.Valid() {
			continue
		}

		if d.DueDate != "" {
			if _, err := domain.ParseDueDate(d.DueDate); err != nil {
				d.DueDate = ""
			}
		}
		if !d.Priority.Valid() {
			d.Priority = ""
		}
		if d.EstimateMinutes < 0 {
			d.EstimateMinutes = 0
		}
		d.Tags = ResolveTags(d.Tags, universe)
		d.ProjectTitle = strings.TrimSpace(d.ProjectTitle)
		if d.ProjectTitle == "" {
			d.ProjectTitle = clean.ProjectTitle
		}

		clean.Drafts = append(clean.Drafts, d)
	}

	switch clean.SuggestedMemoStatus {
	case domain.MemoStatusIdea, domain.MemoStatusActive:
		// Keep the classifier's suggestion.
	default:
		if len(clean.Drafts) > 0 {
			clean.SuggestedMemoStatus = domain.MemoStatusActive
		} else {
			clean.SuggestedMemoStatus = domain.MemoStatusIdea
		}
	}

	return clean
}

// ResolveTags matches candidate tag mentions against the existing tag set.
// A mention matches a tag when either string contains the other after
// lowercasing. All matching tags attach, deduplicated, under the tag's
// canonical spelling; unresolved mentions are dropped. Tags are returned in
// universe order so results are deterministic.
func ResolveTags(mentions []string, universe []string) []string {
	if len(mentions) == 0 || len(universe) == 0 {
		return nil
	}

	var resolved []string
	for _, tag := range universe {
		lowerTag := strings.ToLower(tag)
		if lowerTag == "" {
			continue
		}
		for _, mention := range mentions {
			lowerMention := strings.ToLower(strings.TrimSpace(mention))
			if lowerMention == "" {
				continue
			}
			if strings.Contains(lowerTag, lowerMention) || strings.Contains(lowerMention, lowerTag) {
				resolved = append(resolved, tag)
				break
			}
		}
	}
	return resolved
}
