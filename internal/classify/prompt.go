package classify

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"memoflow/internal/domain"
)

// defaultPromptText is the built-in prompt for the LLM providers. It states
// the Clarify/Organize decision policy and the strict JSON output contract.
// A host can replace it with its own template file via LoadPromptTemplate.
const defaultPromptText = `You are a GTD task clarification engine.

You MUST:
- evaluate exactly one memo using the decision policy below,
- output ONLY a single valid JSON object, no prose, no code fences,
- be deterministic (same input produces same output).

You MUST NOT:
- motivate, judge, advise, or ask questions,
- invent deadlines, durations, or intentions not present in the memo,
- modify the memo or reference yourself.

Decision policy (apply the first matching rule):
1. If the action is completable within about two minutes, use "route": "progress".
2. If the action should be delegated or is not the memo owner's
   responsibility, use "route": "waiting".
3. If the action is tied to a specific date, use "route": "calendar" and set
   "due_date" to that date in ISO-8601 (date, or datetime with "Z" or offset).
4. If it is a single actionable step not covered above, use "route": "next_action".
5. If it requires multiple steps, set "project_title" and emit one or more
   drafts, at least one with "route": "next_action" (the first step).
6. If the memo describes no actionable item, return zero drafts and
   "suggested_memo_status": "idea".
7. If one or more drafts are produced, set "suggested_memo_status": "active".

Output JSON shape:
{
  "drafts": [
    {
      "title": string,
      "description": string (optional),
      "due_date": string (optional, ISO-8601),
      "priority": "low" | "normal" | "high" (optional),
      "tags": [string] (optional, only names mentioned in the memo),
      "estimate_minutes": integer (optional, non-negative),
      "route": "progress" | "waiting" | "calendar" | "next_action",
      "project_title": string (optional)
    }
  ],
  "suggested_memo_status": "idea" | "active",
  "project_title": string (optional)
}

Memo title: {{.MemoTitle}}
Memo status: {{.MemoStatus}}
Memo content:
{{.MemoText}}
`

// promptData is the data passed to the prompt template.
type promptData struct {
	MemoTitle  string
	MemoStatus string
	MemoText   string
}

// PromptTemplate renders classification prompts for the LLM providers.
type PromptTemplate struct {
	tmpl *template.Template
}

// DefaultPromptTemplate returns the built-in prompt template.
func DefaultPromptTemplate() *PromptTemplate {
	// The default template is a compile-time constant; a parse failure here
	// is a programming error.
	return &PromptTemplate{tmpl: template.Must(template.New("classify").Parse(defaultPromptText))}
}

// LoadPromptTemplate reads and parses a prompt template from the given path.
func LoadPromptTemplate(path string) (*PromptTemplate, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
			ErrInvalidConfig, path, err)
	}

	tmpl, err := template.New("classify").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			ErrInvalidConfig, err)
	}

	return &PromptTemplate{tmpl: tmpl}, nil
}

// Render produces the prompt string for the given memo.
func (p *PromptTemplate) Render(memo domain.MemoSnapshot) (string, error) {
	data := promptData{
		MemoTitle:  memo.Title,
		MemoStatus: string(memo.Status),
		MemoText:   memo.Content,
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
