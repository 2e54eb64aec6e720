package api

import "time"

// Verdict is the outcome of evaluating a text.
type Verdict string

const (
	VerdictRelevant Verdict = "relevant"
	VerdictRejected Verdict = "rejected"
)

// Decision explains a verdict.
type Decision struct {
	Verdict Verdict `json:"verdict"`
	Rule    string  `json:"rule,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Relevant reports whether the decision accepted the text.
func (d Decision) Relevant() bool {
	return d.Verdict == VerdictRelevant
}

// DecisionRecord is a single audited evaluation.
type DecisionRecord struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source,omitempty"`
	Text      string        `json:"text"`
	Verdict   Verdict       `json:"verdict"`
	Rule      string        `json:"rule,omitempty"`
	Message   string        `json:"message,omitempty"`
	TextSize  int           `json:"text_size"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// CheckRequest is the body of POST /api/v1/check.
type CheckRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// CheckResponse is the result of a check.
type CheckResponse = Decision
