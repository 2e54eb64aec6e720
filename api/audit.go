package api

import (
	"strings"
	"time"
)

// QueryFilter defines criteria for querying decision records.
type QueryFilter struct {
	Since   time.Time `json:"since,omitempty"`
	Until   time.Time `json:"until,omitempty"`
	Source  string    `json:"source,omitempty"`
	Verdict Verdict   `json:"verdict,omitempty"`
	Rule    string    `json:"rule,omitempty"`
	Text    string    `json:"text,omitempty"`
	Limit   int       `json:"limit,omitempty"`
	Offset  int       `json:"offset,omitempty"`
}

// Matches reports whether r satisfies every criterion set on f.
// Limit and Offset are ignored.
func (f QueryFilter) Matches(r *DecisionRecord) bool {
	if !f.Since.IsZero() && r.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && r.Timestamp.After(f.Until) {
		return false
	}
	if f.Source != "" && r.Source != f.Source {
		return false
	}
	if f.Verdict != "" && r.Verdict != f.Verdict {
		return false
	}
	if f.Rule != "" && r.Rule != f.Rule {
		return false
	}
	// Text is a case-insensitive substring of the recorded (possibly truncated) text.
	if f.Text != "" && !strings.Contains(strings.ToLower(r.Text), strings.ToLower(f.Text)) {
		return false
	}
	return true
}

// DecisionStats provides summary statistics over recorded decisions.
type DecisionStats struct {
	Total    int            `json:"total"`
	Relevant int            `json:"relevant"`
	Rejected int            `json:"rejected"`
	ByRule   map[string]int `json:"by_rule"`
	BySource map[string]int `json:"by_source"`
}

// NewDecisionStats returns empty stats with initialized maps.
func NewDecisionStats() *DecisionStats {
	return &DecisionStats{
		ByRule:   make(map[string]int),
		BySource: make(map[string]int),
	}
}

// Add counts a single record.
func (s *DecisionStats) Add(r *DecisionRecord) {
	s.Total++
	switch r.Verdict {
	case VerdictRelevant:
		s.Relevant++
	case VerdictRejected:
		s.Rejected++
	}
	if r.Rule != "" {
		s.ByRule[r.Rule]++
	}
	if r.Source != "" {
		s.BySource[r.Source]++
	}
}
