package filter

import (
	"time"

	"github.com/tkingovr/postfilter/api"
)

// maxRecordedRunes bounds the text copied into decision records.
const maxRecordedRunes = 280

// FilterContext carries all metadata through the filter chain for a single text.
type FilterContext struct {
	// Text is the text under evaluation.
	Text string

	// Source labels where the text came from (e.g. "api", "stdin").
	Source string

	// Verdict is set by the RelevanceFilter.
	Verdict api.Verdict

	// MatchedRule is the name of the first rule that rejected the text.
	MatchedRule string

	// Message is an optional human-readable explanation.
	Message string

	// StartTime records when the text entered the pipeline.
	StartTime time.Time

	// Halted indicates the text was rejected and the verdict is final.
	Halted bool
}

// NewFilterContext creates a new FilterContext for a text.
func NewFilterContext(text, source string) *FilterContext {
	return &FilterContext{
		Text:      text,
		Source:    source,
		StartTime: time.Now(),
	}
}

// Decision returns the verdict carried by the context.
func (fc *FilterContext) Decision() api.Decision {
	return api.Decision{
		Verdict: fc.Verdict,
		Rule:    fc.MatchedRule,
		Message: fc.Message,
	}
}

// ToRecord converts the filter context into a decision record.
func (fc *FilterContext) ToRecord() *api.DecisionRecord {
	return &api.DecisionRecord{
		Timestamp: fc.StartTime,
		Source:    fc.Source,
		Text:      truncateRunes(fc.Text, maxRecordedRunes),
		Verdict:   fc.Verdict,
		Rule:      fc.MatchedRule,
		Message:   fc.Message,
		TextSize:  len(fc.Text),
		Duration:  time.Since(fc.StartTime),
	}
}

func truncateRunes(s string, max int) string {
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
