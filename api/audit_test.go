package api

import (
	"testing"
	"time"
)

func TestQueryFilter_Matches(t *testing.T) {
	now := time.Now()
	r := &DecisionRecord{
		Timestamp: now,
		Source:    "feed",
		Text:      "Big Launch next week",
		Verdict:   VerdictRejected,
		Rule:      "short_text",
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   bool
	}{
		{"empty", QueryFilter{}, true},
		{"source", QueryFilter{Source: "feed"}, true},
		{"other source", QueryFilter{Source: "api"}, false},
		{"verdict", QueryFilter{Verdict: VerdictRelevant}, false},
		{"rule", QueryFilter{Rule: "short_text"}, true},
		{"text any case", QueryFilter{Text: "LAUNCH"}, true},
		{"text missing", QueryFilter{Text: "airdrop"}, false},
		{"since future", QueryFilter{Since: now.Add(time.Minute)}, false},
		{"until past", QueryFilter{Until: now.Add(-time.Minute)}, false},
		{"combined", QueryFilter{Source: "feed", Text: "next", Verdict: VerdictRejected}, true},
	}
	for _, tt := range tests {
		if got := tt.filter.Matches(r); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
