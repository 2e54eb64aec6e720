package filter

import (
	"context"

	"github.com/tkingovr/postfilter/api"
	"github.com/tkingovr/postfilter/relevance"
)

type messager interface {
	Message() string
}

// RelevanceFilter evaluates the text against a rule set.
type RelevanceFilter struct {
	rules relevance.RuleSet
}

func NewRelevanceFilter(rules relevance.RuleSet) *RelevanceFilter {
	return &RelevanceFilter{rules: rules}
}

func (f *RelevanceFilter) Name() string { return "relevance" }

func (f *RelevanceFilter) Process(_ context.Context, fc *FilterContext) error {
	if fc.Halted {
		return nil
	}

	p, matched := f.rules.Evaluate(fc.Text)
	if !matched {
		fc.Verdict = api.VerdictRelevant
		return nil
	}

	fc.Verdict = api.VerdictRejected
	switch e := p.(type) {
	case relevance.Explainer:
		fc.MatchedRule, fc.Message = e.Explain(fc.Text)
	case messager:
		fc.MatchedRule = p.Name()
		fc.Message = e.Message()
	default:
		fc.MatchedRule = p.Name()
	}
	fc.Halted = true
	return nil
}
