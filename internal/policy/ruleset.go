package policy

import (
	"fmt"
	"path/filepath"

	"github.com/tkingovr/postfilter/relevance"
)

// BuildRuleSet returns the built-in rules followed by the policy's extra
// rules and, if configured, its Rego policy. A relative opa_policy path is
// resolved against baseDir.
func BuildRuleSet(pf *PolicyFile, baseDir string) (relevance.RuleSet, error) {
	rules := relevance.DefaultRules()
	if pf == nil {
		return rules, nil
	}

	extra := make([]relevance.Predicate, 0, len(pf.Rules)+1)
	for _, r := range pf.Rules {
		p, err := NewPatternRule(r)
		if err != nil {
			return relevance.RuleSet{}, err
		}
		extra = append(extra, p)
	}

	if path := pf.Settings.OPAPolicy; path != "" {
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		opa, err := NewOPARule(path)
		if err != nil {
			return relevance.RuleSet{}, fmt.Errorf("loading OPA policy: %w", err)
		}
		extra = append(extra, opa)
	}

	return rules.With(extra...), nil
}
