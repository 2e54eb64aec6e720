package policy

import (
	"fmt"
	"regexp"
	"strings"
)

// PatternRule rejects texts containing any of a set of phrases
// (case-insensitive) or matching a regular expression.
type PatternRule struct {
	name     string
	message  string
	contains []string
	re       *regexp.Regexp
}

// NewPatternRule compiles a policy rule into a predicate.
func NewPatternRule(rule Rule) (*PatternRule, error) {
	p := &PatternRule{
		name:    rule.Name,
		message: rule.Message,
	}
	for _, s := range rule.Contains {
		p.contains = append(p.contains, strings.ToLower(s))
	}
	if rule.Regex != "" {
		re, err := regexp.Compile(rule.Regex)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		p.re = re
	}
	return p, nil
}

func (p *PatternRule) Name() string { return p.name }

// Message returns the configured explanation, if any.
func (p *PatternRule) Message() string { return p.message }

func (p *PatternRule) Match(text string) bool {
	if p.re != nil && p.re.MatchString(text) {
		return true
	}
	if len(p.contains) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, s := range p.contains {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
