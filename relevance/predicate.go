// Package relevance decides whether a short text, such as a social-media
// post, is worth keeping. A text is relevant when none of the rules in a
// RuleSet match it.
//
// Every Predicate is a pure function of its input, so a RuleSet can be
// shared between goroutines without synchronization.
package relevance

// Predicate is a single disqualification rule.
type Predicate interface {
	// Name identifies the rule in decisions and logs.
	Name() string

	// Match reports whether the text should be rejected.
	Match(text string) bool
}

type funcPredicate struct {
	name string
	fn   func(string) bool
}

func (p funcPredicate) Name() string           { return p.name }
func (p funcPredicate) Match(text string) bool { return p.fn(text) }

// PredicateFunc adapts an ordinary function into a named Predicate.
func PredicateFunc(name string, fn func(text string) bool) Predicate {
	return funcPredicate{name: name, fn: fn}
}

// Explainer is implemented by predicates that can say why they rejected a
// text. The rule name may be more specific than Name.
type Explainer interface {
	Explain(text string) (rule, message string)
}
