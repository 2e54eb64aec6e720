package relevance

// RuleSet is an ordered, read-only list of predicates.
// A text is relevant when no predicate in the set matches it.
type RuleSet struct {
	rules []Predicate
}

// NewRuleSet creates a rule set evaluating rules in the given order.
func NewRuleSet(rules ...Predicate) RuleSet {
	return RuleSet{rules: append([]Predicate(nil), rules...)}
}

var builtin = []Predicate{
	TooManyTags,
	RocketEmoji,
	ShortText,
	TCoLink,
	TelegramLink,
}

// DefaultRules returns the built-in rule set.
func DefaultRules() RuleSet {
	return NewRuleSet(builtin...)
}

// IsBuiltin reports whether name belongs to one of the built-in rules.
func IsBuiltin(name string) bool {
	for _, p := range builtin {
		if p.Name() == name {
			return true
		}
	}
	return false
}

// With returns a new rule set with extra rules appended. The receiver is
// left unchanged.
func (s RuleSet) With(rules ...Predicate) RuleSet {
	out := make([]Predicate, 0, len(s.rules)+len(rules))
	out = append(out, s.rules...)
	out = append(out, rules...)
	return RuleSet{rules: out}
}

// Evaluate returns the first rule that matches text, or false if none does.
func (s RuleSet) Evaluate(text string) (Predicate, bool) {
	for _, p := range s.rules {
		if p.Match(text) {
			return p, true
		}
	}
	return nil, false
}

// Relevant reports whether no rule in the set matches text.
func (s RuleSet) Relevant(text string) bool {
	_, matched := s.Evaluate(text)
	return !matched
}

// Len returns the number of rules.
func (s RuleSet) Len() int { return len(s.rules) }

// Names returns the rule names in evaluation order.
func (s RuleSet) Names() []string {
	names := make([]string, len(s.rules))
	for i, p := range s.rules {
		names[i] = p.Name()
	}
	return names
}

var defaultRules = DefaultRules()

// IsRelevant reports whether text passes every built-in rule.
func IsRelevant(text string) bool {
	return defaultRules.Relevant(text)
}
