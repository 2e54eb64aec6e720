package relevance

import (
	"regexp"
	"strings"
	"unicode"
)

// Names of the built-in rules.
const (
	RuleTooManyTags  = "too_many_tags"
	RuleRocketEmoji  = "rocket_emoji"
	RuleShortText    = "short_text"
	RuleTCoLink      = "tco_link"
	RuleTelegramLink = "telegram_link"
)

const (
	// MaxTags is the largest combined number of hashtags and cashtags a
	// relevant text may carry.
	MaxTags = 3

	// MinWords is the smallest number of whitespace-separated tokens a
	// relevant text must have.
	MinWords = 3

	// Rocket is the disallowed symbol.
	Rocket = "\U0001F680"

	shortLinkDomain = "t.co"
)

var (
	// A word character is a letter, a digit or an underscore in any script.
	hashtagRe  = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	cashtagRe  = regexp.MustCompile(`\$[\p{L}\p{N}_]+`)
	telegramRe = regexp.MustCompile(`(t\.me/|telegram\.me/)`)
)

// CountTags returns the number of "#word" and "$word" occurrences in text.
func CountTags(text string) int {
	return len(hashtagRe.FindAllStringIndex(text, -1)) + len(cashtagRe.FindAllStringIndex(text, -1))
}

// HasTooManyTags reports whether text carries more than MaxTags tags.
func HasTooManyTags(text string) bool {
	return CountTags(text) > MaxTags
}

// ContainsRocket reports whether the rocket emoji appears anywhere in text.
func ContainsRocket(text string) bool {
	return strings.Contains(text, Rocket)
}

// HasShortWordCount reports whether text has fewer than MinWords tokens.
func HasShortWordCount(text string) bool {
	return len(strings.FieldsFunc(text, isSeparator)) < MinWords
}

// isSeparator reports whether r separates words. Besides Unicode white
// space this includes the ASCII file, group, record and unit separators.
func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

// ContainsTCoLink reports whether "t.co" appears in text, ignoring case.
// No URL parsing is done, so "t.co" inside any longer word matches too.
func ContainsTCoLink(text string) bool {
	return strings.Contains(strings.ToLower(text), shortLinkDomain)
}

// ContainsTelegramLink reports whether text contains a "t.me/" or
// "telegram.me/" fragment, ignoring case.
func ContainsTelegramLink(text string) bool {
	return telegramRe.MatchString(strings.ToLower(text))
}

// Built-in predicates, in their default evaluation order.
var (
	TooManyTags  = PredicateFunc(RuleTooManyTags, HasTooManyTags)
	RocketEmoji  = PredicateFunc(RuleRocketEmoji, ContainsRocket)
	ShortText    = PredicateFunc(RuleShortText, HasShortWordCount)
	TCoLink      = PredicateFunc(RuleTCoLink, ContainsTCoLink)
	TelegramLink = PredicateFunc(RuleTelegramLink, ContainsTelegramLink)
)
