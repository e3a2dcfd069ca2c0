// Package moderation decides whether message text is profane or spam.
// Classification is pure string work; acting on a verdict (deleting,
// warning) is the bot's job.
package moderation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Verdict int

const (
	VerdictClean Verdict = iota
	VerdictAllowed
	VerdictBannedWord
	VerdictSpam
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllowed:
		return "allowed"
	case VerdictBannedWord:
		return "banned_word"
	case VerdictSpam:
		return "spam"
	default:
		return "clean"
	}
}

type Classifier struct {
	banned  []string
	allowed []string
	spam    []string
}

func NewClassifier(banned, allowed, spam []string) *Classifier {
	return &Classifier{
		banned:  lowercaseAll(banned),
		allowed: lowercaseAll(allowed),
		spam:    lowercaseAll(spam),
	}
}

// Classify checks the allow list first: a single allow-listed word
// exempts the whole message, regardless of what else it contains.
func (c *Classifier) Classify(text string) Verdict {
	lower := strings.ToLower(text)

	for _, term := range c.allowed {
		if containsStandalone(lower, term) {
			return VerdictAllowed
		}
	}
	for _, term := range c.banned {
		if containsStandalone(lower, term) {
			return VerdictBannedWord
		}
	}
	return VerdictClean
}

// IsSpam reports whether at least two thirds (rounded up) of the
// configured spam phrases occur in the text. Phrases match anywhere,
// with no word-boundary requirement.
func (c *Classifier) IsSpam(text string) bool {
	if text == "" || len(c.spam) == 0 {
		return false
	}

	lower := strings.ToLower(text)
	matched := 0
	for _, phrase := range c.spam {
		if strings.Contains(lower, phrase) {
			matched++
		}
	}

	threshold := (2*len(c.spam) + 2) / 3
	return matched >= threshold
}

// containsStandalone reports whether term occurs in text with a
// non-alphanumeric character (or the string edge) on both sides. A term
// embedded in a longer word does not count.
func containsStandalone(text, term string) bool {
	if term == "" {
		return false
	}
	for from := 0; ; {
		idx := strings.Index(text[from:], term)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryBefore(text string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isAlnum(r)
}

func boundaryAfter(text string, end int) bool {
	if end == len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isAlnum(r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lowercaseAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		out = append(out, strings.ToLower(term))
	}
	return out
}
