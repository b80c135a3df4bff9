// Package moderation holds the content rules shared by comments and images:
// the profanity predicate applied to user text and the number of distinct
// reports after which content is removed.
package moderation

import (
	"regexp"
	"strings"
)

// ReportThreshold is the number of distinct reporters that removes a comment
// or image.
const ReportThreshold = 3

// TestWord is always on the block list so callers can exercise the rejection
// path without shipping real profanity in fixtures.
const TestWord = "Test_bad_word_and_or_inappropriate_content"

var defaultWords = []string{
	"arse", "arsehole", "asshole", "bastard", "bitch", "bollocks", "bullshit",
	"cock", "crap", "cunt", "damn", "dick", "dickhead", "fag", "faggot",
	"fuck", "fucked", "fucker", "fucking", "motherfucker", "nigger", "piss",
	"prick", "pussy", "retard", "shit", "shitty", "slut", "twat", "wanker",
	"whore",
}

// Filter flags text containing any listed word as a whole word,
// case-insensitively. A Filter is safe for concurrent use.
type Filter struct {
	pattern *regexp.Regexp
}

// NewFilter builds a Filter from the default list plus extra. Blank extra
// words are ignored.
func NewFilter(extra ...string) *Filter {
	words := make([]string, 0, len(defaultWords)+len(extra)+1)
	words = append(words, defaultWords...)
	words = append(words, TestWord)
	for _, w := range extra {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}

	alts := make([]string, len(words))
	for i, w := range words {
		alts[i] = regexp.QuoteMeta(w)
	}

	// (?:^|\W) rather than \b so entries with punctuation still match whole.
	return &Filter{
		pattern: regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(?:` + strings.Join(alts, "|") + `)(?:$|[^\p{L}\p{N}_])`),
	}
}

// IsOffensive reports whether text contains a blocked word.
func (f *Filter) IsOffensive(text string) bool {
	return f.pattern.MatchString(text)
}
