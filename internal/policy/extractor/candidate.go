package extractor

import (
	"regexp"
	"strings"
)

// matcher is one entry of an ordered candidate table. find reports the first
// accepted value in text, or false when the candidate does not apply.
type matcher interface {
	find(text string) (string, bool)
}

// buildFunc turns the submatches of a candidate (without the full match)
// into a field value. Returning false rejects the match and the candidate
// moves on to the next occurrence in the text.
type buildFunc func(groups []string) (string, bool)

// candidate is a regular-expression entry of a table
type candidate struct {
	pattern *regexp.Regexp
	build   buildFunc
}

func rx(pattern string, build buildFunc) candidate {
	return candidate{pattern: regexp.MustCompile(pattern), build: build}
}

func (c candidate) find(text string) (string, bool) {
	for _, m := range c.pattern.FindAllStringSubmatch(text, -1) {
		if v, ok := c.build(m[1:]); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// tokenCandidate scans maximal runs matched by tokens and returns the first
// run accepted by accept. It stands in for patterns that would need
// lookaround to bound the run on both sides.
type tokenCandidate struct {
	tokens *regexp.Regexp
	accept func(token string) (string, bool)
}

func (c tokenCandidate) find(text string) (string, bool) {
	for _, tok := range c.tokens.FindAllString(text, -1) {
		if v, ok := c.accept(tok); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// sectionCandidate narrows the text to the first group of section before
// running inner against it.
type sectionCandidate struct {
	section *regexp.Regexp
	inner   matcher
}

func (c sectionCandidate) find(text string) (string, bool) {
	m := c.section.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return c.inner.find(m[1])
}

// table is an ordered candidate list: most specific layouts first, loose
// fallbacks last. The first accepted value wins.
type table []matcher

func (t table) first(text string) *string {
	for _, m := range t {
		if v, ok := m.find(text); ok {
			return &v
		}
	}
	return nil
}

// then returns a new table with other appended after t
func (t table) then(other table) table {
	out := make(table, 0, len(t)+len(other))
	out = append(out, t...)
	return append(out, other...)
}

// Build helpers

func direct(groups []string) (string, bool) {
	v := strings.TrimSpace(groups[0])
	return v, v != ""
}

func joined(groups []string) (string, bool) {
	v := JoinDigitGroups(groups...)
	return v, v != ""
}

func squashed(groups []string) (string, bool) {
	v := collapseSpaces(groups[0])
	return v, v != ""
}

var reSpaces = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}
