package extractor

import "strings"

// Shared pattern fragments. Go's regexp treats \b and \w as ASCII only, so
// every boundary next to Cyrillic text is spelled out as a character class.
const (
	upperUA = `А-ЯЁЄІЇҐ`
	lowerUA = `а-яёєіїґ`
	letters = `A-Za-z` + upperUA + lowerUA

	// nameToken is one capitalized (or fully upper-case) name part,
	// including apostrophes and hyphens as in "Мар'яна" or "Косач-Квітка".
	nameToken = `[` + upperUA + `][` + upperUA + lowerUA + `'’ʼ\-]+`

	// fullName captures exactly three name tokens on one line.
	fullName = `(` + nameToken + `[ \t]+` + nameToken + `[ \t]+` + nameToken + `)`

	monthNames = `січня|лютого|березня|квітня|травня|червня|липня|серпня|вересня|жовтня|листопада|грудня`
	month      = `((?i:` + monthNames + `))`

	numericDate = `(\d{2}\.\d{2}\.\d{4})`
	clockTime   = `(\d{2}:\d{2})`

	// wordStart matches the position before a standalone short word such as
	// the prepositions "з" and "по".
	wordStart = `(?:^|[^` + letters + `])`

	// digitGroups captures a thousand-grouped amount such as "2 479" or
	// "1 234 567" as separate groups.
	digitGroups = `(\d{1,3})[ ](\d{3})(?:[ ](\d{3}))?`

	// amountGroups is digitGroups with optional separators, so "2479" and
	// "2 479" both match.
	amountGroups = `(\d{1,3})[ ]?(\d{3})(?:[ ]?(\d{3}))?`

	plateLetter  = `[A-Z` + upperUA + `]`
	plateCompact = plateLetter + `{2}\d{4}` + plateLetter + `{2}|\d{4,5}` + plateLetter + `{2}`
	plateSpaced  = plateLetter + `{2}[ ]?\d{4}[ ]?` + plateLetter + `{2}|\d{4,5}[ ]?` + plateLetter + `{2}`
	plateEdge    = `[^0-9` + letters + `]`
)

// anyOf builds a case-insensitive alternation of labels where any run of
// spaces in a label also matches line breaks.
func anyOf(labels ...string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = strings.ReplaceAll(l, " ", `\s+`)
	}
	return `(?i:` + strings.Join(parts, "|") + `)`
}
