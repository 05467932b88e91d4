package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// months maps Ukrainian genitive month names to their two-digit number.
// Read-only after init.
var months = map[string]string{
	"січня":     "01",
	"лютого":    "02",
	"березня":   "03",
	"квітня":    "04",
	"травня":    "05",
	"червня":    "06",
	"липня":     "07",
	"серпня":    "08",
	"вересня":   "09",
	"жовтня":    "10",
	"листопада": "11",
	"грудня":    "12",
}

// MonthNumber returns the two-digit month for a genitive month name
func MonthNumber(name string) (string, bool) {
	n, ok := months[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}

var reTextualDate = regexp.MustCompile(`^(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)

// NormalizeTextualDate converts "4 липня 2024" to "04.07.2024"
func NormalizeTextualDate(s string) (string, bool) {
	m := reTextualDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return formatDate(m[1], m[2], m[3])
}

// formatDate assembles DD.MM.YYYY from a day, a month name and a year
func formatDate(day, monthName, year string) (string, bool) {
	month, ok := MonthNumber(monthName)
	if !ok {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	return fmt.Sprintf("%02d.%s.%s", d, month, year), true
}

// withTime appends ", HH:MM" when a time of day is known
func withTime(date, clock string) string {
	if clock == "" {
		return date
	}
	return date + ", " + clock
}

// JoinDigitGroups concatenates thousand-grouped digit captures:
// ("2", "479") becomes "2479". Empty groups and separators are dropped.
func JoinDigitGroups(groups ...string) string {
	var b strings.Builder
	for _, g := range groups {
		for _, r := range g {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

var (
	reModelNumberAndYear = regexp.MustCompile(`(?i)\s+\d+\s+Рік\s+випуску\s+\d{4}\b`)
	reModelYearPhrase    = regexp.MustCompile(`(?i)\s+Рік\s+випуску\s+\d{4}\b`)
	reModelTrailingYear  = regexp.MustCompile(`\s+(\d{4})$`)
)

const minManufactureYear = 1950

// CleanCarModel strips manufacture-year noise from a make/model string.
// A bare trailing four-digit number is removed only when it falls within
// [1950, currentYear]; anything else is treated as part of the model name.
func CleanCarModel(model string, currentYear int) string {
	model = replaceFirst(reModelNumberAndYear, model, "")
	model = replaceFirst(reModelYearPhrase, model, "")

	if loc := reModelTrailingYear.FindStringSubmatchIndex(model); loc != nil {
		year, _ := strconv.Atoi(model[loc[2]:loc[3]])
		if year >= minManufactureYear && year <= currentYear {
			model = model[:loc[0]]
		}
	}
	return strings.TrimSpace(model)
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

// NormalizePlate removes inner spacing and upper-cases a plate number
func NormalizePlate(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

var reVINRun = regexp.MustCompile(`^[A-Z0-9]{6,17}`)

// NormalizeVIN strips embedded whitespace and keeps the leading
// 6-17 character alphanumeric run. It returns "" when no such run exists.
func NormalizeVIN(s string) string {
	compact := strings.Join(strings.Fields(s), "")
	return reVINRun.FindString(compact)
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

var reLineBreaks = regexp.MustCompile(`\r\n?`)

// PrepareText makes raw converter output uniform for the pattern tables:
// line endings become \n, non-breaking spaces become plain spaces and the
// text is capped at maxBytes (on a rune boundary) when maxBytes > 0.
func PrepareText(text string, maxBytes int) string {
	if maxBytes > 0 && len(text) > maxBytes {
		cut := maxBytes
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	text = reLineBreaks.ReplaceAllString(text, "\n")
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u00a0', '\u202f', '\u2007':
			return ' '
		}
		return r
	}, text)
}
