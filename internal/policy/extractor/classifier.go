package extractor

import (
	"regexp"

	"github.com/polisdoc/polisdoc-backend/internal/policy/domain"
)

type marker struct {
	name    string
	pattern *regexp.Regexp
}

// greenCardMarkers are checked in order. Any hit classifies the document as
// a green card; the name of the first hit is reported.
var greenCardMarkers = []marker{
	{"green_card_phrase", regexp.MustCompile(`(?i)green[ \t]*card`)},
	{"green_card_phrase_uk", regexp.MustCompile(`(?i)зелена[ \t]+картка`)},
	{"ua_policy_number", regexp.MustCompile(`UA[ \t]?/[ \t]?\d{3}[ \t]?/[ \t]?\d+|UA/[ \t]?\d{5,}`)},
	{"international_insurance", regexp.MustCompile(`(?i)international\s+motor\s+insurance|міжнародн\S*\s+сертифікат\S*\s+страхування`)},
}

// Classify decides the document variant from marker phrases in text
func Classify(text string) domain.Classification {
	for _, m := range greenCardMarkers {
		if m.pattern.MatchString(text) {
			return domain.Classification{Variant: domain.VariantGreenCard, Marker: m.name}
		}
	}
	return domain.Classification{Variant: domain.VariantStandard}
}
