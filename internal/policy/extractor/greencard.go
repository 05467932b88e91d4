package extractor

import (
	"github.com/polisdoc/polisdoc-backend/internal/policy/domain"
)

// holderEnd closes the policyholder name block
var holderEnd = anyOf("адреса", "місце проживання", "місцезнаходження", "рнокпп", "єдрпоу")

var (
	// Green card numbers are returned with their prefix, e.g. "UA/078/41856070"
	greenCardPolicyTable = table{
		rx(`\b(UA[ \t]?/[ \t]?\d{3}[ \t]?/[ \t]?\d+)`, direct),
		rx(`\b(UA/[ \t]?\d+)\b`, direct),
	}

	greenCardNameTable = table{
		// name on the label line, up to the address block or the line end
		rx(anyOf(`\(за наявності\) або`)+`[^\n]*?`+anyOf("найменування")+`[^\n:]*:[ \t]*([^\n]+?)[ \t,;]*(?:`+holderEnd+`|\n|$)`, squashed),
		// name printed on the line(s) between the label and the address block
		rx(anyOf(`\(за наявності\) або`)+`[^\n]{0,80}?`+anyOf("найменування")+`[^\n]*\n\s*([\s\S]{1,200}?)\s*`+holderEnd,
			func(g []string) (string, bool) {
				v := collapseSpaces(g[0])
				return v, hasLetter(v)
			}),
	}.then(insuredNameTable)

	// "1 234,00 16. ..." - the amount sits right before the next numbered item
	greenCardPriceTable = table{
		rx(`(?:^|[^\d,.])`+digitGroups+`[,.]00\s*\d{1,2}\.\s`, joined),
		rx(`(?:^|[^\d,.])(\d{1,3})[,.]00\s+\d{1,2}\.\s`, joined),
	}.then(priceTable)
)

var greenCardTables = map[Field]table{
	FieldPolicyNumber: greenCardPolicyTable,
	FieldIPN:          ipnTable,
	FieldPrice:        greenCardPriceTable,
	FieldInsuredName:  greenCardNameTable,
	FieldStartDate:    startDateTable,
	FieldEndDate:      endDateTable,
	FieldCarModel:     carModelTable,
	FieldCarNumber:    carNumberTable,
	FieldVIN:          vinTable,
}

// NewGreenCardFieldSet returns the rule set for international green card
// certificates.
func NewGreenCardFieldSet() FieldSet {
	return &ruleSet{variant: domain.VariantGreenCard, tables: greenCardTables}
}
