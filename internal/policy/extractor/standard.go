package extractor

import (
	"regexp"
	"strings"

	"github.com/polisdoc/polisdoc-backend/internal/policy/domain"
)

// Price labels used across template revisions
var priceLabel = anyOf("страхова премія", "страховий платіж", "розмір страхового платежу")

var (
	policyNumberTable = table{
		rx(anyOf("поліс")+`\s*№\s*(\d{9})\b`, direct),
		// "Акцепт) № 123456-1234-123456789": keep the trailing 9-digit group
		rx(anyOf("акцепт")+`\)\s*№\s*\d{6}-\d{4}-(\d{9})\b`, direct),
		rx(`№\s*(\d{9})\b`, direct),
		rx(`\b(\d{9})\b`, direct),
	}

	ipnTable = table{
		rx(`(?:РНОКПП|ЄДРПОУ|ІНПП)[^\d]{0,40}(\d{10})\b`, direct),
		rx(`\b(\d{10})\b`, direct),
	}

	priceTable = table{
		rx(priceLabel+`[^\d\n]{0,60}`+amountGroups+`[,.]00`, joined),
		rx(priceLabel+`[^\d\n]{0,60}(\d{1,3})[,.]00`, joined),
		rx(anyOf("страховий платіж")+`[^\d\n]{0,60}`+digitGroups+`(?:[,.]\d{2})?[ \t]*грн`, joined),
		rx(anyOf("страховий платіж")+`[^\d\n]{0,60}(\d+)(?:[,.]\d{2})?[ \t]*грн`, joined),
		// numbered item of the newer template: "15 Розмір страхової премії ... 2 479.00"
		rx(`15\.?[ \t]*`+anyOf("розмір страхової премії")+`[^\d]{0,200}`+amountGroups+`\.00`, joined),
		rx(`15\.?[ \t]*`+anyOf("розмір страхової премії")+`[^\d]{0,200}(\d{1,3})\.00`, joined),
	}

	insuredNameTable = table{
		rx(anyOf("страхувальник")+`[\s\S]{0,300}?`+anyOf("найменування")+`[^\n]{0,60}?[:\s]\s*`+fullName, direct),
		rx(`\d+\.?[ \t]*СТРАХУВАЛЬНИК[^\n]*\n\s*`+fullName, direct),
		sectionCandidate{
			section: regexp.MustCompile(`3\.[ \t]*` + anyOf("страхувальник") + `([\s\S]*?)(?:\n[ \t]*4\.|$)`),
			inner: rx(fullName+`[\s,;:]*(?:`+anyOf("рнокпп", "єдрпоу", "інпп", "дата народження")+`|\d{10}\b|\d{2}\.\d{2}\.\d{4})`, direct),
		},
		rx(anyOf("страхувальник")+`[ \t]*[:\-–—]?\s*`+fullName, direct),
	}

	startDateTable = table{
		// "з 00:00 год. 14 листопада 2024 р."
		rx(wordStart+`(?i:з)[ \t]+`+clockTime+`[ \t]*(?i:год\.?)?[ \t]*(\d{1,2})[ \t]+`+month+`[ \t]+(\d{4})`,
			func(g []string) (string, bool) {
				date, ok := formatDate(g[1], g[2], g[3])
				return withTime(date, g[0]), ok
			}),
		// "з 00:00 год. 14.11.2024"
		rx(wordStart+`(?i:з)[ \t]+`+clockTime+`[ \t]*(?i:год\.?)?[ \t]*`+numericDate,
			func(g []string) (string, bool) { return withTime(g[1], g[0]), true }),
		rx(anyOf("початок дії", "дата початку дії")+`[^\d\n]{0,60}`+numericDate+`(?:[^\d\n]{0,15}`+clockTime+`)?`,
			func(g []string) (string, bool) { return withTime(g[0], g[1]), true }),
		// "з 14.11.2024 р. 00:00"
		rx(wordStart+`(?i:з)[ \t]+`+numericDate+`(?:[ \t]*(?:р\.)?[ \t]*(?:(?i:з)[ \t]+)?`+clockTime+`)?`,
			func(g []string) (string, bool) { return withTime(g[0], g[1]), true }),
		rx(wordStart+`(?i:з)[ \t]+(\d{1,2})[ \t]+`+month+`[ \t]+(\d{4})`,
			func(g []string) (string, bool) { return formatDate(g[0], g[1], g[2]) }),
		rx(`\b`+numericDate+`\b`, direct),
	}

	endDateTable = table{
		// "по 23:59 год. (включно) 13 листопада 2025 р."
		rx(anyOf("по")+`[ \t]+23:59[ \t]*(?i:год\.?)?[ \t]*(?i:\(включно\))?[ \t]*(\d{1,2})[ \t]+`+month+`[ \t]+(\d{4})`,
			func(g []string) (string, bool) { return formatDate(g[0], g[1], g[2]) }),
		rx(anyOf("по")+`[ \t]+23:59[ \t]*(?i:год\.?)?[ \t]*(?i:\(включно\))?[ \t]*`+numericDate, direct),
		rx(anyOf("закінчення дії", "дата закінчення")+`[^\d\n]{0,60}`+numericDate, direct),
		rx(wordStart+`(?i:по)[ \t]+`+numericDate, direct),
		rx(wordStart+`(?i:по)[ \t]+(\d{1,2})[ \t]+`+month+`[ \t]+(\d{4})`,
			func(g []string) (string, bool) { return formatDate(g[0], g[1], g[2]) }),
		rx(`\b`+numericDate+`\b`, direct),
	}

	carModelTable = table{
		rx(`(?:Марка|МАРКА)[ \t]*:?[ \t]*([^,:\n][^\n]{0,39}?)[ \t]*\n?[ \t]*(?:Модель|МОДЕЛЬ)[ \t]*:?[ \t]*([^\n]{1,60}?)[ \t]*(?:\n|$)`,
			func(g []string) (string, bool) {
				brand, model := strings.TrimSpace(g[0]), strings.TrimSpace(g[1])
				return brand + " " + model, brand != "" && model != ""
			}),
		rx(anyOf("марка, модель", "марка модель", "марка,модель")+`(?:[ \t]*\([^)\n]*\))?[ \t]*:?[ \t]*([^\n]+)`, direct),
	}

	carNumberTable = table{
		rx(anyOf("реєстраційний номер")+`[^\n]{0,40}?`+plateEdge+`(`+plateSpaced+`)(?:$|`+plateEdge+`)`, plate),
		rx(anyOf("номерний знак")+`[^\n]{0,40}?`+plateEdge+`(`+plateSpaced+`)(?:$|`+plateEdge+`)`, plate),
		tokenCandidate{
			tokens: regexp.MustCompile(`[0-9` + letters + `]+`),
			accept: func(tok string) (string, bool) {
				return tok, rePlateToken.MatchString(tok)
			},
		},
	}

	vinTable = table{
		rx(anyOf("vin", "номер кузова")+`(?:[^A-Z0-9\n]|VIN){0,40}([A-Z0-9][A-Z0-9 \t\n]{5,40})`,
			func(g []string) (string, bool) {
				v := NormalizeVIN(g[0])
				return v, v != ""
			}),
		// standalone 17-character run starting with a letter
		tokenCandidate{
			tokens: regexp.MustCompile(`[A-Za-z0-9]+`),
			accept: func(tok string) (string, bool) {
				return tok, reVINToken.MatchString(tok) && tok[0] >= 'A' && tok[0] <= 'Z' && hasDigit(tok)
			},
		},
		// any 17-character run mixing letters and digits
		tokenCandidate{
			tokens: regexp.MustCompile(`[A-Za-z0-9]+`),
			accept: func(tok string) (string, bool) {
				return tok, reVINToken.MatchString(tok) && hasDigit(tok) && hasLetter(tok)
			},
		},
	}
)

var (
	rePlateToken = regexp.MustCompile(`^(?:` + plateCompact + `)$`)
	reVINToken   = regexp.MustCompile(`^[A-Z0-9]{17}$`)
)

func plate(groups []string) (string, bool) {
	v := NormalizePlate(groups[0])
	return v, v != ""
}

// vehicleRow matches a table row carrying make/model, plate and VIN on one
// line, e.g. "TOYOTA COROLLA 2015 АА1234ВВ JTDBR32E720123456". A leading
// "Марка, модель:" label is skipped.
var vehicleRow = regexp.MustCompile(`(?m)^[ \t]*(?:(?i:марка)[^:\n]{0,40}:[ \t]*)?([A-Z` + upperUA + `0-9][^\n]*?)[ \t]+(` + plateCompact + `)[ \t]+([A-Z0-9]{6,17})(?:[ \t]|$)`)

type vehicle struct {
	model, plate, vin string
}

func findVehicleRow(text string) (vehicle, bool) {
	for _, m := range vehicleRow.FindAllStringSubmatch(text, -1) {
		v := vehicle{
			model: strings.TrimSpace(m[1]),
			plate: NormalizePlate(m[2]),
			vin:   m[3],
		}
		if hasLetter(v.model) && !strings.Contains(v.model, ":") && (hasLetter(v.vin) || len(v.vin) >= 8) {
			return v, true
		}
	}
	return vehicle{}, false
}

// standardTables is the rule set for domestic motor policies
var standardTables = map[Field]table{
	FieldPolicyNumber: policyNumberTable,
	FieldIPN:          ipnTable,
	FieldPrice:        priceTable,
	FieldInsuredName:  insuredNameTable,
	FieldStartDate:    startDateTable,
	FieldEndDate:      endDateTable,
	FieldCarModel:     carModelTable,
	FieldCarNumber:    carNumberTable,
	FieldVIN:          vinTable,
}

// NewStandardFieldSet returns the rule set for standard domestic policies
func NewStandardFieldSet() FieldSet {
	return &ruleSet{variant: domain.VariantStandard, tables: standardTables}
}
