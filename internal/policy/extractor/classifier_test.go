package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polisdoc/polisdoc-backend/internal/policy/domain"
	"github.com/polisdoc/polisdoc-backend/internal/policy/extractor"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantVar    domain.Variant
		wantMarker string
	}{
		{"english phrase", "INTERNATIONAL\nGREEN CARD\nUkraine", domain.VariantGreenCard, "green_card_phrase"},
		{"english phrase mixed case", "Green Card certificate", domain.VariantGreenCard, "green_card_phrase"},
		{"ukrainian phrase", "ЗЕЛЕНА КАРТКА", domain.VariantGreenCard, "green_card_phrase_uk"},
		{"policy number shape", "Поліс UA/078/41856070 виданий", domain.VariantGreenCard, "ua_policy_number"},
		{"policy number with space", "UA/ 41856070", domain.VariantGreenCard, "ua_policy_number"},
		{"international phrase", "International Motor Insurance Card System", domain.VariantGreenCard, "international_insurance"},
		{"international phrase uk", "Міжнародний сертифікат страхування", domain.VariantGreenCard, "international_insurance"},
		{"domestic policy", "Поліс № 123456789\nСтраховий платіж 1 310 грн\nUAH", domain.VariantStandard, ""},
		{"short UA number", "UA/12", domain.VariantStandard, ""},
		{"empty", "", domain.VariantStandard, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Classify(tt.text)
			assert.Equal(t, tt.wantVar, got.Variant)
			assert.Equal(t, tt.wantMarker, got.Marker)
		})
	}
}
