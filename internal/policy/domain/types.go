package domain

import "time"

// Variant is the document template family a policy text belongs to
type Variant string

const (
	VariantStandard  Variant = "standard"
	VariantGreenCard Variant = "green_card"
)

// Source identifies how the text reached the extractor
type Source string

const (
	SourcePDF  Source = "pdf"
	SourceText Source = "text"
)

// Classification is the outcome of variant detection. Marker names the
// green-card indicator that fired; it is empty for standard documents.
type Classification struct {
	Variant Variant `json:"variant"`
	Marker  string  `json:"marker,omitempty"`
}

// Record holds the fields extracted from one policy document.
// A nil field means no candidate pattern matched.
type Record struct {
	Price        *string `json:"price"`
	IPN          *string `json:"ipn"`
	PolicyNumber *string `json:"policy_number"`
	InsuredName  *string `json:"insured_name"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	CarModel     *string `json:"car_model"`
	CarNumber    *string `json:"car_number"`
	VINNumber    *string `json:"vin_number"`
	Variant      Variant `json:"variant"`
}

// Summary renders the legacy "price|ipn|policy_number" line
func (r Record) Summary() string {
	return deref(r.Price) + "|" + deref(r.IPN) + "|" + deref(r.PolicyNumber)
}

// ExtractedFields returns the JSON names of all non-nil fields in output order
func (r Record) ExtractedFields() []string {
	pairs := []struct {
		name  string
		value *string
	}{
		{"price", r.Price},
		{"ipn", r.IPN},
		{"policy_number", r.PolicyNumber},
		{"insured_name", r.InsuredName},
		{"start_date", r.StartDate},
		{"end_date", r.EndDate},
		{"car_model", r.CarModel},
		{"car_number", r.CarNumber},
		{"vin_number", r.VINNumber},
	}

	fields := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.value != nil {
			fields = append(fields, p.name)
		}
	}
	return fields
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Extraction is the result of one extraction request
type Extraction struct {
	RequestID        string         `json:"request_id,omitempty"`
	Source           Source         `json:"source"`
	Classification   Classification `json:"classification"`
	Record           Record         `json:"record"`
	TextLength       int            `json:"text_length"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
}

// AuditEntry records that an extraction happened. It carries field names
// only, never the extracted values.
type AuditEntry struct {
	ID                   string    `json:"id"`
	RequestID            string    `json:"request_id"`
	Source               Source    `json:"source"`
	Variant              Variant   `json:"variant"`
	Marker               string    `json:"marker,omitempty"`
	FieldsExtracted      []string  `json:"fields_extracted"`
	TextLength           int       `json:"text_length"`
	ProcessingDurationMs int64     `json:"processing_duration_ms"`
	CreatedAt            time.Time `json:"created_at"`
}
