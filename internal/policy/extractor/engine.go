package extractor

import (
	"time"

	"github.com/polisdoc/polisdoc-backend/internal/policy/domain"
)

// Field identifies one extracted record field
type Field string

const (
	FieldPolicyNumber Field = "policy_number"
	FieldIPN          Field = "ipn"
	FieldPrice        Field = "price"
	FieldInsuredName  Field = "insured_name"
	FieldStartDate    Field = "start_date"
	FieldEndDate      Field = "end_date"
	FieldCarModel     Field = "car_model"
	FieldCarNumber    Field = "car_number"
	FieldVIN          Field = "vin_number"
)

// FieldSet defines the extraction rules of one document variant.
// Implementations are stateless and safe for concurrent use.
type FieldSet interface {
	// Variant returns the document variant these rules apply to
	Variant() domain.Variant

	// Lookup runs the ordered candidate table of field against text and
	// returns the raw value of the first accepted candidate, or nil.
	Lookup(field Field, text string) *string
}

type ruleSet struct {
	variant domain.Variant
	tables  map[Field]table
}

func (s *ruleSet) Variant() domain.Variant { return s.variant }

func (s *ruleSet) Lookup(field Field, text string) *string {
	t, ok := s.tables[field]
	if !ok {
		return nil
	}
	return t.first(text)
}

// Registry holds the field sets and dispatches on the classified variant
type Registry struct {
	sets []FieldSet
}

// NewRegistry creates a registry. The first set registered for a variant wins.
func NewRegistry(sets ...FieldSet) *Registry {
	return &Registry{sets: sets}
}

// DefaultRegistry returns the registry with the standard and green card rules
func DefaultRegistry() *Registry {
	return NewRegistry(NewStandardFieldSet(), NewGreenCardFieldSet())
}

// FindFieldSet returns the field set for variant, or nil when none is registered
func (r *Registry) FindFieldSet(variant domain.Variant) FieldSet {
	for _, s := range r.sets {
		if s.Variant() == variant {
			return s
		}
	}
	return nil
}

// DefaultMaxTextBytes caps the text handed to the pattern tables
const DefaultMaxTextBytes = 2 << 20

// Engine classifies policy text and runs the matching field set
type Engine struct {
	registry     *Registry
	clock        func() time.Time
	maxTextBytes int
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock used for the manufacture-year bound of car models
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithMaxTextBytes caps the input length. Zero or less disables the cap.
func WithMaxTextBytes(n int) Option {
	return func(e *Engine) { e.maxTextBytes = n }
}

// WithRegistry replaces the default field sets
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// NewEngine creates an extraction engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		registry:     DefaultRegistry(),
		clock:        time.Now,
		maxTextBytes: DefaultMaxTextBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the record for text. Fields without a match are nil.
func (e *Engine) Extract(text string) domain.Record {
	rec, _ := e.ExtractWithClassification(text)
	return rec
}

// ExtractWithClassification is Extract that also reports which marker, if
// any, selected the green card rules.
func (e *Engine) ExtractWithClassification(text string) (domain.Record, domain.Classification) {
	text = PrepareText(text, e.maxTextBytes)
	class := Classify(text)

	set := e.registry.FindFieldSet(class.Variant)
	if set == nil {
		set = e.registry.FindFieldSet(domain.VariantStandard)
	}

	rec := domain.Record{Variant: class.Variant}
	if set == nil {
		return rec, class
	}

	rec.PolicyNumber = set.Lookup(FieldPolicyNumber, text)
	rec.IPN = set.Lookup(FieldIPN, text)
	rec.Price = set.Lookup(FieldPrice, text)
	rec.InsuredName = set.Lookup(FieldInsuredName, text)
	rec.StartDate = set.Lookup(FieldStartDate, text)
	rec.EndDate = set.Lookup(FieldEndDate, text)

	// make/model, plate and VIN printed as one table row
	if v, ok := findVehicleRow(text); ok {
		rec.CarModel = &v.model
		rec.CarNumber = &v.plate
		rec.VINNumber = &v.vin
	}
	if rec.CarModel == nil {
		rec.CarModel = set.Lookup(FieldCarModel, text)
	}
	if rec.CarNumber == nil {
		if p := set.Lookup(FieldCarNumber, text); p != nil {
			rec.CarNumber = stringPtr(NormalizePlate(*p))
		}
	}
	if rec.VINNumber == nil {
		rec.VINNumber = set.Lookup(FieldVIN, text)
	}

	if rec.CarModel != nil {
		rec.CarModel = nonEmpty(CleanCarModel(*rec.CarModel, e.clock().Year()))
	}
	return rec, class
}

func stringPtr(s string) *string { return &s }

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
