// Package service runs one extraction request end to end: decode the
// upload, convert it to text, extract the fields, then record and
// announce the result.
package service

import (
	"context"
	"time"

	"github.com/polisdoc/polisdoc-backend/internal/policy/domain"
	"github.com/polisdoc/polisdoc-backend/internal/policy/extractor"
	"github.com/polisdoc/polisdoc-backend/internal/policy/pdftext"
	"github.com/polisdoc/polisdoc-backend/pkg/errors"
	"github.com/polisdoc/polisdoc-backend/pkg/logger"
)

// AuditStore persists value-free extraction metadata
type AuditStore interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// EventSink announces completed extractions
type EventSink interface {
	PolicyExtracted(ctx context.Context, ext *domain.Extraction) error
}

// Service orchestrates decode → convert → extract → audit → publish
type Service struct {
	engine    *extractor.Engine
	converter pdftext.Converter
	audit     AuditStore
	events    EventSink
	log       *logger.Logger
	now       func() time.Time
}

// Option configures optional collaborators
type Option func(*Service)

// WithAudit enables the audit log
func WithAudit(store AuditStore) Option {
	return func(s *Service) { s.audit = store }
}

// WithEvents enables policy.extracted events
func WithEvents(sink EventSink) Option {
	return func(s *Service) { s.events = sink }
}

// NewService creates a new extraction service
func NewService(engine *extractor.Engine, converter pdftext.Converter, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		engine:    engine,
		converter: converter,
		log:       log.WithComponent("policy-service"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractPDF decodes a base64 PDF, converts it to text and extracts the
// policy fields. The decoded bytes are zeroed before returning.
func (s *Service) ExtractPDF(ctx context.Context, requestID, encoded string) (*domain.Extraction, error) {
	start := s.now()

	data, err := pdftext.DecodeBase64(encoded)
	if err != nil {
		return nil, errors.InvalidBase64().WithCause(err)
	}

	text, err := s.converter.Text(ctx, data)
	pdftext.ZeroBytes(data)
	if err != nil {
		s.log.WithRequestID(requestID).Warn().Err(err).
			Str("backend", s.converter.Name()).
			Msg("pdf conversion failed")
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errors.Unprocessable("the document could not be read as a PDF").WithCause(err)
	}

	return s.extract(ctx, requestID, domain.SourcePDF, text, start), nil
}

// ExtractText extracts the policy fields from already converted text
func (s *Service) ExtractText(ctx context.Context, requestID, text string) *domain.Extraction {
	return s.extract(ctx, requestID, domain.SourceText, text, s.now())
}

func (s *Service) extract(ctx context.Context, requestID string, source domain.Source, text string, start time.Time) *domain.Extraction {
	record, class := s.engine.ExtractWithClassification(text)

	ext := &domain.Extraction{
		RequestID:        requestID,
		Source:           source,
		Classification:   class,
		Record:           record,
		TextLength:       len(text),
		ProcessingTimeMs: s.now().Sub(start).Milliseconds(),
	}

	fields := record.ExtractedFields()
	s.log.WithRequestID(requestID).Info().
		Str("source", string(source)).
		Str("variant", string(class.Variant)).
		Str("marker", class.Marker).
		Int("fields_extracted", len(fields)).
		Int("text_length", ext.TextLength).
		Int64("duration_ms", ext.ProcessingTimeMs).
		Msg("policy extraction completed")

	s.record(ctx, ext, fields)
	return ext
}

// record writes the audit row and publishes the event. Failures are
// logged only; the caller still gets its extraction.
func (s *Service) record(ctx context.Context, ext *domain.Extraction, fields []string) {
	if s.audit != nil {
		entry := &domain.AuditEntry{
			RequestID:            ext.RequestID,
			Source:               ext.Source,
			Variant:              ext.Classification.Variant,
			Marker:               ext.Classification.Marker,
			FieldsExtracted:      fields,
			TextLength:           ext.TextLength,
			ProcessingDurationMs: ext.ProcessingTimeMs,
		}
		if err := s.audit.Insert(ctx, entry); err != nil {
			s.log.Error().Err(err).Str("request_id", ext.RequestID).Msg("failed to write extraction audit log")
		}
	}

	if s.events != nil {
		if err := s.events.PolicyExtracted(ctx, ext); err != nil {
			s.log.Error().Err(err).Str("request_id", ext.RequestID).Msg("failed to publish policy.extracted")
		}
	}
}

// ListAudit returns the most recent audit entries
func (s *Service) ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if s.audit == nil {
		return nil, errors.ServiceUnavailable("audit log is disabled")
	}
	entries, err := s.audit.ListRecent(ctx, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list audit entries")
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, errors.Internal("failed to list audit entries").WithCause(err)
	}
	return entries, nil
}
