// Package events announces completed extractions on the message bus.
package events

import (
	"context"

	"github.com/polisdoc/polisdoc-backend/internal/policy/domain"
	"github.com/polisdoc/polisdoc-backend/pkg/messaging"
)

// Publisher turns extractions into policy.extracted events
type Publisher struct {
	bus messaging.EventPublisher
}

// NewPublisher creates a publisher on top of bus
func NewPublisher(bus messaging.EventPublisher) *Publisher {
	return &Publisher{bus: bus}
}

// PolicyExtracted publishes the value-free summary of ext
func (p *Publisher) PolicyExtracted(ctx context.Context, ext *domain.Extraction) error {
	if ext.RequestID != "" {
		ctx = messaging.WithCorrelationID(ctx, ext.RequestID)
	}
	return p.bus.Publish(ctx, messaging.EventPolicyExtracted, Payload(ext))
}

// Payload builds the event body for ext
func Payload(ext *domain.Extraction) messaging.PolicyExtractedEvent {
	return messaging.PolicyExtractedEvent{
		RequestID:            ext.RequestID,
		Variant:              string(ext.Classification.Variant),
		Marker:               ext.Classification.Marker,
		Source:               string(ext.Source),
		FieldsExtracted:      ext.Record.ExtractedFields(),
		ProcessingDurationMs: ext.ProcessingTimeMs,
	}
}
