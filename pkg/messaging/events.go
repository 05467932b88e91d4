package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventPolicyExtracted = "policy.extracted"
)

// Event is the envelope every message is wrapped in
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// PolicyExtractedEvent is published after every extraction. It carries
// counts and classification only, never field values.
type PolicyExtractedEvent struct {
	RequestID            string   `json:"request_id"`
	Variant              string   `json:"variant"`
	Marker               string   `json:"marker,omitempty"`
	Source               string   `json:"source"`
	FieldsExtracted      []string `json:"fields_extracted"`
	ProcessingDurationMs int64    `json:"processing_duration_ms"`
}
