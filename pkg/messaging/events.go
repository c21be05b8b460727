package messaging

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Event types published by the warehouse domain.
const (
	EventMovementRecorded = "warehouse.movement.recorded"
	EventAlertGenerated   = "warehouse.alert.generated"
)

// ExchangeWarehouseEvents is the single topic exchange this service publishes to.
const ExchangeWarehouseEvents = "warehouse.events"

// Event is the base event envelope.
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
		ID:            GenerateEventID(),
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

// GenerateEventID returns a random hex identifier for an event.
func GenerateEventID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// MovementRecordedEvent is published after every Ledger.RecordMovement call.
type MovementRecordedEvent struct {
	MovementID      string `json:"movement_id"`
	BatchID         string `json:"batch_id"`
	Type            string `json:"type"`
	Quantity        string `json:"quantity"`
	QuantityBefore  string `json:"quantity_before"`
	QuantityAfter   string `json:"quantity_after"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	PerformedBy     string `json:"performed_by"`
}

// AlertGeneratedEvent is published after every Alert insert.
type AlertGeneratedEvent struct {
	AlertID  string `json:"alert_id"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	ItemID   string `json:"item_id,omitempty"`
	BatchID  string `json:"batch_id,omitempty"`
}
