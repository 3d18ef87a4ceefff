package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is one event on the reservations topic.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
)

// Event types emitted by this service. Notification and payment collaborators
// consume them; nothing here does.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventHoldPlaced       = "hold.placed"
	EventHoldReleased     = "hold.released"
	EventHoldConverted    = "hold.converted"
)

// NewEventMessage builds a message keyed by facility id, so all events for a
// facility land on one partition in order.
func NewEventMessage(eventType, facilityID string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	return Message{
		Key:   facilityID,
		Value: value,
		Headers: map[string]string{
			HeaderEventID:       uuid.NewString(),
			HeaderEventType:     eventType,
			HeaderSchemaVersion: "1",
			HeaderSource:        "pitchside-availability",
		},
		Timestamp: time.Now().UTC(),
	}, nil
}
