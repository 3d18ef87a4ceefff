package kafka

import (
	"context"

	"pitchside/pkg/logger"
)

// Events is the best-effort event emitter services depend on. Reservation
// state is already durable in storage when an event is emitted, so a publish
// failure is logged and swallowed rather than failing the request.
type Events struct {
	producer *Producer
	log      *logger.Logger
}

func NewEvents(producer *Producer, log *logger.Logger) *Events {
	return &Events{producer: producer, log: log}
}

func (e *Events) Emit(ctx context.Context, eventType, facilityID string, payload any) {
	if e.producer == nil {
		return
	}

	msg, err := NewEventMessage(eventType, facilityID, payload)
	if err != nil {
		e.log.Error("Failed to build event", "event_type", eventType, "facility_id", facilityID, "error", err)
		return
	}

	if err := e.producer.Publish(ctx, msg); err != nil {
		e.log.Warn("Failed to publish event",
			"event_type", eventType,
			"facility_id", facilityID,
			"error", err,
		)
		return
	}

	e.log.Debug("Event published", "event_type", eventType, "facility_id", facilityID)
}
