package events

import (
	"context"
	"log/slog"
)

// RegisterAuditSubscriber wires an audit-log handler for reimbursement
// lifecycle events.
func RegisterAuditSubscriber(bus *EventBus, logger *slog.Logger) {
	handler := func(ctx context.Context, event Event) error {
		logger.Info("audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	bus.Subscribe(EventTypeReimbursementSubmitted, handler)
	bus.Subscribe(EventTypeReimbursementStatusChanged, handler)
}
