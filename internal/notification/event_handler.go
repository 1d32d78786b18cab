package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/canermastan/hotel-operations/internal/core/events"
)

// EventHandler turns domain events into guest-facing notifications. Delivery
// is fire-and-forget from the publisher's point of view; failures are logged
// and never propagate back into the originating workflow.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{
		logger: logger,
	}
}

func (h *EventHandler) HandleCheckinCompleted(ctx context.Context, event events.Event) error {
	checkinEvent, ok := event.(*events.CheckinCompletedEvent)
	if !ok {
		h.logger.Error("invalid event type for checkin completed handler", "event_type", event.EventType())
		return fmt.Errorf("expected CheckinCompletedEvent, got %T", event)
	}

	h.logger.Info("sending check-in confirmation to guest",
		"checkin_id", checkinEvent.CheckinID,
		"reservation_id", checkinEvent.ReservationID,
		"guest_email", checkinEvent.GuestEmail,
		"event_id", checkinEvent.EventID())

	return nil
}

func (h *EventHandler) HandleCheckinFailed(ctx context.Context, event events.Event) error {
	checkinEvent, ok := event.(*events.CheckinFailedEvent)
	if !ok {
		h.logger.Error("invalid event type for checkin failed handler", "event_type", event.EventType())
		return fmt.Errorf("expected CheckinFailedEvent, got %T", event)
	}

	h.logger.Warn("notifying front desk about failed check-in",
		"checkin_id", checkinEvent.CheckinID,
		"reservation_id", checkinEvent.ReservationID,
		"reason", checkinEvent.Reason,
		"event_id", checkinEvent.EventID())

	return nil
}

func (h *EventHandler) HandlePaymentCompleted(ctx context.Context, event events.Event) error {
	paymentEvent, ok := event.(*events.PaymentCompletedEvent)
	if !ok {
		h.logger.Error("invalid event type for payment completed handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentCompletedEvent, got %T", event)
	}

	h.logger.Info("sending payment receipt for reservation",
		"payment_id", paymentEvent.PaymentID,
		"reservation_id", paymentEvent.ReservationID,
		"amount_cents", paymentEvent.AmountCents,
		"currency", paymentEvent.Currency,
		"transaction_id", paymentEvent.TransactionID,
		"event_id", paymentEvent.EventID())

	return nil
}

func (h *EventHandler) HandlePaymentRefunded(ctx context.Context, event events.Event) error {
	refundEvent, ok := event.(*events.PaymentRefundedEvent)
	if !ok {
		h.logger.Error("invalid event type for payment refunded handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentRefundedEvent, got %T", event)
	}

	h.logger.Info("sending refund confirmation for reservation",
		"refund_id", refundEvent.RefundID,
		"original_payment_id", refundEvent.OriginalPaymentID,
		"reservation_id", refundEvent.ReservationID,
		"amount_cents", refundEvent.AmountCents,
		"partial", refundEvent.Partial,
		"transaction_id", refundEvent.TransactionID,
		"event_id", refundEvent.EventID())

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeCheckinCompleted, h.HandleCheckinCompleted)
	eventBus.Subscribe(events.EventTypeCheckinFailed, h.HandleCheckinFailed)
	eventBus.Subscribe(events.EventTypePaymentCompleted, h.HandlePaymentCompleted)
	eventBus.Subscribe(events.EventTypePaymentRefunded, h.HandlePaymentRefunded)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{
			events.EventTypeCheckinCompleted,
			events.EventTypeCheckinFailed,
			events.EventTypePaymentCompleted,
			events.EventTypePaymentRefunded,
		})
}
