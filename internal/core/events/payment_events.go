package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentCompleted = "payment.completed"
	EventTypePaymentFailed    = "payment.failed"
	EventTypePaymentRefunded  = "payment.refunded"
)

type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID     int64  `json:"payment_id"`
	ReservationID int64  `json:"reservation_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	TransactionID string `json:"transaction_id"`
}

func NewPaymentCompletedEvent(paymentID, reservationID, amountCents int64, currency, transactionID string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":     paymentID,
				"reservation_id": reservationID,
				"amount_cents":   amountCents,
				"currency":       currency,
				"transaction_id": transactionID,
			},
		},
		PaymentID:     paymentID,
		ReservationID: reservationID,
		AmountCents:   amountCents,
		Currency:      currency,
		TransactionID: transactionID,
	}
}

type PaymentFailedEvent struct {
	BaseEvent
	PaymentID     int64  `json:"payment_id"`
	ReservationID int64  `json:"reservation_id"`
	AmountCents   int64  `json:"amount_cents"`
	FailureReason string `json:"failure_reason"`
}

func NewPaymentFailedEvent(paymentID, reservationID, amountCents int64, failureReason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":     paymentID,
				"reservation_id": reservationID,
				"amount_cents":   amountCents,
				"failure_reason": failureReason,
			},
		},
		PaymentID:     paymentID,
		ReservationID: reservationID,
		AmountCents:   amountCents,
		FailureReason: failureReason,
	}
}

type PaymentRefundedEvent struct {
	BaseEvent
	RefundID          int64  `json:"refund_id"`
	OriginalPaymentID int64  `json:"original_payment_id"`
	ReservationID     int64  `json:"reservation_id"`
	AmountCents       int64  `json:"amount_cents"`
	Partial           bool   `json:"partial"`
	TransactionID     string `json:"transaction_id"`
}

func NewPaymentRefundedEvent(refundID, originalPaymentID, reservationID, amountCents int64, partial bool, transactionID string) *PaymentRefundedEvent {
	return &PaymentRefundedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentRefunded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"refund_id":           refundID,
				"original_payment_id": originalPaymentID,
				"reservation_id":      reservationID,
				"amount_cents":        amountCents,
				"partial":             partial,
				"transaction_id":      transactionID,
			},
		},
		RefundID:          refundID,
		OriginalPaymentID: originalPaymentID,
		ReservationID:     reservationID,
		AmountCents:       amountCents,
		Partial:           partial,
		TransactionID:     transactionID,
	}
}
