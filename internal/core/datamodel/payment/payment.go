package payment

import "time"

// Payment row statuses. PROCESSING and REFUND_PENDING are the non-terminal
// statuses: a COMPLETED charge is claimed into REFUND_PENDING for the duration
// of a refund settlement and then lands on REFUNDED or PARTIALLY_REFUNDED, or
// back on COMPLETED when the refund does not go through. The refund itself is
// recorded in a separate row.
const (
	StatusProcessing        = "PROCESSING"
	StatusCompleted         = "COMPLETED"
	StatusRefundPending     = "REFUND_PENDING"
	StatusFailed            = "FAILED"
	StatusRefunded          = "REFUNDED"
	StatusPartiallyRefunded = "PARTIALLY_REFUNDED"
)

// Payment is one monetary movement. AmountCents is positive for a charge and
// negative for a refund; the sign is the discriminator. A row is never
// rewritten to represent a different movement.
type Payment struct {
	ID            int64      `gorm:"primaryKey"`
	ReservationID int64      `gorm:"column:reservation_id;not null;index"`
	AmountCents   int64      `gorm:"column:amount_cents;not null"`
	Currency      string     `gorm:"column:currency;not null"`
	Method        string     `gorm:"column:payment_method;not null"`
	Processor     string     `gorm:"column:payment_processor"`
	Status        string     `gorm:"column:status;default:PROCESSING"`
	TransactionID *string    `gorm:"column:transaction_id;uniqueIndex"`
	FailureReason *string    `gorm:"column:failure_reason"`
	ProcessedAt   *time.Time `gorm:"column:processed_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) IsRefund() bool {
	return p.AmountCents < 0
}
