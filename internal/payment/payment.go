package payment

import (
	"strings"
	"time"

	paymentDatamodel "github.com/canermastan/hotel-operations/internal/core/datamodel/payment"
)

const (
	StatusProcessing        = paymentDatamodel.StatusProcessing
	StatusCompleted         = paymentDatamodel.StatusCompleted
	StatusRefundPending     = paymentDatamodel.StatusRefundPending
	StatusFailed            = paymentDatamodel.StatusFailed
	StatusRefunded          = paymentDatamodel.StatusRefunded
	StatusPartiallyRefunded = paymentDatamodel.StatusPartiallyRefunded
)

const (
	MethodCreditCard   = "CREDIT_CARD"
	MethodDebitCard    = "DEBIT_CARD"
	MethodPayPal       = "PAYPAL"
	MethodBankTransfer = "BANK_TRANSFER"
	MethodCrypto       = "CRYPTO"
)

// Methods accepted at the boundary.
var SupportedMethods = []string{
	MethodCreditCard,
	MethodDebitCard,
	MethodPayPal,
	MethodBankTransfer,
	MethodCrypto,
}

// DeriveProcessor maps a payment method to its processor.
func DeriveProcessor(method string) string {
	switch strings.ToUpper(method) {
	case MethodCreditCard, MethodDebitCard:
		return "STRIPE"
	case MethodPayPal:
		return "PAYPAL"
	case MethodBankTransfer:
		return "BANK_GATEWAY"
	case MethodCrypto:
		return "CRYPTO_GATEWAY"
	default:
		return "DEFAULT_PROCESSOR"
	}
}

// Payment mirrors one row of monetary movement against a reservation.
// AmountCents stays signed internally; refund responses expose the absolute
// value.
type Payment struct {
	ID            int64      `json:"id"`
	ReservationID int64      `json:"reservation_id"`
	AmountCents   int64      `json:"amount_cents"`
	Currency      string     `json:"currency"`
	Method        string     `json:"payment_method"`
	Processor     string     `json:"payment_processor,omitempty"`
	Status        string     `json:"status"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (p *Payment) IsRefund() bool {
	return p.AmountCents < 0
}

func ToDataModel(p *Payment) *paymentDatamodel.Payment {
	return &paymentDatamodel.Payment{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		AmountCents:   p.AmountCents,
		Currency:      p.Currency,
		Method:        p.Method,
		Processor:     p.Processor,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		FailureReason: p.FailureReason,
		ProcessedAt:   p.ProcessedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func FromDataModel(dm *paymentDatamodel.Payment) *Payment {
	return &Payment{
		ID:            dm.ID,
		ReservationID: dm.ReservationID,
		AmountCents:   dm.AmountCents,
		Currency:      dm.Currency,
		Method:        dm.Method,
		Processor:     dm.Processor,
		Status:        dm.Status,
		TransactionID: dm.TransactionID,
		FailureReason: dm.FailureReason,
		ProcessedAt:   dm.ProcessedAt,
		CreatedAt:     dm.CreatedAt,
		UpdatedAt:     dm.UpdatedAt,
	}
}

func FromDataModelSlice(dms []*paymentDatamodel.Payment) []*Payment {
	payments := make([]*Payment, 0, len(dms))
	for _, dm := range dms {
		payments = append(payments, FromDataModel(dm))
	}
	return payments
}
