package payment

import (
	errors "github.com/canermastan/hotel-operations/internal"
	"github.com/canermastan/hotel-operations/internal/core/common/validation"
)

type ChargeRequest struct {
	ReservationID int64             `json:"reservation_id"`
	Method        string            `json:"payment_method"`
	Details       map[string]string `json:"payment_details,omitempty"`
}

func (r *ChargeRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("reservation_id", r.ReservationID).Required()
	validator.Field("payment_method", r.Method).Required().OneOf(SupportedMethods, errors.ErrCodeInvalidMethod)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type PartialRefundRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func (r *PartialRefundRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("amount_cents", r.AmountCents).Required().MinInt(1, errors.ErrCodeInvalidAmount)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ChargeResult reports the charge outcome. A decline is Success=false with
// the reason filled in; it is never surfaced as an error.
type ChargeResult struct {
	Success           bool   `json:"success"`
	PaymentID         int64  `json:"payment_id"`
	TransactionID     string `json:"transaction_id,omitempty"`
	AmountCents       int64  `json:"amount_cents"`
	Currency          string `json:"currency"`
	Method            string `json:"payment_method"`
	ReservationStatus string `json:"reservation_status,omitempty"`
	Message           string `json:"message"`
}

// RefundResult reports a full or partial refund outcome. AmountCents is the
// absolute refunded amount.
type RefundResult struct {
	Success       bool   `json:"success"`
	RefundID      int64  `json:"refund_id"`
	TransactionID string `json:"refund_transaction_id,omitempty"`
	AmountCents   int64  `json:"refund_amount_cents"`
	Currency      string `json:"currency"`
	Message       string `json:"message"`
}

type AnalyticsResponse struct {
	TotalCompletedCents int64            `json:"total_completed_cents"`
	StatusCounts        map[string]int64 `json:"status_counts"`
	SuccessRate         float64          `json:"success_rate"`
}

type SweepResult struct {
	SweptCount int `json:"swept_count"`
}
