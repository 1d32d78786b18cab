package paymentgateway

import (
	"errors"
)

type ChargeRequest struct {
	ReferenceID string            `json:"reference_id"`
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Method      string            `json:"method"`
	Details     map[string]string `json:"details,omitempty"`
}

func (r *ChargeRequest) Validate() error {
	if r.ReferenceID == "" {
		return errors.New("reference_id is required")
	}
	if r.AmountCents <= 0 {
		return errors.New("amount_cents must be greater than 0")
	}
	if r.Currency == "" {
		return errors.New("currency is required")
	}
	if r.Method == "" {
		return errors.New("method is required")
	}
	return nil
}

type RefundRequest struct {
	OriginalTransactionID string `json:"original_transaction_id"`
	AmountCents           int64  `json:"amount_cents"`
	Currency              string `json:"currency"`
}

func (r *RefundRequest) Validate() error {
	if r.OriginalTransactionID == "" {
		return errors.New("original_transaction_id is required")
	}
	if r.AmountCents <= 0 {
		return errors.New("amount_cents must be greater than 0")
	}
	return nil
}

// Result is the gateway's terminal answer. A decline is a normal outcome
// carried in the struct; only transport or provider malfunctions surface as
// Go errors from the client.
type Result struct {
	TransactionID string `json:"transaction_id"`
	Declined      bool   `json:"declined"`
	DeclineReason string `json:"decline_reason,omitempty"`
}
