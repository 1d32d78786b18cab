package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/canermastan/hotel-operations/internal"
	paymentgatewaytypes "github.com/canermastan/hotel-operations/internal/core/datamodel/paymentgateway"
	reservationDatamodel "github.com/canermastan/hotel-operations/internal/core/datamodel/reservation"
	"github.com/canermastan/hotel-operations/internal/core/events"
	"github.com/canermastan/hotel-operations/internal/reservation"
)

// StatusUpdate carries the columns a status transition may set alongside the
// new status.
type StatusUpdate struct {
	TransactionID *string
	FailureReason *string
	ProcessedAt   *time.Time
}

type Repository interface {
	Create(p *Payment) error
	GetByID(id int64) (*Payment, error)
	GetByReservationID(reservationID int64) ([]*Payment, error)
	GetByTransactionID(transactionID string) (*Payment, error)
	// GetLatestRefundableCharge returns the newest charge row still holding
	// COMPLETED or REFUND_PENDING, or nil, nil when there is none.
	GetLatestRefundableCharge(reservationID int64) (*Payment, error)
	TransitionStatus(id int64, from []string, to string, update StatusUpdate) (bool, error)
	FindProcessingOlderThan(cutoff time.Time) ([]*Payment, error)
	CountByStatus() (map[string]int64, error)
	TotalCompletedForPeriod(start, end time.Time) (int64, error)
}

// Gateway is the synchronous charge/refund connector. Declines come back as
// results; only transport failures are errors.
type Gateway interface {
	Charge(ctx context.Context, req *paymentgatewaytypes.ChargeRequest) (*paymentgatewaytypes.Result, error)
	Refund(ctx context.Context, req *paymentgatewaytypes.RefundRequest) (*paymentgatewaytypes.Result, error)
}

type Service struct {
	repo           Repository
	reservations   reservation.Gateway
	gateway        Gateway
	eventBus       *events.EventBus
	currency       string
	gatewayTimeout time.Duration
	logger         *slog.Logger
}

func NewService(repo Repository, reservations reservation.Gateway, gateway Gateway, eventBus *events.EventBus, currency string, gatewayTimeout time.Duration, logger *slog.Logger) *Service {
	if currency == "" {
		currency = "USD"
	}
	if gatewayTimeout <= 0 {
		gatewayTimeout = 30 * time.Second
	}
	return &Service{
		repo:           repo,
		reservations:   reservations,
		gateway:        gateway,
		eventBus:       eventBus,
		currency:       currency,
		gatewayTimeout: gatewayTimeout,
		logger:         logger,
	}
}

// Charge settles the reservation's full price. The gateway is awaited inline;
// a decline drives the row to FAILED and comes back as an unsuccessful result,
// never an error.
func (s *Service) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	res, err := s.reservations.FindByID(req.ReservationID)
	if err != nil {
		return nil, err
	}

	if res.PaymentStatus == reservationDatamodel.PaymentStatusPaid {
		s.logger.Warn("charge rejected, reservation already paid", "reservation_id", req.ReservationID)
		return nil, errors.ErrAlreadyPaid
	}

	method := strings.ToUpper(req.Method)
	row := &Payment{
		ReservationID: req.ReservationID,
		AmountCents:   res.TotalPriceCents,
		Currency:      s.currency,
		Method:        method,
		Processor:     DeriveProcessor(method),
		Status:        StatusProcessing,
	}
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create payment row", "error", err, "reservation_id", req.ReservationID)
		return nil, errors.NewInternalError("failed to create payment", err)
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	result, err := s.gateway.Charge(gatewayCtx, &paymentgatewaytypes.ChargeRequest{
		ReferenceID: fmt.Sprintf("reservation-%d-payment-%d", req.ReservationID, row.ID),
		AmountCents: row.AmountCents,
		Currency:    row.Currency,
		Method:      method,
		Details:     req.Details,
	})
	if err != nil {
		s.failPayment(row, fmt.Sprintf("Gateway failure: %v", err))
		s.logger.Error("payment gateway call failed",
			"error", err,
			"payment_id", row.ID,
			"reservation_id", req.ReservationID)
		return nil, errors.NewDownstreamError("payment gateway unavailable", errors.ErrCodeGatewayFailure, err)
	}

	if result.Declined {
		s.failPayment(row, result.DeclineReason)
		s.logger.Info("payment declined",
			"payment_id", row.ID,
			"reservation_id", req.ReservationID,
			"reason", result.DeclineReason)
		return &ChargeResult{
			Success:     false,
			PaymentID:   row.ID,
			AmountCents: row.AmountCents,
			Currency:    row.Currency,
			Method:      method,
			Message:     "Payment processing failed",
		}, nil
	}

	now := time.Now()
	ok, err := s.repo.TransitionStatus(row.ID, []string{StatusProcessing}, StatusCompleted, StatusUpdate{
		TransactionID: &result.TransactionID,
		ProcessedAt:   &now,
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to complete payment", err)
	}
	if !ok {
		// The sweep got there first. The gateway approved, so this needs a
		// human eye; the row stays FAILED and the caller retries.
		s.logger.Error("approved charge lost the row, already swept",
			"payment_id", row.ID,
			"transaction_id", result.TransactionID)
		return &ChargeResult{
			Success:     false,
			PaymentID:   row.ID,
			AmountCents: row.AmountCents,
			Currency:    row.Currency,
			Method:      method,
			Message:     "Payment processing failed",
		}, nil
	}

	updated, err := s.reservations.SetPaymentStatus(req.ReservationID, reservationDatamodel.PaymentStatusPaid, &result.TransactionID)
	if err != nil {
		s.logger.Error("failed to mark reservation paid",
			"error", err,
			"reservation_id", req.ReservationID,
			"transaction_id", result.TransactionID)
		return nil, err
	}

	if pubErr := s.eventBus.Publish(context.Background(), events.NewPaymentCompletedEvent(row.ID, req.ReservationID, row.AmountCents, row.Currency, result.TransactionID)); pubErr != nil {
		s.logger.Error("failed to publish payment completed event", "error", pubErr, "payment_id", row.ID)
	}

	s.logger.Info("payment processed successfully",
		"payment_id", row.ID,
		"reservation_id", req.ReservationID,
		"transaction_id", result.TransactionID,
		"amount_cents", row.AmountCents)

	return &ChargeResult{
		Success:           true,
		PaymentID:         row.ID,
		TransactionID:     result.TransactionID,
		AmountCents:       row.AmountCents,
		Currency:          row.Currency,
		Method:            method,
		ReservationStatus: updated.Status,
		Message:           "Payment processed successfully",
	}, nil
}

// Refund reverses the full original charge. Refund failure leaves the
// original charge and the reservation untouched.
func (s *Service) Refund(ctx context.Context, reservationID int64) (*RefundResult, error) {
	original, err := s.refundable(reservationID)
	if err != nil {
		return nil, err
	}

	return s.executeRefund(ctx, reservationID, original, original.AmountCents, false)
}

// PartialRefund reverses part of the original charge. The reservation stays
// PAID; only the original row is marked PARTIALLY_REFUNDED.
func (s *Service) PartialRefund(ctx context.Context, reservationID int64, amountCents int64) (*RefundResult, error) {
	original, err := s.refundable(reservationID)
	if err != nil {
		return nil, err
	}

	if amountCents > original.AmountCents {
		s.logger.Warn("partial refund exceeds original charge",
			"reservation_id", reservationID,
			"requested_cents", amountCents,
			"original_cents", original.AmountCents)
		return nil, errors.ErrRefundTooLarge
	}

	return s.executeRefund(ctx, reservationID, original, amountCents, true)
}

// refundable locates the charge a refund would reverse.
func (s *Service) refundable(reservationID int64) (*Payment, error) {
	res, err := s.reservations.FindByID(reservationID)
	if err != nil {
		return nil, err
	}

	if res.PaymentStatus != reservationDatamodel.PaymentStatusPaid {
		s.logger.Warn("refund rejected, reservation not paid",
			"reservation_id", reservationID,
			"payment_status", res.PaymentStatus)
		return nil, errors.ErrNotPaid
	}

	original, err := s.repo.GetLatestRefundableCharge(reservationID)
	if err != nil {
		return nil, errors.NewInternalError("failed to look up original charge", err)
	}
	if original == nil {
		return nil, errors.ErrPaymentNotFound
	}
	if original.Status == StatusRefundPending {
		s.logger.Warn("refund rejected, charge already claimed by in-flight refund",
			"reservation_id", reservationID,
			"payment_id", original.ID)
		return nil, errors.ErrRefundInProgress
	}
	return original, nil
}

func (s *Service) executeRefund(ctx context.Context, reservationID int64, original *Payment, amountCents int64, partial bool) (*RefundResult, error) {
	// Claim the charge before touching the gateway. Only one refund may be in
	// flight per charge; the loser of this compare-and-set never settles.
	claimed, err := s.repo.TransitionStatus(original.ID, []string{StatusCompleted}, StatusRefundPending, StatusUpdate{})
	if err != nil {
		return nil, errors.NewInternalError("failed to claim original charge", err)
	}
	if !claimed {
		s.logger.Warn("refund lost the claim on the original charge",
			"payment_id", original.ID,
			"reservation_id", reservationID)
		return nil, errors.ErrRefundInProgress
	}

	row := &Payment{
		ReservationID: reservationID,
		AmountCents:   -amountCents,
		Currency:      original.Currency,
		Method:        original.Method,
		Processor:     original.Processor,
		Status:        StatusProcessing,
	}
	if err := s.repo.Create(row); err != nil {
		s.releaseRefundClaim(original.ID)
		s.logger.Error("failed to create refund row", "error", err, "reservation_id", reservationID)
		return nil, errors.NewInternalError("failed to create refund", err)
	}

	originalTxn := ""
	if original.TransactionID != nil {
		originalTxn = *original.TransactionID
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	result, err := s.gateway.Refund(gatewayCtx, &paymentgatewaytypes.RefundRequest{
		OriginalTransactionID: originalTxn,
		AmountCents:           amountCents,
		Currency:              original.Currency,
	})
	if err != nil {
		s.failPayment(row, fmt.Sprintf("Gateway failure: %v", err))
		s.releaseRefundClaim(original.ID)
		s.logger.Error("refund gateway call failed",
			"error", err,
			"refund_id", row.ID,
			"reservation_id", reservationID)
		return nil, errors.NewDownstreamError("payment gateway unavailable", errors.ErrCodeGatewayFailure, err)
	}

	if result.Declined {
		s.failPayment(row, result.DeclineReason)
		s.releaseRefundClaim(original.ID)
		s.logger.Info("refund declined",
			"refund_id", row.ID,
			"reservation_id", reservationID,
			"reason", result.DeclineReason)
		return &RefundResult{
			Success:     false,
			RefundID:    row.ID,
			AmountCents: amountCents,
			Currency:    row.Currency,
			Message:     "Refund processing failed",
		}, nil
	}

	now := time.Now()
	if _, err := s.repo.TransitionStatus(row.ID, []string{StatusProcessing}, StatusCompleted, StatusUpdate{
		TransactionID: &result.TransactionID,
		ProcessedAt:   &now,
	}); err != nil {
		return nil, errors.NewInternalError("failed to complete refund", err)
	}

	originalTo := StatusRefunded
	if partial {
		originalTo = StatusPartiallyRefunded
	}
	ok, err := s.repo.TransitionStatus(original.ID, []string{StatusRefundPending}, originalTo, StatusUpdate{})
	if err != nil {
		return nil, errors.NewInternalError("failed to mark original charge refunded", err)
	}
	if !ok {
		// The claim above makes this unreachable short of manual row edits.
		s.logger.Error("claimed charge no longer refund-pending",
			"payment_id", original.ID,
			"reservation_id", reservationID)
	}

	if !partial {
		if _, err := s.reservations.SetPaymentStatus(reservationID, reservationDatamodel.PaymentStatusRefunded, nil); err != nil {
			s.logger.Error("failed to mark reservation refunded",
				"error", err,
				"reservation_id", reservationID)
			return nil, err
		}
	}

	if pubErr := s.eventBus.Publish(context.Background(), events.NewPaymentRefundedEvent(row.ID, original.ID, reservationID, amountCents, partial, result.TransactionID)); pubErr != nil {
		s.logger.Error("failed to publish payment refunded event", "error", pubErr, "refund_id", row.ID)
	}

	s.logger.Info("refund processed successfully",
		"refund_id", row.ID,
		"reservation_id", reservationID,
		"transaction_id", result.TransactionID,
		"amount_cents", amountCents,
		"partial", partial)

	return &RefundResult{
		Success:       true,
		RefundID:      row.ID,
		TransactionID: result.TransactionID,
		AmountCents:   amountCents,
		Currency:      row.Currency,
		Message:       "Refund processed successfully",
	}, nil
}

func (s *Service) GetPaymentHistory(reservationID int64) ([]*Payment, error) {
	payments, err := s.repo.GetByReservationID(reservationID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load payment history", err)
	}
	return payments, nil
}

func (s *Service) GetPaymentByTransactionID(transactionID string) (*Payment, error) {
	p, err := s.repo.GetByTransactionID(transactionID)
	if err != nil {
		return nil, errors.ErrPaymentNotFound
	}
	return p, nil
}

func (s *Service) GetPaymentAnalytics(start, end time.Time) (*AnalyticsResponse, error) {
	total, err := s.repo.TotalCompletedForPeriod(start, end)
	if err != nil {
		return nil, errors.NewInternalError("failed to compute payment volume", err)
	}

	counts, err := s.repo.CountByStatus()
	if err != nil {
		return nil, errors.NewInternalError("failed to count payments", err)
	}

	completed := counts[StatusCompleted]
	failed := counts[StatusFailed]
	successRate := 0.0
	if completed+failed > 0 {
		successRate = float64(completed) / float64(completed+failed) * 100
	}

	return &AnalyticsResponse{
		TotalCompletedCents: total,
		StatusCounts:        counts,
		SuccessRate:         successRate,
	}, nil
}

// SweepStuckPayments force-fails PROCESSING rows older than the timeout.
// Rows already terminal are untouched, so the sweep is safe to repeat.
func (s *Service) SweepStuckPayments(timeout time.Duration) (int, error) {
	cutoff := time.Now().Add(-timeout)
	stuck, err := s.repo.FindProcessingOlderThan(cutoff)
	if err != nil {
		return 0, errors.NewInternalError("failed to scan stuck payments", err)
	}

	swept := 0
	for _, p := range stuck {
		reason := "Payment timeout - processing took too long"
		ok, err := s.repo.TransitionStatus(p.ID, []string{StatusProcessing}, StatusFailed, StatusUpdate{
			FailureReason: &reason,
			ProcessedAt:   timePtr(time.Now()),
		})
		if err != nil {
			s.logger.Error("failed to sweep stuck payment", "error", err, "payment_id", p.ID)
			continue
		}
		if !ok {
			continue
		}

		s.logger.Warn("marked stuck payment as failed", "payment_id", p.ID, "reservation_id", p.ReservationID)
		if pubErr := s.eventBus.Publish(context.Background(), events.NewPaymentFailedEvent(p.ID, p.ReservationID, p.AmountCents, reason)); pubErr != nil {
			s.logger.Error("failed to publish payment failed event", "error", pubErr, "payment_id", p.ID)
		}
		swept++
	}

	return swept, nil
}

// releaseRefundClaim hands a claimed charge back to COMPLETED after a refund
// that did not settle, so a later refund attempt can claim it again.
func (s *Service) releaseRefundClaim(originalID int64) {
	ok, err := s.repo.TransitionStatus(originalID, []string{StatusRefundPending}, StatusCompleted, StatusUpdate{})
	if err != nil {
		s.logger.Error("failed to release refund claim", "error", err, "payment_id", originalID)
		return
	}
	if !ok {
		s.logger.Error("refund claim release found charge in unexpected status", "payment_id", originalID)
	}
}

// failPayment records a terminal FAILED outcome on the row.
func (s *Service) failPayment(row *Payment, reason string) {
	now := time.Now()
	ok, err := s.repo.TransitionStatus(row.ID, []string{StatusProcessing}, StatusFailed, StatusUpdate{
		FailureReason: &reason,
		ProcessedAt:   &now,
	})
	if err != nil {
		s.logger.Error("failed to mark payment failed", "error", err, "payment_id", row.ID)
		return
	}
	if !ok {
		s.logger.Debug("payment no longer processing, skipping failure transition", "payment_id", row.ID)
		return
	}

	if pubErr := s.eventBus.Publish(context.Background(), events.NewPaymentFailedEvent(row.ID, row.ReservationID, row.AmountCents, reason)); pubErr != nil {
		s.logger.Error("failed to publish payment failed event", "error", pubErr, "payment_id", row.ID)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
