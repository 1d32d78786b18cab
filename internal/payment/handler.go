package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	errors "github.com/canermastan/hotel-operations/internal"
	"github.com/canermastan/hotel-operations/internal/transport"
	"github.com/canermastan/hotel-operations/pkg/logger"
)

type ServiceAPI interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, reservationID int64) (*RefundResult, error)
	PartialRefund(ctx context.Context, reservationID int64, amountCents int64) (*RefundResult, error)
	GetPaymentHistory(reservationID int64) ([]*Payment, error)
	GetPaymentByTransactionID(transactionID string) (*Payment, error)
	GetPaymentAnalytics(start, end time.Time) (*AnalyticsResponse, error)
	SweepStuckPayments(timeout time.Duration) (int, error)
}

type Handler struct {
	*transport.BaseHandler
	Service      ServiceAPI
	SweepTimeout time.Duration
}

func NewHandler(service ServiceAPI, sweepTimeout time.Duration) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	if sweepTimeout <= 0 {
		sweepTimeout = time.Hour
	}
	return &Handler{
		BaseHandler:  transport.NewBaseHandler(lg),
		Service:      service,
		SweepTimeout: sweepTimeout,
	}
}

func (h *Handler) Charge(w http.ResponseWriter, r *http.Request) {
	var dto ChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Charge: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.Charge(r.Context(), &dto)
	if err != nil {
		h.Logger.Error("Charge: service error", "error", err, "reservation_id", dto.ReservationID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Charge: charge processed",
		"reservation_id", dto.ReservationID,
		"payment_id", result.PaymentID,
		"success", result.Success)

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	reservationID, ok := h.reservationIDFromURL(w, r)
	if !ok {
		return
	}

	result, err := h.Service.Refund(r.Context(), reservationID)
	if err != nil {
		h.Logger.Error("Refund: service error", "error", err, "reservation_id", reservationID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Refund: refund processed",
		"reservation_id", reservationID,
		"refund_id", result.RefundID,
		"success", result.Success)

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) PartialRefund(w http.ResponseWriter, r *http.Request) {
	reservationID, ok := h.reservationIDFromURL(w, r)
	if !ok {
		return
	}

	var dto PartialRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.PartialRefund(r.Context(), reservationID, dto.AmountCents)
	if err != nil {
		h.Logger.Error("PartialRefund: service error", "error", err, "reservation_id", reservationID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("PartialRefund: partial refund processed",
		"reservation_id", reservationID,
		"refund_id", result.RefundID,
		"amount_cents", dto.AmountCents,
		"success", result.Success)

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	reservationID, ok := h.reservationIDFromURL(w, r)
	if !ok {
		return
	}

	payments, err := h.Service.GetPaymentHistory(reservationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, payments)
}

func (h *Handler) GetByTransactionID(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionId")
	if transactionID == "" {
		h.HandleError(w, errors.NewValidationError("transaction ID is required", errors.ErrCodeValidationFailed))
		return
	}

	p, err := h.Service.GetPaymentByTransactionID(transactionID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

// Analytics accepts optional RFC 3339 start/end query params; the default
// window is the trailing 30 days.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.HandleError(w, errors.NewValidationError("invalid start time", errors.ErrCodeValidationFailed))
			return
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.HandleError(w, errors.NewValidationError("invalid end time", errors.ErrCodeValidationFailed))
			return
		}
		end = parsed
	}

	analytics, err := h.Service.GetPaymentAnalytics(start, end)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, analytics)
}

func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	swept, err := h.Service.SweepStuckPayments(h.SweepTimeout)
	if err != nil {
		h.Logger.Error("Sweep: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Sweep: stuck payment sweep finished", "swept_count", swept)
	h.WriteJSON(w, http.StatusOK, SweepResult{SweptCount: swept})
}

func (h *Handler) reservationIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "reservationId"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid reservation ID", errors.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}
