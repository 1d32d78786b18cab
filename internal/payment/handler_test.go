package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	apperrors "github.com/canermastan/hotel-operations/internal"
	paymentpkg "github.com/canermastan/hotel-operations/internal/payment"
)

type mockPaymentService struct {
	chargeError        error
	refundError        error
	partialRefundError error
	historyError       error
	byTransactionError error
	analyticsError     error
	sweepError         error
	chargeResult       *paymentpkg.ChargeResult
	refundResult       *paymentpkg.RefundResult
	payment            *paymentpkg.Payment
	payments           []*paymentpkg.Payment
	analytics          *paymentpkg.AnalyticsResponse
	sweptCount         int
	sweepTimeout       time.Duration
}

func (m *mockPaymentService) Charge(ctx context.Context, req *paymentpkg.ChargeRequest) (*paymentpkg.ChargeResult, error) {
	if m.chargeError != nil {
		return nil, m.chargeError
	}
	return m.chargeResult, nil
}

func (m *mockPaymentService) Refund(ctx context.Context, reservationID int64) (*paymentpkg.RefundResult, error) {
	if m.refundError != nil {
		return nil, m.refundError
	}
	return m.refundResult, nil
}

func (m *mockPaymentService) PartialRefund(ctx context.Context, reservationID int64, amountCents int64) (*paymentpkg.RefundResult, error) {
	if m.partialRefundError != nil {
		return nil, m.partialRefundError
	}
	return m.refundResult, nil
}

func (m *mockPaymentService) GetPaymentHistory(reservationID int64) ([]*paymentpkg.Payment, error) {
	if m.historyError != nil {
		return nil, m.historyError
	}
	return m.payments, nil
}

func (m *mockPaymentService) GetPaymentByTransactionID(transactionID string) (*paymentpkg.Payment, error) {
	if m.byTransactionError != nil {
		return nil, m.byTransactionError
	}
	return m.payment, nil
}

func (m *mockPaymentService) GetPaymentAnalytics(start, end time.Time) (*paymentpkg.AnalyticsResponse, error) {
	if m.analyticsError != nil {
		return nil, m.analyticsError
	}
	return m.analytics, nil
}

func (m *mockPaymentService) SweepStuckPayments(timeout time.Duration) (int, error) {
	m.sweepTimeout = timeout
	if m.sweepError != nil {
		return 0, m.sweepError
	}
	return m.sweptCount, nil
}

var _ = ginkgo.Describe("PaymentHandler", func() {
	var (
		handler  *paymentpkg.Handler
		service  *mockPaymentService
		router   *chi.Mux
		recorder *httptest.ResponseRecorder
	)

	ginkgo.BeforeEach(func() {
		service = &mockPaymentService{
			chargeResult: &paymentpkg.ChargeResult{
				Success:       true,
				PaymentID:     1,
				TransactionID: "txn-1",
				AmountCents:   50000,
				Currency:      "USD",
				Message:       "Payment processed successfully",
			},
			refundResult: &paymentpkg.RefundResult{
				Success:       true,
				RefundID:      2,
				TransactionID: "ref-1",
				AmountCents:   50000,
				Currency:      "USD",
				Message:       "Refund processed successfully",
			},
		}
		handler = paymentpkg.NewHandler(service, time.Hour)
		recorder = httptest.NewRecorder()

		router = chi.NewRouter()
		router.Post("/api/v1/payments/charge", handler.Charge)
		router.Post("/api/v1/payments/sweep", handler.Sweep)
		router.Get("/api/v1/payments/analytics", handler.Analytics)
		router.Get("/api/v1/payments/transaction/{transactionId}", handler.GetByTransactionID)
		router.Post("/api/v1/payments/{reservationId}/refund", handler.Refund)
		router.Post("/api/v1/payments/{reservationId}/partial-refund", handler.PartialRefund)
		router.Get("/api/v1/payments/{reservationId}/history", handler.PaymentHistory)
	})

	jsonRequest := func(method, target string, body interface{}) *http.Request {
		var buf bytes.Buffer
		if body != nil {
			gomega.Expect(json.NewEncoder(&buf).Encode(body)).To(gomega.Succeed())
		}
		req := httptest.NewRequest(method, target, &buf)
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	ginkgo.Context("Charge", func() {
		ginkgo.When("the charge request is valid", func() {
			ginkgo.It("should return the charge result", func() {
				req := jsonRequest("POST", "/api/v1/payments/charge", map[string]interface{}{
					"reservation_id": 1,
					"payment_method": "CREDIT_CARD",
				})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				var response paymentpkg.ChargeResult
				gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
				gomega.Expect(response.Success).To(gomega.BeTrue())
				gomega.Expect(response.TransactionID).To(gomega.Equal("txn-1"))
			})
		})

		ginkgo.When("the request body is invalid JSON", func() {
			ginkgo.It("should return bad request", func() {
				req := httptest.NewRequest("POST", "/api/v1/payments/charge", bytes.NewBufferString("not json"))
				req.Header.Set("Content-Type", "application/json")

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.When("the payment method is unsupported", func() {
			ginkgo.It("should return a validation error", func() {
				req := jsonRequest("POST", "/api/v1/payments/charge", map[string]interface{}{
					"reservation_id": 1,
					"payment_method": "IOU",
				})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.When("the reservation is already paid", func() {
			ginkgo.It("should return conflict", func() {
				service.chargeError = apperrors.ErrAlreadyPaid
				req := jsonRequest("POST", "/api/v1/payments/charge", map[string]interface{}{
					"reservation_id": 1,
					"payment_method": "CREDIT_CARD",
				})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusConflict))
			})
		})

		ginkgo.When("the gateway is unavailable", func() {
			ginkgo.It("should return bad gateway", func() {
				service.chargeError = apperrors.NewDownstreamError("payment gateway unavailable", apperrors.ErrCodeGatewayFailure, nil)
				req := jsonRequest("POST", "/api/v1/payments/charge", map[string]interface{}{
					"reservation_id": 1,
					"payment_method": "CREDIT_CARD",
				})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadGateway))
			})
		})
	})

	ginkgo.Context("Refund", func() {
		ginkgo.When("the refund succeeds", func() {
			ginkgo.It("should return the refund result", func() {
				req := jsonRequest("POST", "/api/v1/payments/1/refund", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				var response paymentpkg.RefundResult
				gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
				gomega.Expect(response.Success).To(gomega.BeTrue())
				gomega.Expect(response.RefundID).To(gomega.Equal(int64(2)))
			})
		})

		ginkgo.When("the reservation ID is not numeric", func() {
			ginkgo.It("should return bad request", func() {
				req := jsonRequest("POST", "/api/v1/payments/abc/refund", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.When("the reservation is not paid", func() {
			ginkgo.It("should return conflict", func() {
				service.refundError = apperrors.ErrNotPaid
				req := jsonRequest("POST", "/api/v1/payments/1/refund", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusConflict))
			})
		})

		ginkgo.When("another refund is already in flight", func() {
			ginkgo.It("should return conflict", func() {
				service.refundError = apperrors.ErrRefundInProgress
				req := jsonRequest("POST", "/api/v1/payments/1/refund", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusConflict))
			})
		})
	})

	ginkgo.Context("PartialRefund", func() {
		ginkgo.When("the request is valid", func() {
			ginkgo.It("should return the refund result", func() {
				req := jsonRequest("POST", "/api/v1/payments/1/partial-refund", map[string]interface{}{
					"amount_cents": 20000,
				})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			})
		})

		ginkgo.When("the amount is missing", func() {
			ginkgo.It("should return a validation error", func() {
				req := jsonRequest("POST", "/api/v1/payments/1/partial-refund", map[string]interface{}{})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})

		ginkgo.When("the amount exceeds the original charge", func() {
			ginkgo.It("should return a validation error", func() {
				service.partialRefundError = apperrors.ErrRefundTooLarge
				req := jsonRequest("POST", "/api/v1/payments/1/partial-refund", map[string]interface{}{
					"amount_cents": 999999,
				})

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})
	})

	ginkgo.Context("GetByTransactionID", func() {
		ginkgo.When("the payment exists", func() {
			ginkgo.It("should return it", func() {
				service.payment = &paymentpkg.Payment{
					ID:            1,
					ReservationID: 1,
					AmountCents:   50000,
					Status:        paymentpkg.StatusCompleted,
				}
				req := jsonRequest("GET", "/api/v1/payments/transaction/txn-1", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			})
		})

		ginkgo.When("the payment does not exist", func() {
			ginkgo.It("should return not found", func() {
				service.byTransactionError = apperrors.ErrPaymentNotFound
				req := jsonRequest("GET", "/api/v1/payments/transaction/missing", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
			})
		})
	})

	ginkgo.Context("Analytics", func() {
		ginkgo.BeforeEach(func() {
			service.analytics = &paymentpkg.AnalyticsResponse{
				TotalCompletedCents: 80000,
				StatusCounts:        map[string]int64{paymentpkg.StatusCompleted: 2},
				SuccessRate:         100,
			}
		})

		ginkgo.When("no time window is given", func() {
			ginkgo.It("should return the analytics", func() {
				req := jsonRequest("GET", "/api/v1/payments/analytics", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
				var response paymentpkg.AnalyticsResponse
				gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
				gomega.Expect(response.TotalCompletedCents).To(gomega.Equal(int64(80000)))
			})
		})

		ginkgo.When("the start time is malformed", func() {
			ginkgo.It("should return bad request", func() {
				req := jsonRequest("GET", "/api/v1/payments/analytics?start=yesterday", nil)

				router.ServeHTTP(recorder, req)

				gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusBadRequest))
			})
		})
	})

	ginkgo.Context("Sweep", func() {
		ginkgo.It("should report the swept count", func() {
			service.sweptCount = 3
			req := jsonRequest("POST", "/api/v1/payments/sweep", nil)

			router.ServeHTTP(recorder, req)

			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusOK))
			var response paymentpkg.SweepResult
			gomega.Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(gomega.Succeed())
			gomega.Expect(response.SweptCount).To(gomega.Equal(3))
		})

		ginkgo.It("should use the configured timeout", func() {
			req := jsonRequest("POST", "/api/v1/payments/sweep", nil)

			router.ServeHTTP(recorder, req)

			gomega.Expect(service.sweepTimeout).To(gomega.Equal(time.Hour))
		})
	})
})
