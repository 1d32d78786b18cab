package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/canermastan/hotel-operations/internal/checkin"
	"github.com/canermastan/hotel-operations/internal/payment"
	"github.com/canermastan/hotel-operations/internal/transport/middleware"
	"github.com/canermastan/hotel-operations/internal/transport/swagger"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, checkinHandler *checkin.Handler, paymentHandler *payment.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve the OpenAPI document at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if checkinHandler != nil {
			r.Route("/checkin", func(cr chi.Router) {
				cr.Post("/start", checkinHandler.StartCheckin)
				cr.Post("/{id}/passport", checkinHandler.UploadPassport)
				cr.Get("/{id}/passport/status", checkinHandler.PassportStatus)
				cr.Post("/{id}/liveness/start", checkinHandler.StartLiveness)
				cr.Post("/{id}/liveness/complete", checkinHandler.CompleteLiveness)
				cr.Post("/{id}/cancel", checkinHandler.CancelCheckin)
				cr.Get("/{id}", checkinHandler.GetCheckin)
				cr.Get("/reservation/{reservationId}", checkinHandler.GetCheckinsByReservation)
				cr.Get("/reservation/{reservationId}/active", checkinHandler.GetActiveCheckin)
			})
		}

		if paymentHandler != nil {
			r.Route("/payments", func(pr chi.Router) {
				pr.Post("/charge", paymentHandler.Charge)
				pr.Post("/sweep", paymentHandler.Sweep)
				pr.Get("/analytics", paymentHandler.Analytics)
				pr.Get("/transaction/{transactionId}", paymentHandler.GetByTransactionID)
				pr.Post("/{reservationId}/refund", paymentHandler.Refund)
				pr.Post("/{reservationId}/partial-refund", paymentHandler.PartialRefund)
				pr.Get("/{reservationId}/history", paymentHandler.PaymentHistory)
			})
		}
	})
}
