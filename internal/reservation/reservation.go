package reservation

import (
	"log/slog"
	"time"

	errors "github.com/canermastan/hotel-operations/internal"
	reservationDatamodel "github.com/canermastan/hotel-operations/internal/core/datamodel/reservation"
)

// Gateway is the capability both workflows depend on. The reservation store
// is owned elsewhere; the workflows only look up records, flip the hotel-side
// check-in, and reconcile the payment status.
type Gateway interface {
	FindByID(id int64) (*reservationDatamodel.Reservation, error)
	CheckIn(id int64) error
	SetPaymentStatus(id int64, status string, transactionID *string) (*reservationDatamodel.Reservation, error)
}

type Repository interface {
	GetByID(id int64) (*reservationDatamodel.Reservation, error)
	UpdateStatus(id int64, status string, checkedInAt time.Time) error
	UpdatePaymentStatus(id int64, paymentStatus string, transactionID *string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) FindByID(id int64) (*reservationDatamodel.Reservation, error) {
	res, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrReservationNotFound
	}
	return res, nil
}

// CheckIn flips the reservation to CHECKED_IN. The reservation must be in a
// state that admits arrival; anything else is a downstream error for callers.
func (s *Service) CheckIn(id int64) error {
	res, err := s.repo.GetByID(id)
	if err != nil {
		return errors.ErrReservationNotFound
	}

	if res.Status != reservationDatamodel.StatusConfirmed {
		s.logger.Warn("cannot check in reservation in current status",
			"reservation_id", id,
			"status", res.Status)
		return errors.NewInvalidStateError("reservation cannot be checked in", errors.ErrCodeCheckinDownstream)
	}

	if err := s.repo.UpdateStatus(id, reservationDatamodel.StatusCheckedIn, time.Now()); err != nil {
		s.logger.Error("failed to update reservation status", "error", err, "reservation_id", id)
		return errors.NewInternalError("failed to check in reservation", err)
	}

	s.logger.Info("reservation checked in", "reservation_id", id)
	return nil
}

func (s *Service) SetPaymentStatus(id int64, status string, transactionID *string) (*reservationDatamodel.Reservation, error) {
	if err := s.repo.UpdatePaymentStatus(id, status, transactionID); err != nil {
		s.logger.Error("failed to update reservation payment status",
			"error", err,
			"reservation_id", id,
			"payment_status", status)
		return nil, errors.NewInternalError("failed to update payment status", err)
	}

	res, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrReservationNotFound
	}

	s.logger.Info("reservation payment status updated",
		"reservation_id", id,
		"payment_status", status)
	return res, nil
}
