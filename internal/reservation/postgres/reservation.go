package postgres

import (
	"time"

	"gorm.io/gorm"

	reservationDatamodel "github.com/canermastan/hotel-operations/internal/core/datamodel/reservation"
	reservationpkg "github.com/canermastan/hotel-operations/internal/reservation"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) reservationpkg.Repository {
	return &ReservationRepository{
		db: db,
	}
}

func (r *ReservationRepository) GetByID(id int64) (*reservationDatamodel.Reservation, error) {
	var res reservationDatamodel.Reservation
	err := r.db.First(&res, id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) UpdateStatus(id int64, status string, checkedInAt time.Time) error {
	return r.db.Model(&reservationDatamodel.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"checked_in_at": checkedInAt,
			"updated_at":    time.Now(),
		}).Error
}

func (r *ReservationRepository) UpdatePaymentStatus(id int64, paymentStatus string, transactionID *string) error {
	updates := map[string]interface{}{
		"payment_status": paymentStatus,
		"updated_at":     time.Now(),
	}
	if transactionID != nil {
		updates["payment_transaction_id"] = *transactionID
	} else {
		updates["payment_transaction_id"] = nil
	}

	return r.db.Model(&reservationDatamodel.Reservation{}).
		Where("id = ?", id).
		Updates(updates).Error
}
