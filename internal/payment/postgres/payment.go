package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	paymentDatamodel "github.com/canermastan/hotel-operations/internal/core/datamodel/payment"
	paymentpkg "github.com/canermastan/hotel-operations/internal/payment"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) paymentpkg.Repository {
	return &PaymentRepository{
		db: db,
	}
}

func (r *PaymentRepository) Create(p *paymentpkg.Payment) error {
	dm := paymentpkg.ToDataModel(p)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	p.ID = dm.ID
	p.CreatedAt = dm.CreatedAt
	p.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *PaymentRepository) GetByID(id int64) (*paymentpkg.Payment, error) {
	var dm paymentDatamodel.Payment
	if err := r.db.First(&dm, id).Error; err != nil {
		return nil, err
	}
	return paymentpkg.FromDataModel(&dm), nil
}

func (r *PaymentRepository) GetByReservationID(reservationID int64) ([]*paymentpkg.Payment, error) {
	var dms []*paymentDatamodel.Payment
	err := r.db.
		Where("reservation_id = ?", reservationID).
		Order("created_at DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return paymentpkg.FromDataModelSlice(dms), nil
}

func (r *PaymentRepository) GetByTransactionID(transactionID string) (*paymentpkg.Payment, error) {
	var dm paymentDatamodel.Payment
	if err := r.db.Where("transaction_id = ?", transactionID).First(&dm).Error; err != nil {
		return nil, err
	}
	return paymentpkg.FromDataModel(&dm), nil
}

func (r *PaymentRepository) GetLatestRefundableCharge(reservationID int64) (*paymentpkg.Payment, error) {
	var dm paymentDatamodel.Payment
	err := r.db.
		Where("reservation_id = ? AND status IN ? AND amount_cents > 0",
			reservationID, []string{paymentDatamodel.StatusCompleted, paymentDatamodel.StatusRefundPending}).
		Order("created_at DESC").
		First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return paymentpkg.FromDataModel(&dm), nil
}

// TransitionStatus is the per-row compare-and-set: the update lands only when
// the row still holds one of the expected statuses.
func (r *PaymentRepository) TransitionStatus(id int64, from []string, to string, update paymentpkg.StatusUpdate) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}

	if update.TransactionID != nil {
		updates["transaction_id"] = *update.TransactionID
	}
	if update.FailureReason != nil {
		updates["failure_reason"] = *update.FailureReason
	}
	if update.ProcessedAt != nil {
		updates["processed_at"] = *update.ProcessedAt
	}

	result := r.db.Model(&paymentDatamodel.Payment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PaymentRepository) FindProcessingOlderThan(cutoff time.Time) ([]*paymentpkg.Payment, error) {
	var dms []*paymentDatamodel.Payment
	err := r.db.
		Where("status = ? AND created_at < ?", paymentDatamodel.StatusProcessing, cutoff).
		Order("created_at ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return paymentpkg.FromDataModelSlice(dms), nil
}

func (r *PaymentRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}

	err := r.db.Model(&paymentDatamodel.Payment{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// TotalCompletedForPeriod sums completed charge volume, refund rows excluded.
func (r *PaymentRepository) TotalCompletedForPeriod(start, end time.Time) (int64, error) {
	var total *int64
	err := r.db.Model(&paymentDatamodel.Payment{}).
		Select("SUM(amount_cents)").
		Where("status = ? AND amount_cents > 0 AND created_at BETWEEN ? AND ?",
			paymentDatamodel.StatusCompleted, start, end).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
