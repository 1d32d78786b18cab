package postgres

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	checkinpkg "github.com/canermastan/hotel-operations/internal/checkin"
	checkinDatamodel "github.com/canermastan/hotel-operations/internal/core/datamodel/checkin"
)

type CheckinRepository struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) checkinpkg.Repository {
	return &CheckinRepository{
		db: db,
	}
}

func (r *CheckinRepository) Create(rec *checkinpkg.CheckinRecord) error {
	dm := checkinpkg.ToDataModel(rec)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	rec.ID = dm.ID
	rec.CreatedAt = dm.CreatedAt
	rec.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *CheckinRepository) GetByID(id int64) (*checkinpkg.CheckinRecord, error) {
	var dm checkinDatamodel.CheckinRecord
	if err := r.db.First(&dm, id).Error; err != nil {
		return nil, err
	}
	return checkinpkg.FromDataModel(&dm), nil
}

func (r *CheckinRepository) GetActiveByReservationID(reservationID int64) (*checkinpkg.CheckinRecord, error) {
	var dm checkinDatamodel.CheckinRecord
	err := r.db.
		Where("reservation_id = ? AND checkin_status IN ?", reservationID, checkinDatamodel.ActiveStatuses).
		Order("created_at DESC").
		First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return checkinpkg.FromDataModel(&dm), nil
}

func (r *CheckinRepository) GetByReservationID(reservationID int64) ([]*checkinpkg.CheckinRecord, error) {
	var dms []*checkinDatamodel.CheckinRecord
	err := r.db.
		Where("reservation_id = ?", reservationID).
		Order("created_at DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return checkinpkg.FromDataModelSlice(dms), nil
}

// TransitionStatus is the per-row compare-and-set: the update lands only when
// the record still holds one of the expected statuses.
func (r *CheckinRepository) TransitionStatus(id int64, from []string, to string, update checkinpkg.StatusUpdate) (bool, error) {
	updates := map[string]interface{}{
		"checkin_status": to,
		"updated_at":     time.Now(),
	}

	if update.PassportImagePath != nil {
		updates["passport_image_path"] = *update.PassportImagePath
	}
	if update.PassportData != nil {
		updates["passport_data"] = datatypes.JSONMap(update.PassportData)
	}
	if update.PassportVerified != nil {
		updates["passport_verified"] = *update.PassportVerified
	}
	if update.SessionID != nil {
		updates["liveness_session_id"] = *update.SessionID
	}
	if update.LivenessResponse != nil {
		updates["liveness_response"] = *update.LivenessResponse
	}
	if update.VerificationError != nil {
		updates["verification_errors"] = *update.VerificationError
	}
	if update.CompletedAt != nil {
		updates["completed_at"] = *update.CompletedAt
	}

	result := r.db.Model(&checkinDatamodel.CheckinRecord{}).
		Where("id = ? AND checkin_status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkLivenessVerified claims the liveness completion: the monotonic
// false->true flip serializes concurrent completion calls.
func (r *CheckinRepository) MarkLivenessVerified(id int64, response string) (bool, error) {
	result := r.db.Model(&checkinDatamodel.CheckinRecord{}).
		Where("id = ? AND checkin_status = ? AND liveness_verified = ?",
			id, checkinDatamodel.StatusPendingFaceVerification, false).
		Updates(map[string]interface{}{
			"liveness_verified": true,
			"liveness_response": response,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
