package checkin

import (
	"time"

	"gorm.io/datatypes"
)

// Check-in statuses. PENDING exists only conceptually ("no record yet");
// records are created directly in IN_PROGRESS.
const (
	StatusInProgress              = "IN_PROGRESS"
	StatusPassportUploaded        = "PASSPORT_UPLOADED"
	StatusPassportVerified        = "PASSPORT_VERIFIED"
	StatusPendingFaceVerification = "PENDING_FACE_VERIFICATION"
	StatusCompleted               = "COMPLETED"
	StatusFailed                  = "FAILED"
	StatusCancelled               = "CANCELLED"
)

// ActiveStatuses are the non-terminal statuses; at most one record per
// reservation may hold one of these at any time.
var ActiveStatuses = []string{
	StatusInProgress,
	StatusPassportUploaded,
	StatusPassportVerified,
	StatusPendingFaceVerification,
}

func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

type CheckinRecord struct {
	ID                 int64             `gorm:"primaryKey"`
	ReservationID      int64             `gorm:"column:reservation_id;not null;index;uniqueIndex:idx_checkin_records_active_reservation,where:checkin_status IN ('IN_PROGRESS','PASSPORT_UPLOADED','PASSPORT_VERIFIED','PENDING_FACE_VERIFICATION')"`
	GuestEmail         string            `gorm:"column:guest_email;not null"`
	PassportImagePath  *string           `gorm:"column:passport_image_path"`
	PassportData       datatypes.JSONMap `gorm:"column:passport_data;type:jsonb"`
	PassportVerified   bool              `gorm:"column:passport_verified;default:false"`
	LivenessSessionID  *string           `gorm:"column:liveness_session_id"`
	LivenessResponse   *string           `gorm:"column:liveness_response"`
	LivenessVerified   bool              `gorm:"column:liveness_verified;default:false"`
	VerificationErrors *string           `gorm:"column:verification_errors"`
	Status             string            `gorm:"column:checkin_status;default:IN_PROGRESS"`
	StartedAt          time.Time         `gorm:"column:started_at"`
	CompletedAt        *time.Time        `gorm:"column:completed_at"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (CheckinRecord) TableName() string {
	return "checkin_records"
}
