package checkin

import (
	"time"

	"gorm.io/datatypes"

	checkinDatamodel "github.com/canermastan/hotel-operations/internal/core/datamodel/checkin"
)

const (
	StatusInProgress              = checkinDatamodel.StatusInProgress
	StatusPassportUploaded        = checkinDatamodel.StatusPassportUploaded
	StatusPassportVerified        = checkinDatamodel.StatusPassportVerified
	StatusPendingFaceVerification = checkinDatamodel.StatusPendingFaceVerification
	StatusCompleted               = checkinDatamodel.StatusCompleted
	StatusFailed                  = checkinDatamodel.StatusFailed
	StatusCancelled               = checkinDatamodel.StatusCancelled
)

type CheckinRecord struct {
	ID                 int64                  `json:"id"`
	ReservationID      int64                  `json:"reservation_id"`
	GuestEmail         string                 `json:"guest_email"`
	PassportImagePath  *string                `json:"passport_image_path,omitempty"`
	PassportData       map[string]interface{} `json:"passport_data,omitempty"`
	PassportVerified   bool                   `json:"passport_verified"`
	LivenessSessionID  *string                `json:"liveness_session_id,omitempty"`
	LivenessResponse   *string                `json:"-"`
	LivenessVerified   bool                   `json:"liveness_verified"`
	VerificationErrors *string                `json:"verification_errors,omitempty"`
	Status             string                 `json:"status"`
	StartedAt          time.Time              `json:"started_at"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// ActiveStatuses are the non-terminal statuses; the at-most-one-active
// invariant and cancellation both key off this set.
func ActiveStatuses() []string {
	return append([]string(nil), checkinDatamodel.ActiveStatuses...)
}

func (r *CheckinRecord) IsTerminal() bool {
	return checkinDatamodel.IsTerminal(r.Status)
}

// CanUploadPassport: re-upload is allowed until verification finishes.
func (r *CheckinRecord) CanUploadPassport() bool {
	return r.Status == StatusInProgress || r.Status == StatusPassportUploaded
}

func ToDataModel(r *CheckinRecord) *checkinDatamodel.CheckinRecord {
	return &checkinDatamodel.CheckinRecord{
		ID:                 r.ID,
		ReservationID:      r.ReservationID,
		GuestEmail:         r.GuestEmail,
		PassportImagePath:  r.PassportImagePath,
		PassportData:       datatypes.JSONMap(r.PassportData),
		PassportVerified:   r.PassportVerified,
		LivenessSessionID:  r.LivenessSessionID,
		LivenessResponse:   r.LivenessResponse,
		LivenessVerified:   r.LivenessVerified,
		VerificationErrors: r.VerificationErrors,
		Status:             r.Status,
		StartedAt:          r.StartedAt,
		CompletedAt:        r.CompletedAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func FromDataModel(r *checkinDatamodel.CheckinRecord) *CheckinRecord {
	return &CheckinRecord{
		ID:                 r.ID,
		ReservationID:      r.ReservationID,
		GuestEmail:         r.GuestEmail,
		PassportImagePath:  r.PassportImagePath,
		PassportData:       map[string]interface{}(r.PassportData),
		PassportVerified:   r.PassportVerified,
		LivenessSessionID:  r.LivenessSessionID,
		LivenessResponse:   r.LivenessResponse,
		LivenessVerified:   r.LivenessVerified,
		VerificationErrors: r.VerificationErrors,
		Status:             r.Status,
		StartedAt:          r.StartedAt,
		CompletedAt:        r.CompletedAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func FromDataModelSlice(records []*checkinDatamodel.CheckinRecord) []*CheckinRecord {
	result := make([]*CheckinRecord, len(records))
	for i, r := range records {
		result[i] = FromDataModel(r)
	}
	return result
}
