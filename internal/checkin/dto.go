package checkin

import (
	"github.com/canermastan/hotel-operations/internal/core/common/validation"
)

type StartCheckinRequest struct {
	ReservationID int64  `json:"reservation_id"`
	GuestEmail    string `json:"guest_email"`
}

func (r *StartCheckinRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("reservation_id", r.ReservationID).Required()
	validator.Field("guest_email", r.GuestEmail).Required().Email()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type CompleteLivenessRequest struct {
	ProviderPayload string `json:"provider_payload"`
	Verified        bool   `json:"verified"`
}

func (r *CompleteLivenessRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("provider_payload", r.ProviderPayload).MaxLength(65536)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// PassportStatusResponse is the polling view of the asynchronous passport
// verification step.
type PassportStatusResponse struct {
	CheckinID        int64                  `json:"checkin_id"`
	Status           string                 `json:"status"`
	PassportUploaded bool                   `json:"passport_uploaded"`
	PassportVerified bool                   `json:"passport_verified"`
	PassportData     map[string]interface{} `json:"passport_data,omitempty"`
	Errors           string                 `json:"errors,omitempty"`
}

type LivenessSessionResponse struct {
	CheckinID int64  `json:"checkin_id"`
	AppID     string `json:"app_id"`
	SessionID string `json:"session_id"`
}
