package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeCheckinCompleted = "checkin.completed"
	EventTypeCheckinFailed    = "checkin.failed"
)

type CheckinCompletedEvent struct {
	BaseEvent
	CheckinID     int64  `json:"checkin_id"`
	ReservationID int64  `json:"reservation_id"`
	GuestEmail    string `json:"guest_email"`
}

func NewCheckinCompletedEvent(checkinID, reservationID int64, guestEmail string) *CheckinCompletedEvent {
	return &CheckinCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCheckinCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"checkin_id":     checkinID,
				"reservation_id": reservationID,
				"guest_email":    guestEmail,
			},
		},
		CheckinID:     checkinID,
		ReservationID: reservationID,
		GuestEmail:    guestEmail,
	}
}

type CheckinFailedEvent struct {
	BaseEvent
	CheckinID     int64  `json:"checkin_id"`
	ReservationID int64  `json:"reservation_id"`
	Reason        string `json:"reason"`
}

func NewCheckinFailedEvent(checkinID, reservationID int64, reason string) *CheckinFailedEvent {
	return &CheckinFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCheckinFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"checkin_id":     checkinID,
				"reservation_id": reservationID,
				"reason":         reason,
			},
		},
		CheckinID:     checkinID,
		ReservationID: reservationID,
		Reason:        reason,
	}
}
