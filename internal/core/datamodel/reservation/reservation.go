package reservation

import "time"

// Reservation payment status values. FAILED is deliberately not a
// reservation-level state: a declined charge leaves the reservation unpaid.
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusPaid     = "PAID"
	PaymentStatusRefunded = "REFUNDED"
)

const (
	StatusConfirmed = "CONFIRMED"
	StatusCheckedIn = "CHECKED_IN"
	StatusCancelled = "CANCELLED"
)

type Reservation struct {
	ID                   int64      `gorm:"primaryKey"`
	GuestFullName        string     `gorm:"column:guest_full_name;not null"`
	Email                string     `gorm:"column:email;not null"`
	RoomNumber           string     `gorm:"column:room_number"`
	TotalPriceCents      int64      `gorm:"column:total_price_cents;not null"`
	Currency             string     `gorm:"column:currency;default:USD"`
	Status               string     `gorm:"column:status;default:CONFIRMED"`
	PaymentStatus        string     `gorm:"column:payment_status;default:PENDING"`
	PaymentTransactionID *string    `gorm:"column:payment_transaction_id"`
	CheckinDate          time.Time  `gorm:"column:checkin_date"`
	CheckoutDate         time.Time  `gorm:"column:checkout_date"`
	CheckedInAt          *time.Time `gorm:"column:checked_in_at"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Reservation) TableName() string {
	return "reservations"
}
