package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingPaid      BookingStatus = "paid"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// BookingNumberPrefix builds the "BK-<year>-" prefix for a given time.
func BookingNumberPrefix(t time.Time) string {
	return "BK-" + t.UTC().Format("2006") + "-"
}

type Booking struct {
	ID             int64         `json:"id"`
	BookingNumber  string        `json:"booking_number"`
	UserID         int64         `json:"user_id" validate:"required"`
	CourtID        int64         `json:"court_id" validate:"required"`
	BookingDate    string        `json:"booking_date" validate:"required"`
	StartTime      string        `json:"start_time" validate:"required"`
	EndTime        string        `json:"end_time" validate:"required"`
	TotalAmount    float64       `json:"total_amount"`
	DiscountAmount float64       `json:"discount_amount"`
	FinalAmount    float64       `json:"final_amount"`
	Status         BookingStatus `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	Notes          string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`

	CancellationReason string `json:"cancellation_reason,omitempty" gorm:"type:text"`

	// Relations
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Court *Court `json:"court,omitempty" gorm:"foreignKey:CourtID"`
}

// IsActive reports whether the booking still occupies its window.
func (b Booking) IsActive() bool {
	return b.Status != BookingCancelled
}

// IsCancellable allows cancellation only for pending/confirmed/paid bookings
// starting more than two hours from now.
func (b Booking) IsCancellable(now time.Time) bool {
	switch b.Status {
	case BookingPending, BookingConfirmed, BookingPaid:
	default:
		return false
	}
	startAt, err := CombineDateTime(b.BookingDate, b.StartTime)
	if err != nil {
		return false
	}
	return now.UTC().Add(2 * time.Hour).Before(startAt)
}

// NumberSuffix returns the numeric part of a booking number, or "" when the
// number does not carry the given prefix.
func NumberSuffix(bookingNumber, prefix string) string {
	if !strings.HasPrefix(bookingNumber, prefix) {
		return ""
	}
	return bookingNumber[len(prefix):]
}
