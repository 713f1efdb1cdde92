package booking

import (
	"time"

	"courtbook/internal/domain"
)

type CreateBookingRequest struct {
	CourtID     int64  `json:"court_id" binding:"required"`
	BookingDate string `json:"booking_date" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	Notes       string `json:"notes"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// DayAvailability is one date's worth of open slots for a court.
type DayAvailability struct {
	Date  string            `json:"date"`
	Slots []domain.TimeSlot `json:"slots"`
}

// Event types published to the broker when the ledger changes.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is the broker payload for ledger changes. EventID makes
// redelivery detectable on the consumer side.
type BookingEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	BookingID     int64     `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	UserID        int64     `json:"user_id"`
	CourtID       int64     `json:"court_id"`
	BookingDate   string    `json:"booking_date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	FinalAmount   float64   `json:"final_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}
