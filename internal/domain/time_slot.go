package domain

import "time"

type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotBlocked     SlotStatus = "blocked"
	SlotMaintenance SlotStatus = "maintenance"
)

// TimeSlot is a fixed-duration bookable window carrying its resolved price.
// For a fixed court the pair (Date, StartTime) is unique. Slots are generated
// in bulk for a rolling horizon and only ever transition status; they are
// never deleted.
type TimeSlot struct {
	ID            int64      `json:"id"`
	CourtID       int64      `json:"court_id"`
	Date          string     `json:"date"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	Price         float64    `json:"price"`
	Status        SlotStatus `json:"status"`
	PricingRuleID *int64     `json:"pricing_rule_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsBookable reports whether the slot can still be taken as of now.
func (s TimeSlot) IsBookable(now time.Time) bool {
	return s.Status == SlotAvailable && s.Date >= now.UTC().Format(DateLayout)
}
