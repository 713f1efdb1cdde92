package domain

import "time"

// PricingRule is a day/time-window scoped price policy for a court. Windows
// are half-open [StartTime, EndTime); DaysOfWeek uses ISO numbering
// (Monday=1 .. Sunday=7). Rules on the same court may overlap; the resolver
// picks one by priority.
type PricingRule struct {
	ID                  int64   `json:"id"`
	CourtID             int64   `json:"court_id" validate:"required"`
	Name                string  `json:"name,omitempty"`
	DaysOfWeek          []int   `json:"days_of_week" validate:"required,min=1"`
	StartTime           string  `json:"start_time" validate:"required"`
	EndTime             string  `json:"end_time" validate:"required"`
	PricePerHour        float64 `json:"price_per_hour" validate:"required,gte=0"`
	SlotDurationMinutes int     `json:"slot_duration_minutes" validate:"required,gt=0"`
	ValidFrom           string  `json:"valid_from,omitempty"`
	ValidUntil          string  `json:"valid_until,omitempty"`
	IsActive            bool    `json:"is_active"`
	Priority            int     `json:"priority"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// AppliesOn reports whether the rule covers the given calendar date:
// active, date inside [ValidFrom, ValidUntil] (open sides unbounded) and
// the ISO day of week listed in DaysOfWeek.
func (r PricingRule) AppliesOn(date string, isoWeekday int) bool {
	if !r.IsActive {
		return false
	}
	if r.ValidFrom != "" && date < r.ValidFrom {
		return false
	}
	if r.ValidUntil != "" && date > r.ValidUntil {
		return false
	}
	for _, d := range r.DaysOfWeek {
		if d == isoWeekday {
			return true
		}
	}
	return false
}

// CoversTime reports whether a time of day falls in the rule's half-open window.
func (r PricingRule) CoversTime(timeOfDay string) bool {
	return timeOfDay >= r.StartTime && timeOfDay < r.EndTime
}
