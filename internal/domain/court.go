package domain

import "time"

type SurfaceType string

const (
	SurfaceGrass     SurfaceType = "grass"
	SurfaceSynthetic SurfaceType = "synthetic"
	SurfaceWood      SurfaceType = "wood"
	SurfaceConcrete  SurfaceType = "concrete"
)

type Court struct {
	ID          int64       `json:"id"`
	VenueID     int64       `json:"venue_id" validate:"required"`
	SportID     int64       `json:"sport_id" validate:"required"`
	Name        string      `json:"name" validate:"required"`
	Code        string      `json:"code,omitempty"`
	Description string      `json:"description,omitempty"`
	SurfaceType SurfaceType `json:"surface_type,omitempty"`
	HourlyRate  float64     `json:"hourly_rate" validate:"required,gte=0"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Relations
	Venue        *Venue        `json:"venue,omitempty"`
	Sport        *Sport        `json:"sport,omitempty"`
	PricingRules []PricingRule `json:"pricing_rules,omitempty"`
}
