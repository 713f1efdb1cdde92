package domain

import "time"

type Venue struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description,omitempty"`
	Address     string     `json:"address"`
	City        string     `json:"city,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	OpeningTime string     `json:"opening_time,omitempty"`
	ClosingTime string     `json:"closing_time,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`

	Courts []Court `json:"courts,omitempty"`
}

type Sport struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
