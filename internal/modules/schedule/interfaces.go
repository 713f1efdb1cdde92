package schedule

import (
	"context"

	"courtbook/internal/domain"
)

// CourtRepository provides the court data the generator needs.
type CourtRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
	ListActiveIDs(ctx context.Context) ([]int64, error)
}

// PricingRuleRepository loads the rule set for a court.
type PricingRuleRepository interface {
	ListActiveForCourt(ctx context.Context, courtID int64) ([]domain.PricingRule, error)
	GetByID(ctx context.Context, id int64) (*domain.PricingRule, error)
	Create(ctx context.Context, rule *domain.PricingRule) error
	Update(ctx context.Context, rule *domain.PricingRule) error
	Deactivate(ctx context.Context, id int64) error
}

// TimeSlotRepository persists generated slots.
type TimeSlotRepository interface {
	BulkInsert(ctx context.Context, slots []domain.TimeSlot) (int, error)
	LastGeneratedDate(ctx context.Context, courtID int64) (string, error)
}
