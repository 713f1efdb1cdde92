package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"courtbook/internal/domain"

	"gorm.io/gorm"
)

type PricingRuleRepository struct {
	db *gorm.DB
}

func NewPricingRuleRepository(db *gorm.DB) *PricingRuleRepository {
	return &PricingRuleRepository{db: db}
}

type pricingRuleModel struct {
	ID                  int64     `gorm:"column:id;primaryKey"`
	CourtID             int64     `gorm:"column:court_id;index"`
	Name                string    `gorm:"column:name"`
	DaysOfWeek          []byte    `gorm:"column:days_of_week"`
	StartTime           string    `gorm:"column:start_time"`
	EndTime             string    `gorm:"column:end_time"`
	PricePerHour        float64   `gorm:"column:price_per_hour"`
	SlotDurationMinutes int       `gorm:"column:slot_duration_minutes"`
	ValidFrom           *string   `gorm:"column:valid_from"`
	ValidUntil          *string   `gorm:"column:valid_until"`
	IsActive            bool      `gorm:"column:is_active"`
	Priority            int       `gorm:"column:priority"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (pricingRuleModel) TableName() string { return "pricing_rules" }

func toDomainRule(m pricingRuleModel) (domain.PricingRule, error) {
	var days []int
	if len(m.DaysOfWeek) > 0 {
		if err := json.Unmarshal(m.DaysOfWeek, &days); err != nil {
			return domain.PricingRule{}, fmt.Errorf("decode days_of_week for rule %d: %w", m.ID, err)
		}
	}

	var validFrom, validUntil string
	if m.ValidFrom != nil {
		validFrom = *m.ValidFrom
	}
	if m.ValidUntil != nil {
		validUntil = *m.ValidUntil
	}

	return domain.PricingRule{
		ID:                  m.ID,
		CourtID:             m.CourtID,
		Name:                m.Name,
		DaysOfWeek:          days,
		StartTime:           m.StartTime,
		EndTime:             m.EndTime,
		PricePerHour:        m.PricePerHour,
		SlotDurationMinutes: m.SlotDurationMinutes,
		ValidFrom:           validFrom,
		ValidUntil:          validUntil,
		IsActive:            m.IsActive,
		Priority:            m.Priority,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}, nil
}

func toRuleModel(r *domain.PricingRule) (pricingRuleModel, error) {
	days, err := json.Marshal(r.DaysOfWeek)
	if err != nil {
		return pricingRuleModel{}, err
	}

	var validFrom, validUntil *string
	if r.ValidFrom != "" {
		v := r.ValidFrom
		validFrom = &v
	}
	if r.ValidUntil != "" {
		v := r.ValidUntil
		validUntil = &v
	}

	return pricingRuleModel{
		ID:                  r.ID,
		CourtID:             r.CourtID,
		Name:                r.Name,
		DaysOfWeek:          days,
		StartTime:           r.StartTime,
		EndTime:             r.EndTime,
		PricePerHour:        r.PricePerHour,
		SlotDurationMinutes: r.SlotDurationMinutes,
		ValidFrom:           validFrom,
		ValidUntil:          validUntil,
		IsActive:            r.IsActive,
		Priority:            r.Priority,
	}, nil
}

func (r *PricingRuleRepository) Create(ctx context.Context, rule *domain.PricingRule) error {
	m, err := toRuleModel(rule)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	out, err := toDomainRule(m)
	if err != nil {
		return err
	}
	*rule = out
	return nil
}

func (r *PricingRuleRepository) Update(ctx context.Context, rule *domain.PricingRule) error {
	m, err := toRuleModel(rule)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&pricingRuleModel{}).Where("id = ?", rule.ID).Updates(&m).Error
}

func (r *PricingRuleRepository) GetByID(ctx context.Context, id int64) (*domain.PricingRule, error) {
	var m pricingRuleModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	rule, err := toDomainRule(m)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListActiveForCourt returns active rules for a court ordered by priority
// descending then ID ascending, the resolver's precedence order.
func (r *PricingRuleRepository) ListActiveForCourt(ctx context.Context, courtID int64) ([]domain.PricingRule, error) {
	var rows []pricingRuleModel
	err := r.db.WithContext(ctx).
		Where("court_id = ? AND is_active = ?", courtID, true).
		Order("priority DESC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.PricingRule, 0, len(rows))
	for _, m := range rows {
		rule, err := toDomainRule(m)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

func (r *PricingRuleRepository) Deactivate(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&pricingRuleModel{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
