package schedule

import (
	"testing"

	"courtbook/internal/domain"

	"github.com/stretchr/testify/assert"
)

func rule(id int64, priority int, price float64, days []int, start, end string) domain.PricingRule {
	return domain.PricingRule{
		ID:                  id,
		CourtID:             1,
		DaysOfWeek:          days,
		StartTime:           start,
		EndTime:             end,
		PricePerHour:        price,
		SlotDurationMinutes: 60,
		IsActive:            true,
		Priority:            priority,
	}
}

func TestResolve_HighestPriorityWins(t *testing.T) {
	rules := []domain.PricingRule{
		rule(1, 1, 50, []int{1, 2, 3, 4, 5}, "08:00:00", "22:00:00"),
		rule(2, 10, 75, []int{1, 2, 3, 4, 5}, "18:00:00", "22:00:00"),
	}

	// 2026-01-05 is a Monday
	got := Resolve(rules, "2026-01-05", 1, "19:00:00", 40)
	assert.Equal(t, 75.0, got.PricePerHour)
	assert.Equal(t, int64(2), *got.RuleID)

	// Outside the evening window only the base rule matches
	got = Resolve(rules, "2026-01-05", 1, "10:00:00", 40)
	assert.Equal(t, 50.0, got.PricePerHour)
	assert.Equal(t, int64(1), *got.RuleID)
}

func TestResolve_PriorityTieLowestID(t *testing.T) {
	rules := []domain.PricingRule{
		rule(7, 5, 60, []int{6, 7}, "08:00:00", "22:00:00"),
		rule(3, 5, 90, []int{6, 7}, "08:00:00", "22:00:00"),
	}

	// Same result regardless of input order
	got := Resolve(rules, "2026-01-10", 6, "09:00:00", 40)
	assert.Equal(t, int64(3), *got.RuleID)
	assert.Equal(t, 90.0, got.PricePerHour)

	rules[0], rules[1] = rules[1], rules[0]
	got = Resolve(rules, "2026-01-10", 6, "09:00:00", 40)
	assert.Equal(t, int64(3), *got.RuleID)
}

func TestResolve_FallbackToBaseRate(t *testing.T) {
	rules := []domain.PricingRule{
		rule(1, 1, 50, []int{6, 7}, "08:00:00", "22:00:00"),
	}

	// Monday, weekend-only rule
	got := Resolve(rules, "2026-01-05", 1, "10:00:00", 42.5)
	assert.Equal(t, 42.5, got.PricePerHour)
	assert.Nil(t, got.RuleID)
}

func TestResolve_HalfOpenWindow(t *testing.T) {
	rules := []domain.PricingRule{
		rule(1, 1, 50, []int{1}, "08:00:00", "12:00:00"),
	}

	got := Resolve(rules, "2026-01-05", 1, "08:00:00", 40)
	assert.NotNil(t, got.RuleID, "window start is inclusive")

	got = Resolve(rules, "2026-01-05", 1, "12:00:00", 40)
	assert.Nil(t, got.RuleID, "window end is exclusive")
}

func TestResolve_ValidityBounds(t *testing.T) {
	r := rule(1, 1, 50, []int{1, 2, 3, 4, 5, 6, 7}, "08:00:00", "22:00:00")
	r.ValidFrom = "2026-06-01"
	r.ValidUntil = "2026-06-30"

	got := Resolve([]domain.PricingRule{r}, "2026-05-31", 7, "10:00:00", 40)
	assert.Nil(t, got.RuleID)

	got = Resolve([]domain.PricingRule{r}, "2026-06-01", 1, "10:00:00", 40)
	assert.NotNil(t, got.RuleID)

	got = Resolve([]domain.PricingRule{r}, "2026-06-30", 2, "10:00:00", 40)
	assert.NotNil(t, got.RuleID, "valid_until is inclusive")

	got = Resolve([]domain.PricingRule{r}, "2026-07-01", 3, "10:00:00", 40)
	assert.Nil(t, got.RuleID)
}

func TestResolve_InactiveRuleSkipped(t *testing.T) {
	r := rule(1, 10, 99, []int{1}, "08:00:00", "22:00:00")
	r.IsActive = false

	got := Resolve([]domain.PricingRule{r}, "2026-01-05", 1, "10:00:00", 40)
	assert.Nil(t, got.RuleID)
	assert.Equal(t, 40.0, got.PricePerHour)
}
