package schedule

import (
	"courtbook/internal/domain"
)

// ResolvedPrice is the outcome of pricing resolution for one instant: the
// unit price per hour and, when a rule matched, its ID.
type ResolvedPrice struct {
	PricePerHour float64
	RuleID       *int64
}

// Resolve picks the pricing rule governing the given court instant. A rule
// matches when it is active, the date falls inside its validity bounds, the
// date's ISO weekday is listed, and the time of day lies in the rule's
// half-open window. Among matches the highest priority wins; equal priorities
// fall back to the lowest rule ID so resolution stays deterministic. When
// nothing matches the court's base hourly rate applies with no rule attached.
func Resolve(rules []domain.PricingRule, date string, isoWeekday int, timeOfDay string, baseHourlyRate float64) ResolvedPrice {
	var best *domain.PricingRule
	for i := range rules {
		r := &rules[i]
		if !r.AppliesOn(date, isoWeekday) || !r.CoversTime(timeOfDay) {
			continue
		}
		if best == nil || r.Priority > best.Priority ||
			(r.Priority == best.Priority && r.ID < best.ID) {
			best = r
		}
	}
	if best == nil {
		return ResolvedPrice{PricePerHour: baseHourlyRate}
	}
	id := best.ID
	return ResolvedPrice{PricePerHour: best.PricePerHour, RuleID: &id}
}
