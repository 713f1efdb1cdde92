package schedule

import (
	"math"
	"sort"
	"time"

	"courtbook/internal/domain"
)

// SlotPrice pro-rates an hourly price to a slot duration, rounded to 2dp.
func SlotPrice(pricePerHour float64, durationMinutes int) float64 {
	return math.Round(pricePerHour*float64(durationMinutes)/60*100) / 100
}

// Generate produces every candidate slot for a court across an inclusive date
// range. For each date, every rule that applies walks its half-open window in
// steps of the rule's slot duration; a trailing step that would overrun the
// window is dropped rather than truncated. When two rules emit slots with the
// same start time on the same date, the higher-priority rule's slot is kept
// (lowest rule ID on a priority tie). Output is deterministic: sorted by
// date then start time.
func Generate(court *domain.Court, rules []domain.PricingRule, fromDate, toDate string) ([]domain.TimeSlot, error) {
	from, err := domain.ParseDate(fromDate)
	if err != nil {
		return nil, err
	}
	to, err := domain.ParseDate(toDate)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, ErrBadDateRange
	}

	type slotKey struct {
		date  string
		start string
	}
	winners := make(map[slotKey]domain.PricingRule)

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		date := day.Format(domain.DateLayout)
		weekday := domain.ISOWeekday(day.Weekday())

		for _, r := range rules {
			if r.SlotDurationMinutes <= 0 || !r.AppliesOn(date, weekday) {
				continue
			}
			startMin, err := domain.ParseTimeOfDay(r.StartTime)
			if err != nil {
				return nil, err
			}
			endMin, err := domain.ParseTimeOfDay(r.EndTime)
			if err != nil {
				return nil, err
			}

			for cur := startMin; cur+r.SlotDurationMinutes <= endMin; cur += r.SlotDurationMinutes {
				key := slotKey{date: date, start: domain.FormatTimeOfDay(cur)}
				if prev, ok := winners[key]; ok {
					if prev.Priority > r.Priority ||
						(prev.Priority == r.Priority && prev.ID < r.ID) {
						continue
					}
				}
				winners[key] = r
			}
		}
	}

	slots := make([]domain.TimeSlot, 0, len(winners))
	for key, r := range winners {
		startMin, _ := domain.ParseTimeOfDay(key.start)
		ruleID := r.ID
		slots = append(slots, domain.TimeSlot{
			CourtID:       court.ID,
			Date:          key.date,
			StartTime:     key.start,
			EndTime:       domain.FormatTimeOfDay(startMin + r.SlotDurationMinutes),
			Price:         SlotPrice(r.PricePerHour, r.SlotDurationMinutes),
			Status:        domain.SlotAvailable,
			PricingRuleID: &ruleID,
		})
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	return slots, nil
}

// HorizonEnd returns the last date covered by a rolling horizon of n days
// starting today.
func HorizonEnd(now time.Time, days int) string {
	return now.UTC().AddDate(0, 0, days).Format(domain.DateLayout)
}
