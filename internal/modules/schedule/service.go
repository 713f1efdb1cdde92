package schedule

import (
	"context"
	"time"

	"courtbook/internal/domain"

	"github.com/sirupsen/logrus"
)

type Service struct {
	courts CourtRepository
	rules  PricingRuleRepository
	slots  TimeSlotRepository
	log    *logrus.Logger
}

func NewService(courts CourtRepository, rules PricingRuleRepository, slots TimeSlotRepository, log *logrus.Logger) *Service {
	return &Service{courts: courts, rules: rules, slots: slots, log: log}
}

// PriceFor resolves the unit price governing a court at a given date and time
// of day.
func (s *Service) PriceFor(ctx context.Context, courtID int64, date, timeOfDay string) (ResolvedPrice, error) {
	court, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		return ResolvedPrice{}, ErrCourtNotFound
	}
	day, err := domain.ParseDate(date)
	if err != nil {
		return ResolvedPrice{}, ErrValidation
	}
	if _, err := domain.ParseTimeOfDay(timeOfDay); err != nil {
		return ResolvedPrice{}, ErrValidation
	}

	rules, err := s.rules.ListActiveForCourt(ctx, courtID)
	if err != nil {
		return ResolvedPrice{}, err
	}
	return Resolve(rules, date, domain.ISOWeekday(day.Weekday()), timeOfDay, court.HourlyRate), nil
}

// GenerateAndStore generates slots for one court over an inclusive date range
// and bulk-inserts them. Existing slots for the same (court, date, start_time)
// are left untouched, so regeneration never resets a booked slot.
func (s *Service) GenerateAndStore(ctx context.Context, courtID int64, fromDate, toDate string) (int, error) {
	court, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		return 0, ErrCourtNotFound
	}
	rules, err := s.rules.ListActiveForCourt(ctx, courtID)
	if err != nil {
		return 0, err
	}

	slots, err := Generate(court, rules, fromDate, toDate)
	if err != nil {
		return 0, err
	}
	if len(slots) == 0 {
		return 0, nil
	}

	inserted, err := s.slots.BulkInsert(ctx, slots)
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"court_id": courtID,
		"from":     fromDate,
		"to":       toDate,
		"inserted": inserted,
	}).Info("slots generated")
	return inserted, nil
}

// EnsureHorizon tops up the rolling slot horizon for every active court. For
// each court it resumes from the day after the last generated date, so the
// job is cheap to run daily and safe to run twice.
func (s *Service) EnsureHorizon(ctx context.Context, now time.Time, days int) error {
	ids, err := s.courts.ListActiveIDs(ctx)
	if err != nil {
		return err
	}

	today := now.UTC().Format(domain.DateLayout)
	end := HorizonEnd(now, days)

	for _, id := range ids {
		from := today
		last, err := s.slots.LastGeneratedDate(ctx, id)
		if err != nil {
			return err
		}
		if last >= from {
			d, err := domain.ParseDate(last)
			if err != nil {
				return err
			}
			from = d.AddDate(0, 0, 1).Format(domain.DateLayout)
		}
		if from > end {
			continue
		}
		if _, err := s.GenerateAndStore(ctx, id, from, end); err != nil {
			s.log.WithError(err).WithField("court_id", id).Error("horizon generation failed")
			return err
		}
	}
	return nil
}

// CreateRule validates and stores a pricing rule.
func (s *Service) CreateRule(ctx context.Context, rule *domain.PricingRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if _, err := s.courts.GetByID(ctx, rule.CourtID); err != nil {
		return ErrCourtNotFound
	}
	return s.rules.Create(ctx, rule)
}

func (s *Service) UpdateRule(ctx context.Context, rule *domain.PricingRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.rules.Update(ctx, rule)
}

func (s *Service) DeactivateRule(ctx context.Context, id int64) error {
	return s.rules.Deactivate(ctx, id)
}

func (s *Service) ListRules(ctx context.Context, courtID int64) ([]domain.PricingRule, error) {
	return s.rules.ListActiveForCourt(ctx, courtID)
}

func validateRule(rule *domain.PricingRule) error {
	if rule.CourtID <= 0 || rule.PricePerHour < 0 || rule.SlotDurationMinutes <= 0 {
		return ErrValidation
	}
	if rule.StartTime >= rule.EndTime {
		return ErrValidation
	}
	if _, err := domain.ParseTimeOfDay(rule.StartTime); err != nil {
		return ErrValidation
	}
	if _, err := domain.ParseTimeOfDay(rule.EndTime); err != nil {
		return ErrValidation
	}
	if len(rule.DaysOfWeek) == 0 {
		return ErrValidation
	}
	for _, d := range rule.DaysOfWeek {
		if d < 1 || d > 7 {
			return ErrValidation
		}
	}
	if rule.ValidFrom != "" {
		if _, err := domain.ParseDate(rule.ValidFrom); err != nil {
			return ErrValidation
		}
	}
	if rule.ValidUntil != "" {
		if _, err := domain.ParseDate(rule.ValidUntil); err != nil {
			return ErrValidation
		}
	}
	return nil
}
