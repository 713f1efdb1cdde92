package main

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"courtbook/internal/config"
	"courtbook/internal/database"
	"courtbook/internal/domain"
	"courtbook/internal/modules/schedule"
	"courtbook/internal/repository"
)

// seed populates a fresh database with demo accounts, one venue with three
// courts and the standard pricing rules, then generates the initial slot
// horizon. Running it against an already seeded database is a no-op.
func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := repository.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	venues := repository.NewVenueRepository(db)
	sports := repository.NewSportRepository(db)
	courts := repository.NewCourtRepository(db)
	rules := repository.NewPricingRuleRepository(db)

	if _, err := users.GetByEmail(ctx, "admin@courtbook.local"); err == nil {
		log.Info("database already seeded")
		return
	}

	seedUser := func(email, name string, role domain.UserRole) *domain.User {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			log.WithError(err).Fatal("hash password")
		}
		u := &domain.User{Email: email, PasswordHash: string(hash), Name: name, Role: role}
		if err := users.Create(ctx, u); err != nil {
			log.WithError(err).WithField("email", email).Fatal("create user")
		}
		return u
	}

	seedUser("admin@courtbook.local", "Admin", domain.RoleAdmin)
	owner := seedUser("owner@courtbook.local", "Venue Owner", domain.RoleVenueOwner)
	seedUser("player@courtbook.local", "Player One", domain.RolePlayer)

	venue := &domain.Venue{
		OwnerID:     owner.ID,
		Name:        "Riverside Sports Center",
		Address:     "12 Riverside Road",
		City:        "Almaty",
		OpeningTime: "08:00:00",
		ClosingTime: "23:00:00",
		IsActive:    true,
	}
	if err := venues.Create(ctx, venue); err != nil {
		log.WithError(err).Fatal("create venue")
	}

	sportIDs := map[string]int64{}
	for _, name := range []string{"Tennis", "Badminton", "Futsal"} {
		s := &domain.Sport{Name: name, IsActive: true}
		if err := sports.Create(ctx, s); err != nil {
			log.WithError(err).WithField("sport", name).Fatal("create sport")
		}
		sportIDs[name] = s.ID
	}

	courtSpecs := []struct {
		name    string
		sport   string
		surface domain.SurfaceType
		rate    float64
	}{
		{"Tennis Court A", "Tennis", domain.SurfaceSynthetic, 50},
		{"Badminton Hall 1", "Badminton", domain.SurfaceWood, 30},
		{"Futsal Arena", "Futsal", domain.SurfaceSynthetic, 80},
	}
	var courtIDs []int64
	for _, cs := range courtSpecs {
		c := &domain.Court{
			VenueID:     venue.ID,
			SportID:     sportIDs[cs.sport],
			Name:        cs.name,
			SurfaceType: cs.surface,
			HourlyRate:  cs.rate,
			IsActive:    true,
		}
		if err := courts.Create(ctx, c); err != nil {
			log.WithError(err).WithField("court", cs.name).Fatal("create court")
		}
		courtIDs = append(courtIDs, c.ID)
	}

	weekdays := []int{1, 2, 3, 4, 5}
	weekend := []int{6, 7}
	for i, id := range courtIDs {
		base := courtSpecs[i].rate
		ruleSpecs := []domain.PricingRule{
			{
				CourtID: id, Name: "Weekday daytime", DaysOfWeek: weekdays,
				StartTime: "08:00:00", EndTime: "17:00:00",
				PricePerHour: round2(base * 0.8), SlotDurationMinutes: 90,
				Priority: 1, IsActive: true,
			},
			{
				CourtID: id, Name: "Weekday evening", DaysOfWeek: weekdays,
				StartTime: "17:00:00", EndTime: "23:00:00",
				PricePerHour: round2(base * 1.2), SlotDurationMinutes: 90,
				Priority: 2, IsActive: true,
			},
			{
				CourtID: id, Name: "Weekend", DaysOfWeek: weekend,
				StartTime: "08:00:00", EndTime: "23:00:00",
				PricePerHour: round2(base * 1.5), SlotDurationMinutes: 90,
				Priority: 3, IsActive: true,
			},
		}
		for i := range ruleSpecs {
			if err := rules.Create(ctx, &ruleSpecs[i]); err != nil {
				log.WithError(err).Fatal("create pricing rule")
			}
		}
	}

	sched := schedule.NewService(courts, rules, repository.NewTimeSlotRepository(db), log)
	if err := sched.EnsureHorizon(ctx, time.Now(), cfg.SlotHorizonDays); err != nil {
		log.WithError(err).Fatal("slot generation failed")
	}

	log.WithFields(logrus.Fields{
		"venue":  venue.Name,
		"courts": len(courtIDs),
	}).Info("seed complete")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
