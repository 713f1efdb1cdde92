package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"courtbook/internal/config"
	"courtbook/internal/database"
	"courtbook/internal/modules/schedule"
	"courtbook/internal/repository"
)

// slotgen tops up the rolling slot horizon for every active court. It is
// idempotent, so running it from cron more than once a day is safe.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

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

	svc := schedule.NewService(
		repository.NewCourtRepository(db),
		repository.NewPricingRuleRepository(db),
		repository.NewTimeSlotRepository(db),
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := svc.EnsureHorizon(ctx, time.Now(), cfg.SlotHorizonDays); err != nil {
		log.WithError(err).Fatal("horizon generation failed")
	}
	log.WithField("days", cfg.SlotHorizonDays).Info("slot horizon ensured")
}
