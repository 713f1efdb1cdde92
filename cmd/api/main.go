package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"courtbook/internal/config"
	"courtbook/internal/database"
	"courtbook/internal/middleware"
	"courtbook/internal/modules/auth"
	"courtbook/internal/modules/booking"
	"courtbook/internal/modules/catalog"
	"courtbook/internal/modules/notification"
	"courtbook/internal/modules/schedule"
	"courtbook/internal/pkg/audit"
	"courtbook/internal/pkg/fcm"
	jwtsvc "courtbook/internal/pkg/jwt"
	"courtbook/internal/pkg/mq"
	"courtbook/internal/repository"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := repository.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	if err := db.AutoMigrate(&audit.Entry{}); err != nil {
		log.WithError(err).Fatal("audit migration failed")
	}

	userRepo := repository.NewUserRepository(db)
	venueRepo := repository.NewVenueRepository(db)
	sportRepo := repository.NewSportRepository(db)
	courtRepo := repository.NewCourtRepository(db)
	ruleRepo := repository.NewPricingRuleRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	tokenRepo := repository.NewDeviceTokenRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	auditSink := audit.NewSink(db, log)
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	var events booking.EventPublisher
	if cfg.AMQPURL != "" {
		pub, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.WithError(err).Fatal("rabbitmq connection failed")
		}
		defer pub.Close()
		events = pub
	} else {
		log.Warn("AMQP_URL not set, booking events disabled")
	}

	scheduleSvc := schedule.NewService(courtRepo, ruleRepo, slotRepo, log)
	bookingSvc := booking.NewService(bookingRepo, courtRepo, slotRepo, scheduleSvc, events, auditSink, log)
	catalogSvc := catalog.NewService(venueRepo, sportRepo, courtRepo, bookingRepo, auditSink, log)
	authSvc := auth.NewService(userRepo, j)

	var dispatcher *notification.Dispatcher
	if cfg.FCMCredentialsFile != "" {
		messenger, err := fcm.NewClient(context.Background(), cfg.FCMCredentialsFile)
		if err != nil {
			log.WithError(err).Fatal("fcm init failed")
		}
		dispatcher = notification.NewDispatcher(messenger, notifRepo, tokenRepo, userRepo, log)
	} else {
		log.Warn("FCM_CREDENTIALS_FILE not set, push dispatch disabled")
	}
	registry := notification.NewRegistry(tokenRepo, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		auth.NewHandler(authSvc).RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))

		booking.NewHandler(bookingSvc).RegisterRoutes(v1, protected)
		catalog.NewHandler(catalogSvc).RegisterRoutes(v1, protected)
		notification.NewHandler(dispatcher, registry).RegisterRoutes(protected)

		admin := protected.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		schedule.NewHandler(scheduleSvc).RegisterRoutes(v1, admin)
	}

	log.WithField("addr", cfg.HTTPAddr).Info("api listening")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
