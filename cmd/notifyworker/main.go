package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"courtbook/internal/config"
	"courtbook/internal/database"
	"courtbook/internal/modules/booking"
	"courtbook/internal/modules/notification"
	"courtbook/internal/pkg/fcm"
	"courtbook/internal/pkg/mq"
	"courtbook/internal/repository"
)

// notifyworker consumes booking events from the broker and pushes a
// notification to the booking owner's devices.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}
	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the notify worker")
	}
	if cfg.FCMCredentialsFile == "" {
		log.Fatal("FCM_CREDENTIALS_FILE is required for the notify worker")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	messenger, err := fcm.NewClient(ctx, cfg.FCMCredentialsFile)
	if err != nil {
		log.WithError(err).Fatal("fcm init failed")
	}
	dispatcher := notification.NewDispatcher(
		messenger,
		repository.NewNotificationRepository(db),
		repository.NewDeviceTokenRepository(db),
		repository.NewUserRepository(db),
		log,
	)

	consumer, err := mq.NewConsumer(cfg.AMQPURL, cfg.AMQPExchange, "booking-notifications", []string{"booking.*"})
	if err != nil {
		log.WithError(err).Fatal("rabbitmq connection failed")
	}
	defer consumer.Close()

	deliveries, err := consumer.Deliveries(ctx)
	if err != nil {
		log.WithError(err).Fatal("consume failed")
	}

	log.Info("notify worker listening")
	for d := range deliveries {
		var ev booking.BookingEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.WithError(err).Warn("dropping malformed event")
			_ = d.Nack(false, false)
			continue
		}

		req := requestFor(ev)
		_, err := dispatcher.Dispatch(ctx, 0, req)
		switch {
		case err == nil:
			log.WithFields(logrus.Fields{
				"event":   ev.Type,
				"booking": ev.BookingNumber,
				"user_id": ev.UserID,
			}).Info("push dispatched")
			_ = d.Ack(false)
		case errors.Is(err, notification.ErrNoTargets):
			// User has no registered devices. Nothing to deliver.
			_ = d.Ack(false)
		default:
			log.WithError(err).WithField("booking", ev.BookingNumber).Error("dispatch failed, requeueing")
			_ = d.Nack(false, true)
		}
	}

	log.Info("notify worker stopped")
}

func requestFor(ev booking.BookingEvent) notification.DispatchRequest {
	title := "Booking update"
	body := fmt.Sprintf("Booking %s for %s %s has been updated.", ev.BookingNumber, ev.BookingDate, ev.StartTime)
	switch ev.Type {
	case booking.EventBookingCreated:
		title = "Booking confirmed"
		body = fmt.Sprintf("Your booking %s on %s at %s is confirmed.", ev.BookingNumber, ev.BookingDate, ev.StartTime)
	case booking.EventBookingCancelled:
		title = "Booking cancelled"
		body = fmt.Sprintf("Your booking %s on %s at %s was cancelled.", ev.BookingNumber, ev.BookingDate, ev.StartTime)
	}
	return notification.DispatchRequest{
		Title:         title,
		Body:          body,
		Type:          ev.Type,
		TargetUserIDs: []int64{ev.UserID},
		Data: map[string]string{
			"event_id":       ev.EventID,
			"booking_id":     fmt.Sprintf("%d", ev.BookingID),
			"booking_number": ev.BookingNumber,
		},
	}
}
