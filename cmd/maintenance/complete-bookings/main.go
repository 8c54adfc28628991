package main

import (
	"context"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/config"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/services"
	"github.com/tripmarket/marketplace-backend/pkg/events"
	"github.com/tripmarket/marketplace-backend/pkg/mailer"
)

// complete-bookings runs the booking completion job once, outside the server's cron schedule
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	mail, err := mailer.New(mailer.Config{
		Provider:         cfg.Mail.Provider,
		FromName:         cfg.Mail.FromName,
		FromAddress:      cfg.Mail.FromAddress,
		SMTPHost:         cfg.Mail.SMTPHost,
		SMTPPort:         cfg.Mail.SMTPPort,
		SMTPUsername:     cfg.Mail.SMTPUsername,
		SMTPPassword:     cfg.Mail.SMTPPassword,
		MailerSendAPIKey: cfg.Mail.MailerSendAPIKey,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to configure mailer: %v", err)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to NATS: %v", err)
		}
		publisher = natsPublisher
	}
	defer publisher.Close()

	dates := database.NewTripDateRepository(db)
	bookings := services.NewBookingService(
		database.NewBookingRepository(db, dates),
		database.NewTripRepository(db),
		dates,
		database.NewProviderRepository(db),
		database.NewUserRepository(db),
		services.NewNotificationService(mail, publisher, logger),
		services.NoopAuditor{},
		cfg.Booking,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	completed, err := bookings.CompleteFinishedBookings(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Booking completion failed")
	}
	logger.WithField("completed", completed).Info("Booking completion finished")
}
