package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/config"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/pkg/validator"
)

// approve-provider marks a provider account as approved so it may publish trips.
// Approval has no HTTP surface; operators run this against the production database.
func main() {
	var email string
	flag.StringVar(&email, "email", "", "email address of the provider account to approve")
	flag.Parse()

	email = validator.Normalize(email)
	if email == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	if err := database.NewProviderRepository(db).ApproveByEmail(email); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			logger.WithField("email", email).Fatal("No provider account with that email")
		}
		logger.WithError(err).Fatal("Failed to approve provider")
	}

	logger.WithField("email", email).Info("Provider approved")
}
