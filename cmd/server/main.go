package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/config"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/handlers"
	"github.com/tripmarket/marketplace-backend/internal/middleware"
	"github.com/tripmarket/marketplace-backend/internal/models"
	"github.com/tripmarket/marketplace-backend/internal/services"
	"github.com/tripmarket/marketplace-backend/internal/utils"
	"github.com/tripmarket/marketplace-backend/pkg/events"
	"github.com/tripmarket/marketplace-backend/pkg/jwt"
	"github.com/tripmarket/marketplace-backend/pkg/mailer"
	"github.com/tripmarket/marketplace-backend/pkg/validator"
)

var version = "1.0.0"

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.WithFields(logrus.Fields{
		"version":     version,
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
	}).Info("Starting Trip Market API")

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(context.Background(), db)
		if err != nil {
			logger.Fatalf("Failed to apply migrations: %v", err)
		}
		logger.WithField("applied", applied).Info("Database migrations applied")
	}

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	providerRepository := database.NewProviderRepository(db)
	tripRepository := database.NewTripRepository(db)
	tripDateRepository := database.NewTripDateRepository(db)
	bookingRepository := database.NewBookingRepository(db, tripDateRepository)
	reviewRepository := database.NewReviewRepository(db)

	// Outbound email and events
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
	logger.WithField("provider", cfg.Mail.Provider).Info("Mailer configured")

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to NATS: %v", err)
		}
		publisher = natsPublisher
		logger.Info("Publishing booking events to NATS")
	}

	// Initialize services
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)
	rateLimitService := services.NewRateLimitService(db, cfg.RateLimit)

	var auditor services.Auditor = services.NoopAuditor{}
	if cfg.Security.EnableAuditLog {
		auditor = services.NewAuditService(db)
	}

	notificationService := services.NewNotificationService(mail, publisher, logger)
	authService := services.NewAuthService(userRepository, providerRepository, jwtService, rateLimitService, auditor, notificationService, cfg.Security.BcryptCost, logger)
	tripService := services.NewTripService(tripRepository, tripDateRepository, providerRepository)
	availabilityService := services.NewAvailabilityService(tripRepository, tripDateRepository)
	bookingService := services.NewBookingService(
		bookingRepository,
		tripRepository,
		tripDateRepository,
		providerRepository,
		userRepository,
		notificationService,
		auditor,
		cfg.Booking,
		logger,
	)
	reviewService := services.NewReviewService(reviewRepository, tripRepository, bookingRepository, notificationService)
	providerService := services.NewProviderService(providerRepository)

	// Background jobs
	cronService := services.NewCronService(bookingService, rateLimitService, cfg.Booking, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron jobs: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	tripHandler := handlers.NewTripHandler(tripService, availabilityService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, logger)
	providerHandler := handlers.NewProviderHandler(providerService, logger)

	// Initialize Gin router
	validator.StrictJSONBinding()
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}
	proxyResolver, err := utils.NewProxyResolver(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.ClientIP(proxyResolver))
	router.Use(middleware.RequestLogger(logger))

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Set environment in context so error responses can hide internals in production
	router.Use(func(c *gin.Context) {
		c.Set(handlers.EnvironmentKey, cfg.Server.Environment)
		c.Next()
	})

	authenticated := middleware.AuthMiddleware(jwtService, userRepository, logger)
	optionalAuth := middleware.OptionalAuthMiddleware(jwtService, userRepository, logger)
	requireRole := middleware.RequireRole(models.RoleProvider)
	requireProfile := middleware.RequireProviderProfile(providerRepository, logger)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authenticated, authHandler.Me)
		}

		// Catalog routes
		trips := v1.Group("/trips")
		{
			trips.GET("", optionalAuth, tripHandler.ListTrips)
			trips.GET("/:id", tripHandler.GetTrip)
			trips.GET("/:id/dates", tripHandler.ListDates)
			trips.GET("/:id/reviews", reviewHandler.ListReviews)

			trips.POST("", authenticated, requireRole, requireProfile, tripHandler.CreateTrip)
			trips.PUT("/:id", authenticated, requireRole, requireProfile, tripHandler.UpdateTrip)
			trips.POST("/:id/dates", authenticated, requireRole, requireProfile, tripHandler.AddDates)
			trips.POST("/:id/reviews", authenticated, reviewHandler.CreateReview)
		}

		// Public provider directory
		providers := v1.Group("/providers")
		{
			providers.GET("", providerHandler.ListProviders)
			providers.GET("/:id", providerHandler.GetPublicProfile)
		}

		// Booking routes (any authenticated account)
		bookings := v1.Group("/bookings")
		bookings.Use(authenticated)
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.ListMyBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.PUT("/:id/status", bookingHandler.UpdateStatus)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
		}

		// Provider self-service routes
		provider := v1.Group("/provider")
		provider.Use(authenticated, requireRole, requireProfile)
		{
			provider.GET("/profile", providerHandler.GetProfile)
			provider.PUT("/profile", providerHandler.UpdateProfile)
			provider.GET("/stats", providerHandler.GetStats)
			provider.GET("/trips", tripHandler.ListProviderTrips)
			provider.GET("/bookings", bookingHandler.ListProviderBookings)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	if err := publisher.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close event publisher")
	}

	logger.Info("Server exited")
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
