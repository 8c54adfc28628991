package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/config"
)

// BookingCompleter completes bookings whose trip has ended
type BookingCompleter interface {
	CompleteFinishedBookings(ctx context.Context) (int, error)
}

// AttemptCleaner purges expired login attempts
type AttemptCleaner interface {
	CleanupExpiredAttempts() (int64, error)
}

// CronService manages scheduled background jobs
type CronService struct {
	cron      *cron.Cron
	completer BookingCompleter
	cleaner   AttemptCleaner
	config    config.BookingConfig
	logger    *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(completer BookingCompleter, cleaner AttemptCleaner, cfg config.BookingConfig, logger *logrus.Logger) *CronService {
	// Schedules carry a seconds field
	c := cron.New(cron.WithSeconds())

	return &CronService{
		cron:      c,
		completer: completer,
		cleaner:   cleaner,
		config:    cfg,
		logger:    logger,
	}
}

// Start schedules all jobs and starts the scheduler
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service...")

	if _, err := s.cron.AddFunc(s.config.CompletionSchedule, s.completeBookingsJob); err != nil {
		return fmt.Errorf("failed to schedule booking completion job: %w", err)
	}
	s.logger.WithField("schedule", s.config.CompletionSchedule).Info("Scheduled: complete finished bookings")

	if _, err := s.cron.AddFunc(s.config.AttemptCleanupSchedule, s.cleanupLoginAttemptsJob); err != nil {
		return fmt.Errorf("failed to schedule login attempt cleanup job: %w", err)
	}
	s.logger.WithField("schedule", s.config.AttemptCleanupSchedule).Info("Scheduled: cleanup expired login attempts")

	s.cron.Start()
	s.logger.Info("Cron service started")

	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// Entries reports how many jobs are scheduled
func (s *CronService) Entries() int {
	return len(s.cron.Entries())
}

func (s *CronService) completeBookingsJob() {
	startTime := time.Now()
	log := s.logger.WithField("job", "complete_bookings")

	completed, err := s.completer.CompleteFinishedBookings(context.Background())
	if err != nil {
		log.WithError(err).Error("Failed to complete finished bookings")
		return
	}

	log.WithFields(logrus.Fields{
		"completed":   completed,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Info("Completed finished bookings")
}

func (s *CronService) cleanupLoginAttemptsJob() {
	startTime := time.Now()
	log := s.logger.WithField("job", "cleanup_login_attempts")

	deleted, err := s.cleaner.CleanupExpiredAttempts()
	if err != nil {
		log.WithError(err).Error("Failed to cleanup login attempts")
		return
	}

	log.WithFields(logrus.Fields{
		"deleted":     deleted,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Info("Cleaned up expired login attempts")
}

// RunCompleteBookingsNow runs the completion job immediately
func (s *CronService) RunCompleteBookingsNow() {
	s.logger.Info("[MANUAL] Running booking completion now...")
	s.completeBookingsJob()
}
