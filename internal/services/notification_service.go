package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/models"
	"github.com/tripmarket/marketplace-backend/pkg/events"
	"github.com/tripmarket/marketplace-backend/pkg/mailer"
)

const sendTimeout = 15 * time.Second

// NotificationService sends transactional email and publishes domain events.
// Every method is best-effort: failures are logged and never returned to the caller.
type NotificationService struct {
	mailer    mailer.Mailer
	publisher events.Publisher
	logger    *logrus.Logger
	now       func() time.Time
}

// NewNotificationService creates a NotificationService
func NewNotificationService(m mailer.Mailer, p events.Publisher, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		mailer:    m,
		publisher: p,
		logger:    logger,
		now:       time.Now,
	}
}

// Welcome greets a newly registered account
func (s *NotificationService) Welcome(ctx context.Context, user *models.User) {
	text := fmt.Sprintf("Hi %s,\n\nWelcome to Trip Market! Your %s account is ready.", user.FirstName, user.Role)
	if user.Role == models.RoleProvider {
		text += "\nWe will review your provider profile shortly; you can publish trips once it is approved."
	}

	s.send(ctx, "welcome", mailer.Message{
		ToEmail: user.Email,
		ToName:  user.FullName(),
		Subject: "Welcome to Trip Market",
		Text:    text,
		HTML:    paragraphs(text),
	})
}

// BookingCreated confirms the inquiry to the traveler and notifies the provider
func (s *NotificationService) BookingCreated(ctx context.Context, booking *models.BookingDetail, provider *models.User) {
	travelerText := fmt.Sprintf(
		"Hi %s,\n\nWe received your booking %s for %s starting %s.\nParticipants: %d\nTotal: %s\n\nThe provider will confirm shortly.",
		booking.TravelerName, booking.BookingNumber, booking.TripTitle,
		booking.StartDate.Format("2 Jan 2006"), booking.ParticipantCount, booking.TotalPrice.StringFixed(2),
	)
	s.send(ctx, "booking_confirmation", mailer.Message{
		ToEmail: booking.TravelerEmail,
		ToName:  booking.TravelerName,
		Subject: fmt.Sprintf("Booking %s received", booking.BookingNumber),
		Text:    travelerText,
		HTML:    paragraphs(travelerText),
	})

	if provider != nil {
		providerText := fmt.Sprintf(
			"Hi %s,\n\nNew booking inquiry %s for %s starting %s.\nParticipants: %d\nTotal: %s\nSpecial requests: %s\n\nPlease confirm or decline it.",
			provider.FirstName, booking.BookingNumber, booking.TripTitle,
			booking.StartDate.Format("2 Jan 2006"), booking.ParticipantCount, booking.TotalPrice.StringFixed(2),
			orNone(booking.SpecialRequests),
		)
		s.send(ctx, "booking_inquiry", mailer.Message{
			ToEmail: provider.Email,
			ToName:  provider.FullName(),
			Subject: fmt.Sprintf("New booking inquiry %s", booking.BookingNumber),
			Text:    providerText,
			HTML:    paragraphs(providerText),
		})
	}

	s.publish(ctx, events.BookingCreated, bookingEvent(booking, "", s.now()))
}

// BookingStatusChanged tells the traveler about a provider decision or the provider about a traveler cancellation
func (s *NotificationService) BookingStatusChanged(ctx context.Context, booking *models.BookingDetail, from models.BookingStatus, recipient *models.User) {
	if recipient != nil {
		text := fmt.Sprintf(
			"Hi %s,\n\nBooking %s for %s is now %s.",
			recipient.FirstName, booking.BookingNumber, booking.TripTitle, booking.BookingStatus,
		)
		if booking.ProviderResponse != "" && booking.BookingStatus != models.BookingCancelled {
			text += "\nMessage from the provider: " + booking.ProviderResponse
		}
		if booking.CancellationReason != "" {
			text += "\nReason: " + booking.CancellationReason
		}

		s.send(ctx, "booking_status_change", mailer.Message{
			ToEmail: recipient.Email,
			ToName:  recipient.FullName(),
			Subject: fmt.Sprintf("Booking %s %s", booking.BookingNumber, booking.BookingStatus),
			Text:    text,
			HTML:    paragraphs(text),
		})
	}

	subject := events.BookingStatusChanged
	if booking.BookingStatus == models.BookingCancelled {
		subject = events.BookingCancelled
	}
	s.publish(ctx, subject, bookingEvent(booking, from, s.now()))
}

// BookingsCompleted announces bookings moved to completed by the scheduler
func (s *NotificationService) BookingsCompleted(ctx context.Context, ids []uuid.UUID) {
	now := s.now()
	for _, id := range ids {
		s.publish(ctx, events.BookingCompleted, events.BookingEvent{
			BookingID:  id,
			FromStatus: string(models.BookingConfirmed),
			Status:     string(models.BookingCompleted),
			OccurredAt: now,
		})
	}
}

// ReviewCreated announces a new review
func (s *NotificationService) ReviewCreated(ctx context.Context, review *models.Review) {
	s.publish(ctx, events.ReviewCreated, events.ReviewEvent{
		ReviewID:   review.ID,
		TripID:     review.TripID,
		UserID:     review.UserID,
		Rating:     review.Rating,
		OccurredAt: s.now(),
	})
}

func (s *NotificationService) send(ctx context.Context, template string, msg mailer.Message) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := s.mailer.Send(ctx, msg)
	fields := logrus.Fields{"template": template, "to": msg.ToEmail}
	if err != nil {
		s.logger.WithFields(fields).WithError(err).Error("Failed to send email")
		return
	}
	if id != "" {
		fields["message_id"] = id
	}
	s.logger.WithFields(fields).Debug("Email sent")
}

func (s *NotificationService) publish(ctx context.Context, subject string, payload interface{}) {
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		s.logger.WithField("subject", subject).WithError(err).Warn("Failed to publish event")
	}
}

func bookingEvent(b *models.BookingDetail, from models.BookingStatus, at time.Time) events.BookingEvent {
	return events.BookingEvent{
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		TripID:        b.TripID,
		TravelerID:    b.TravelerID,
		FromStatus:    string(from),
		Status:        string(b.BookingStatus),
		OccurredAt:    at,
	}
}

func paragraphs(text string) string {
	return "<p>" + strings.ReplaceAll(html.EscapeString(text), "\n", "<br>") + "</p>"
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
