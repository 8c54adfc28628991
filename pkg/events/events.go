// Package events publishes booking lifecycle events to the message bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Subjects
const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	BookingCancelled     = "booking.cancelled"
	BookingCompleted     = "booking.completed"
	ReviewCreated        = "review.created"
)

// Publisher sends an event payload on a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// BookingEvent is the payload of every booking subject
type BookingEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	TripID        uuid.UUID `json:"trip_id"`
	TravelerID    uuid.UUID `json:"traveler_id"`
	FromStatus    string    `json:"from_status,omitempty"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ReviewEvent is the payload of review.created
type ReviewEvent struct {
	ReviewID   uuid.UUID `json:"review_id"`
	TripID     uuid.UUID `json:"trip_id"`
	UserID     uuid.UUID `json:"user_id"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NATSPublisher publishes JSON payloads over a NATS connection
type NATSPublisher struct {
	conn   *nats.Conn
	logger *logrus.Logger
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url string, logger *logrus.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("tripmarket-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.WithField("url", c.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn, logger: logger}, nil
}

// Publish marshals data and publishes it on subject
func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	n.logger.WithFields(logrus.Fields{
		"subject": subject,
		"bytes":   len(payload),
	}).Debug("Publishing event")

	if err := n.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection
func (n *NATSPublisher) Close() error {
	return n.conn.Drain()
}

// NoopPublisher discards events; used when no bus is configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func (NoopPublisher) Close() error { return nil }
