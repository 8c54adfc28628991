// Package mailer delivers transactional email through a configurable backend.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Message is one outbound email
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends a message and returns the provider's message ID when it has one
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Config selects and configures a backend
type Config struct {
	Provider         string // log, smtp or mailersend
	FromName         string
	FromAddress      string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	MailerSendAPIKey string
}

// New builds the backend named by cfg.Provider
func New(cfg Config, logger *logrus.Logger) (Mailer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "log":
		return NewLogMailer(logger), nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is required for the smtp mail provider")
		}
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.FromName, cfg.FromAddress, cfg.SMTPUsername, cfg.SMTPPassword), nil
	case "mailersend":
		if cfg.MailerSendAPIKey == "" || cfg.FromAddress == "" {
			return nil, fmt.Errorf("MAILERSEND_API_KEY and MAIL_FROM_ADDRESS are required for the mailersend provider")
		}
		return NewMailerSendMailer(cfg.MailerSendAPIKey, cfg.FromName, cfg.FromAddress), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// LogMailer writes messages to the log instead of sending them (development mode)
type LogMailer struct {
	logger *logrus.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message
func (m *LogMailer) Send(_ context.Context, msg Message) (string, error) {
	m.logger.WithFields(logrus.Fields{
		"to":      msg.ToEmail,
		"subject": msg.Subject,
	}).Info("📧 Email (log mode)")
	m.logger.Debug(msg.Text)
	return "", nil
}
