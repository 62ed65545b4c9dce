// Package mail delivers account emails. Sending is fire-and-forget: requests
// enqueue messages on a Dispatcher and never wait for delivery.
package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/librescript/backend/internal/config"
)

type Kind string

const (
	KindWelcome          Kind = "welcome"
	KindVerificationCode Kind = "verification_code"
)

type Message struct {
	Kind    Kind
	To      string
	Subject string
	HTML    string
	// Code is the verification code carried by the message, if any.
	Code string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NewNotifier picks the delivery backend named by MAIL_PROVIDER.
func NewNotifier(cfg config.Config, log *zap.Logger) (Notifier, error) {
	switch cfg.MailProvider {
	case "smtp":
		if cfg.SMTPHost == "" {
			log.Warn("SMTP_HOST not set, emails will be discarded")
			return NopNotifier{log: log}, nil
		}
		return NewSMTPNotifier(cfg), nil
	case "twilio":
		return NewTwilioNotifier(cfg, log)
	case "none":
		return NopNotifier{log: log}, nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}

// NopNotifier logs and drops every message.
type NopNotifier struct {
	log *zap.Logger
}

func (n NopNotifier) Send(_ context.Context, msg Message) error {
	if n.log != nil {
		n.log.Debug("mail discarded", zap.String("kind", string(msg.Kind)), zap.String("to", msg.To))
	}
	return nil
}
