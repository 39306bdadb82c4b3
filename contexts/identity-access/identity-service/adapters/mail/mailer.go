package mail

import (
	"context"
	"log/slog"

	"keystone/contexts/identity-access/identity-service/ports"
)

// LogMailer records outbound mail in the service log instead of relaying
// it. Environments with a real provider swap in their own ports.Mailer.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, mail ports.Mail) error {
	m.logger.Info("outbound mail",
		"event", "identity_mail_logged",
		"module", "identity-access/identity-service",
		"layer", "adapter",
		"to", mail.To,
		"subject", mail.Subject,
	)
	return nil
}
