package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Noop is the mailer used when no SMTP server is configured. Mails are
// logged instead of sent, which keeps local development working
// without a mail server.
type Noop struct {
	log *zap.Logger
}

// NewNoop creates a mailer that only logs.
func NewNoop(log *zap.Logger) *Noop {
	return &Noop{log: log}
}

// SendVerificationEmail logs the verification link instead of mailing
// it.
func (n *Noop) SendVerificationEmail(ctx context.Context, to, name, link string) error {
	n.log.Info("mail sending disabled, verification link not mailed",
		zap.String("to", to),
		zap.String("link", link),
	)
	return nil
}

// SendPasswordResetEmail logs the reset link instead of mailing it.
func (n *Noop) SendPasswordResetEmail(ctx context.Context, to, name, link string) error {
	n.log.Info("mail sending disabled, password reset link not mailed",
		zap.String("to", to),
		zap.String("link", link),
	)
	return nil
}
