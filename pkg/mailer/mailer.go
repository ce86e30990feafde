package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Config holds SMTP connection configuration.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTP sends notification mails through an SMTP server.
type SMTP struct {
	cfg    Config
	dialer *gomail.Dialer
	log    *zap.Logger
}

// NewSMTP creates a mailer that delivers through the configured SMTP
// server.
func NewSMTP(cfg Config, log *zap.Logger) *SMTP {
	return &SMTP{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:    log,
	}
}

// SendVerificationEmail mails the account verification link.
func (s *SMTP) SendVerificationEmail(ctx context.Context, to, name, link string) error {
	subject := fmt.Sprintf("%s - Email Verification", s.appName())
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Thank you for registering with %s.\n"+
			"Please click the following link to verify your email address:\n"+
			"%s\n\n"+
			"If you did not register, please ignore this email.\n\n"+
			"Regards,\n%s",
		name, s.appName(), link, s.appName(),
	)
	return s.send(ctx, to, subject, body)
}

// SendPasswordResetEmail mails the password reset link.
func (s *SMTP) SendPasswordResetEmail(ctx context.Context, to, name, link string) error {
	subject := fmt.Sprintf("%s - Password Reset", s.appName())
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"We received a request to reset your password at %s.\n"+
			"Please click the following link to choose a new password:\n"+
			"%s\n\n"+
			"If you did not request a password reset, please ignore this email.\n\n"+
			"Regards,\n%s",
		name, s.appName(), link, s.appName(),
	)
	return s.send(ctx, to, subject, body)
}

func (s *SMTP) send(ctx context.Context, to, subject, body string) error {
	// gomail dials synchronously, honor cancellation before starting.
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	s.log.Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (s *SMTP) appName() string {
	if s.cfg.FromName != "" {
		return s.cfg.FromName
	}
	return "user-auth-service"
}
