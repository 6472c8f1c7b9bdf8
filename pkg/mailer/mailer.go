package mailer

import (
	"fmt"

	"mymoney/pkg/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends verification-code emails over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func New(cfg *config.SMTPConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// SendVerificationCode emails a one-time code used for email
// verification and password resets.
func (m *Mailer) SendVerificationCode(to, name, subject string, code int) error {
	body := fmt.Sprintf(`<div>
  <h1>MyMoney Email Verification</h1>
  <p>Hello %s</p>
  <p>Below is your code for email verification:</p>
  <p><b>%d</b></p>
  <p>If you didn't request this, feel free to ignore this email.</p>
</div>`, name, code)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send email", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
