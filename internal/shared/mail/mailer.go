package mail

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"jobtracker-backend/internal/shared/telemetry"
)

// Email represents an outgoing message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// Sender delivers emails.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// SMTPConfig holds SMTP settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough settings are present to dial a server.
func (c SMTPConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != "" && c.Port > 0 && strings.TrimSpace(c.From) != ""
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTPSender builds a sender from cfg.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("smtp host, port and from address are required")
	}
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

// Send dials the relay and delivers a single message.
func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}

	return s.dialer.DialAndSend(msg)
}

// LogSender writes messages to the log instead of sending them. Used when SMTP is not configured.
type LogSender struct{}

// Send logs the message.
func (LogSender) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	telemetry.Info("mail.logged", map[string]any{
		"to":      strings.Join(email.To, ","),
		"subject": email.Subject,
		"body":    email.Body,
	})
	return nil
}

// OTPEmail builds the verification message for code.
func OTPEmail(to, name, code string) Email {
	greeting := "Hello"
	if strings.TrimSpace(name) != "" {
		greeting = "Hello " + strings.TrimSpace(name)
	}
	body := fmt.Sprintf("%s,\n\nYour verification code is %s. It expires in 10 minutes.\n\nIf you did not request this code you can ignore this email.\n", greeting, code)
	return Email{
		To:      []string{to},
		Subject: "Your verification code",
		Body:    body,
	}
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = LogSender{}
)
