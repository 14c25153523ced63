package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// dialer is the part of *gomail.Dialer used to send.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends email through an SMTP relay.
type SMTPSender struct {
	mailSender
}

type smtpDeliverer struct {
	from   string
	dialer dialer
}

// NewSMTPSender returns a sender for host:port authenticating as user.
func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return newSMTPSender(gomail.NewDialer(host, port, user, password), from)
}

func newSMTPSender(d dialer, from string) *SMTPSender {
	return &SMTPSender{mailSender{d: &smtpDeliverer{from: from, dialer: d}}}
}

func (s *smtpDeliverer) deliver(ctx context.Context, to string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
