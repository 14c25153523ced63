// Package notify delivers one-time codes and reset links to account emails.
package notify

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Sender delivers outbound notifications. Any returned error means the
// message may not have been delivered.
type Sender interface {
	SendOTP(ctx context.Context, to, code string, purpose models.CodePurpose) error
	SendResetLink(ctx context.Context, to, link string) error
}

// Message is a rendered plain-text email.
type Message struct {
	Subject string
	Body    string
}

// OTPMessage renders the email carrying a one-time code.
func OTPMessage(code string, purpose models.CodePurpose) Message {
	switch purpose {
	case models.PurposePasswordReset:
		return Message{
			Subject: "Password Reset Code",
			Body:    fmt.Sprintf("Your password reset code is: %s\n\nThis code will expire in 10 minutes.", code),
		}
	default:
		return Message{
			Subject: "Email Verification Code",
			Body:    fmt.Sprintf("Your email verification code is: %s\n\nThis code will expire in 10 minutes.", code),
		}
	}
}

// ResetLinkMessage renders the email carrying a password reset link.
func ResetLinkMessage(link string) Message {
	return Message{
		Subject: "Password Reset Request",
		Body: fmt.Sprintf("You requested a password reset. Open the link below to choose a new password:\n\n%s\n\n"+
			"This link will expire in 1 hour. If you did not request it, ignore this email.", link),
	}
}

// deliverer is the transport behind the email senders.
type deliverer interface {
	deliver(ctx context.Context, to string, m Message) error
}

// mailSender renders messages and hands them to a deliverer.
type mailSender struct {
	d deliverer
}

func (s mailSender) SendOTP(ctx context.Context, to, code string, purpose models.CodePurpose) error {
	return s.d.deliver(ctx, to, OTPMessage(code, purpose))
}

func (s mailSender) SendResetLink(ctx context.Context, to, link string) error {
	return s.d.deliver(ctx, to, ResetLinkMessage(link))
}
