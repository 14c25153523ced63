package notify

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// LogSender writes notifications to the log instead of delivering them.
// Development only: codes and links appear in plain text.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "notify")}
}

func (s *LogSender) SendOTP(ctx context.Context, to, code string, purpose models.CodePurpose) error {
	s.logger.Info(ctx, "one-time code", "to", to, "purpose", string(purpose), "code", code)
	return nil
}

func (s *LogSender) SendResetLink(ctx context.Context, to, link string) error {
	s.logger.Info(ctx, "password reset link", "to", to, "link", link)
	return nil
}
