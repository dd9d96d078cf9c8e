package messaging

import (
	"context"

	"go.uber.org/zap"

	"forum-api/application/ports"
)

// LogMailer "sends" mail by logging it. The reset link is only logged at
// debug level.
type LogMailer struct {
	logger *zap.Logger
}

var _ ports.Mailer = (*LogMailer)(nil)

// NewLogMailer creates a log mailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendPasswordReset logs the reset email
func (m *LogMailer) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	m.logger.Info("Password reset email queued", zap.String("to", email))
	m.logger.Debug("Password reset link", zap.String("to", email), zap.String("url", resetURL))
	return nil
}
