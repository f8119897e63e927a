package identity

import (
	"context"

	"lorryadmin/internal/logger"
)

// LogMailer writes reset links to the log instead of sending mail.
type LogMailer struct {
	log     logger.Logger
	linkURL string
}

func NewLogMailer(log logger.Logger, linkURL string) *LogMailer {
	return &LogMailer{log: log, linkURL: linkURL}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.log.Info("mail: password reset", "to", email, "link", m.linkURL+"?token="+token)
	return nil
}
