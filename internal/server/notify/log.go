package notify

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

// LogNotifier writes codes to the log instead of sending them. Development only.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendCode(ctx context.Context, msg Message) error {
	n.logger.Warn(ctx, "verification code (log notifier, not delivered)",
		"to", msg.To, "code", msg.Code, "expires_at", msg.ExpiresAt)
	return nil
}
