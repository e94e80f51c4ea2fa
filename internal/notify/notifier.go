package notify

import (
	"context"
	"log/slog"
)

//go:generate mockgen -source=notifier.go -destination=notifier_mock.go -package=notify
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.InfoContext(ctx, n.Title, "type", n.Type, "tag", n.Tag, "body", n.Body)

	return nil
}
