package store

import (
	"context"
	"log/slog"

	"ops-dashboard/models"
)

// Feed delivers change notifications for a table. *client.Client and
// *realtime.UserFeed satisfy it.
type Feed interface {
	Subscribe(ctx context.Context, table string) (<-chan models.Change, error)
}

// Watch runs a full refetch for every notification on table. Notifications
// are not merged into local state and carry no ordering guarantee. The
// returned channel closes once ctx is done or the feed ends.
func Watch(ctx context.Context, feed Feed, table string, refetch func(context.Context) error, logger *slog.Logger) (<-chan struct{}, error) {
	changes, err := feed.Subscribe(ctx, table)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-changes:
				if !ok {
					return
				}
				logger.Debug("change received", "table", table, "type", change.Type, "record_id", change.RecordID)
				if err := refetch(ctx); err != nil && ctx.Err() == nil {
					logger.Warn("refetch failed", "table", table, "error", err)
				}
			}
		}
	}()

	return done, nil
}
