// Package notify persists unblock notifications and announces them on the
// event bus.
package notify

import (
	"context"
	"log/slog"

	"github.com/trellishq/trellis/internal/cascade"
	"github.com/trellishq/trellis/internal/events"
	"github.com/trellishq/trellis/internal/model"
	"github.com/trellishq/trellis/internal/store"
)

// StoreSink writes notifications through the store, which enforces the
// dedupe-key uniqueness, and publishes an event for each one actually
// created. Publish failures are logged, not returned; the notification row
// is the source of truth.
type StoreSink struct {
	store     store.Store
	publisher events.Publisher
	logger    *slog.Logger
}

var _ cascade.Sink = (*StoreSink)(nil)

func NewStoreSink(st store.Store, pub events.Publisher, logger *slog.Logger) *StoreSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreSink{store: st, publisher: pub, logger: logger}
}

func (s *StoreSink) Emit(ctx context.Context, n *model.Notification) (bool, error) {
	created, err := s.store.CreateNotification(ctx, n)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	if err := s.publisher.Publish(ctx, events.TopicNodeUnblocked, events.NodeUnblocked{Notification: n}); err != nil {
		s.logger.Warn("failed to publish unblock event",
			"node_id", n.NodeID,
			"owner_id", n.OwnerID,
			"error", err)
	}
	return true, nil
}
