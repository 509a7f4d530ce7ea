// Package server implements the HTTP API for the graph service.
package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/trellishq/trellis/internal/cascade"
	"github.com/trellishq/trellis/internal/events"
	"github.com/trellishq/trellis/internal/model"
	"github.com/trellishq/trellis/internal/store"
)

// GraphServer carries the store, event publisher, and unblock cascader used
// by every handler.
type GraphServer struct {
	store     store.Store
	publisher events.Publisher
	cascader  *cascade.Cascader
	logger    *slog.Logger
}

// New returns a GraphServer backed by the given store and publisher. The
// cascader fires after node completions; pass nil to disable cascades.
func New(s store.Store, p events.Publisher, c *cascade.Cascader) *GraphServer {
	return &GraphServer{
		store:     s,
		publisher: p,
		cascader:  c,
		logger:    slog.Default(),
	}
}

// recordAndPublish persists an event to the store and publishes it to NATS.
// Both operations are best-effort; failures are logged but do not block the caller.
func (s *GraphServer) recordAndPublish(ctx context.Context, topic, nodeID, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal event", "topic", topic, "node_id", nodeID, "error", err)
		return
	}
	if err := s.store.RecordEvent(ctx, &model.Event{
		Topic:   topic,
		NodeID:  nodeID,
		Actor:   actor,
		Payload: payload,
	}); err != nil {
		s.logger.Warn("failed to record event", "topic", topic, "node_id", nodeID, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "node_id", nodeID, "error", err)
	}
}

// inputError indicates invalid user input.
// The HTTP layer maps this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
