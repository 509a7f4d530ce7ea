package events

import (
	"context"

	"github.com/trellishq/trellis/internal/cascade"
	"github.com/trellishq/trellis/internal/model"
)

// Event topic constants
const (
	TopicNodeCreated   = "trellis.node.created"
	TopicNodeUpdated   = "trellis.node.updated"
	TopicNodeCompleted = "trellis.node.completed"
	TopicNodeReopened  = "trellis.node.reopened"
	TopicNodeDeleted   = "trellis.node.deleted"

	TopicEdgeAdded   = "trellis.edge.added"
	TopicEdgeRemoved = "trellis.edge.removed"

	TopicRequestOpened  = "trellis.request.opened"
	TopicRequestUpdated = "trellis.request.updated"

	// Published once per generated unblock notification; carries the
	// dedupe key so downstream consumers can collapse redeliveries too.
	TopicNodeUnblocked = "trellis.node.unblocked"
)

// Event types

type NodeCreated struct {
	Node *model.Node `json:"node"`
}

type NodeUpdated struct {
	Node    *model.Node    `json:"node"`
	Changes map[string]any `json:"changes"` // field name -> new value
}

type NodeCompleted struct {
	Node        *model.Node        `json:"node"`
	CompletedBy string             `json:"completed_by,omitempty"`
	Notified    []cascade.Delivery `json:"notified,omitempty"`
}

type NodeReopened struct {
	Node *model.Node `json:"node"`
}

type NodeDeleted struct {
	NodeID string `json:"node_id"`
}

type EdgeAdded struct {
	Edge *model.Edge `json:"edge"`
}

type EdgeRemoved struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
}

type RequestOpened struct {
	Request *model.Request `json:"request"`
}

type RequestUpdated struct {
	Request *model.Request `json:"request"`
}

type NodeUnblocked struct {
	Notification *model.Notification `json:"notification"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
