package store

import (
	"context"

	"github.com/trellishq/trellis/internal/model"
)

// Store defines the persistence interface for the graph.
type Store interface {
	// Node CRUD
	CreateNode(ctx context.Context, node *model.Node) error
	GetNode(ctx context.Context, id string) (*model.Node, error)
	ListNodes(ctx context.Context, filter model.NodeFilter) ([]*model.Node, int, error) // returns nodes, total count, error
	UpdateNode(ctx context.Context, node *model.Node) error
	CompleteNode(ctx context.Context, id string, completedBy string) (*model.Node, error)
	ReopenNode(ctx context.Context, id string) (*model.Node, error)
	DeleteNode(ctx context.Context, id string) error

	// Edges
	AddEdge(ctx context.Context, edge *model.Edge) error
	RemoveEdge(ctx context.Context, from, to string, relation model.Relation) error
	GetEdges(ctx context.Context, nodeID string) ([]*model.Edge, error)

	// Requests
	CreateRequest(ctx context.Context, req *model.Request) error
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	ListRequests(ctx context.Context, nodeID string) ([]*model.Request, error)
	UpdateRequestStatus(ctx context.Context, id string, status model.RequestStatus, response string) (*model.Request, error)

	// Snapshot returns the full node/edge/request state for one project.
	// The status and layout engines consume it as an immutable value.
	GetSnapshot(ctx context.Context, projectID string) (*model.Snapshot, error)

	// Notifications. CreateNotification reports created=false when the
	// dedupe key already exists; that uniqueness constraint is what makes
	// the unblock cascade idempotent.
	CreateNotification(ctx context.Context, n *model.Notification) (created bool, err error)
	ListNotifications(ctx context.Context, ownerID string) ([]*model.Notification, error)

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error
	GetEvents(ctx context.Context, nodeID string) ([]*model.Event, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
