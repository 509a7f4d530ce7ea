// Package client provides a transport-agnostic interface for the trellis
// service and an HTTP/JSON implementation that talks to the REST API.
package client

import (
	"context"
	"time"

	"github.com/trellishq/trellis/internal/graph"
	"github.com/trellishq/trellis/internal/model"
)

// GraphClient is the interface that all trellis CLI commands use to
// communicate with the server. It is implemented by HTTPClient.
type GraphClient interface {
	// Node CRUD
	CreateNode(ctx context.Context, req *CreateNodeRequest) (*model.Node, error)
	GetNode(ctx context.Context, id string) (*model.Node, error)
	ListNodes(ctx context.Context, req *ListNodesRequest) (*ListNodesResponse, error)
	UpdateNode(ctx context.Context, id string, req *UpdateNodeRequest) (*model.Node, error)
	CompleteNode(ctx context.Context, id, completedBy string) (*CompleteNodeResponse, error)
	ReopenNode(ctx context.Context, id, reopenedBy string) (*model.Node, error)
	DeleteNode(ctx context.Context, id string) error

	// Edges
	AddEdge(ctx context.Context, from, to, relation, createdBy string) (*model.Edge, error)
	RemoveEdge(ctx context.Context, from, to, relation string) error
	GetEdges(ctx context.Context, nodeID string) ([]*model.Edge, error)

	// Requests
	OpenRequest(ctx context.Context, nodeID string, req *OpenRequestRequest) (*model.Request, error)
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	ListRequests(ctx context.Context, nodeID string) ([]*model.Request, error)
	UpdateRequestStatus(ctx context.Context, id, status, response string) (*model.Request, error)

	// Graph views
	GetStatuses(ctx context.Context, projectID string) (map[string]NodeStatus, error)
	GetBlocking(ctx context.Context, nodeID string) ([]model.BlockingReason, error)
	GetLayout(ctx context.Context, projectID string, columns int) (*LayoutResponse, error)
	GetGraph(ctx context.Context, projectID string) (*model.GraphResponse, error)
	GetReady(ctx context.Context, projectID string) (*ListNodesResponse, error)
	GetBlocked(ctx context.Context, projectID string) (*BlockedResponse, error)

	// Misc
	GetEvents(ctx context.Context, nodeID string) ([]*model.Event, error)
	ListNotifications(ctx context.Context, ownerID string) ([]*model.Notification, error)
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateNodeRequest holds parameters for creating a node.
type CreateNodeRequest struct {
	ProjectID   string     `json:"project_id"`
	Type        string     `json:"type,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    int        `json:"priority,omitempty"`
	Owners      []string   `json:"owners,omitempty"`
	Teams       []string   `json:"teams,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
}

// UpdateNodeRequest holds parameters for a partial node update.
// Nil pointer fields are left unchanged.
type UpdateNodeRequest struct {
	Type        *string    `json:"type,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	Owners      []string   `json:"owners,omitempty"`
	Teams       []string   `json:"teams,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	UpdatedBy   string     `json:"updated_by,omitempty"`
}

// ListNodesRequest holds filter parameters for listing nodes.
type ListNodesRequest struct {
	ProjectID string
	Status    []string
	Type      []string
	Owner     string
	Team      string
	Priority  *int
	Search    string
	Sort      string
	Limit     int
	Offset    int
}

// ListNodesResponse is the envelope for node listings.
type ListNodesResponse struct {
	Nodes []*model.Node `json:"nodes"`
	Total int           `json:"total"`
}

// CompleteNodeResponse carries the completed node and the owners reached by
// the unblock cascade.
type CompleteNodeResponse struct {
	Node     *model.Node `json:"node"`
	Notified []string    `json:"notified"`
}

// OpenRequestRequest holds parameters for opening a request against a node.
type OpenRequestRequest struct {
	Question   string `json:"question"`
	AssignedTo string `json:"assigned_to,omitempty"`
	TeamID     string `json:"team_id,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
}

// NodeStatus carries the computed status and its presentation label.
type NodeStatus struct {
	Status  model.ComputedStatus `json:"status"`
	Display model.ComputedStatus `json:"display"`
}

// LayoutResponse is the grid layout for a project.
type LayoutResponse struct {
	Positions  map[string]graph.Position `json:"positions"`
	NodeWidth  int                       `json:"node_width"`
	NodeHeight int                       `json:"node_height"`
}

// BlockedNode is one blocked node with its reasons.
type BlockedNode struct {
	Node    *model.Node            `json:"node"`
	Display model.ComputedStatus   `json:"display"`
	Reasons []model.BlockingReason `json:"reasons"`
}

// BlockedResponse is the envelope for the blocked listing.
type BlockedResponse struct {
	Nodes []BlockedNode `json:"nodes"`
	Total int           `json:"total"`
}
