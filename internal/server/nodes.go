package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/trellishq/trellis/internal/cascade"
	"github.com/trellishq/trellis/internal/events"
	"github.com/trellishq/trellis/internal/idgen"
	"github.com/trellishq/trellis/internal/model"
)

// createNodeInput holds transport-agnostic parameters for creating a node.
type createNodeInput struct {
	ProjectID   string     `json:"project_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    int        `json:"priority"`
	Owners      []string   `json:"owners"`
	Teams       []string   `json:"teams"`
	CreatedBy   string     `json:"created_by"`
	DueAt       *time.Time `json:"due_at,omitempty"`
}

// createNode validates input, persists a new node, and publishes a
// NodeCreated event. Returns inputError for validation failures.
func (s *GraphServer) createNode(ctx context.Context, in createNodeInput) (*model.Node, error) {
	id, err := idgen.NewNodeID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	now := time.Now().UTC()
	node := &model.Node{
		ID:          id,
		ProjectID:   in.ProjectID,
		Type:        model.NodeType(in.Type),
		Title:       in.Title,
		Description: in.Description,
		Status:      model.StatusTodo,
		Priority:    in.Priority,
		Owners:      in.Owners,
		Teams:       in.Teams,
		CreatedAt:   now,
		CreatedBy:   in.CreatedBy,
		UpdatedAt:   now,
		DueAt:       in.DueAt,
	}
	if node.Type == "" {
		node.Type = model.TypeTask
	}
	if in.Status != "" {
		node.Status = model.ManualStatus(in.Status)
	}
	if node.Status == model.StatusDone {
		node.CompletedAt = &now
	}

	if err := model.ValidateNode(node); err != nil {
		return nil, inputError("invalid node: " + err.Error())
	}

	if err := s.store.CreateNode(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicNodeCreated, node.ID, node.CreatedBy, events.NodeCreated{Node: node})

	return node, nil
}

// updateNodeInput holds transport-agnostic parameters for a partial update.
type updateNodeInput struct {
	Type        *string    `json:"type,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	Owners      []string   `json:"owners,omitempty"`
	Teams       []string   `json:"teams,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	UpdatedBy   string     `json:"updated_by,omitempty"`

	// dueAtSet / ownersSet / teamsSet track whether the field was provided
	// at all, since nil also encodes "clear the field".
	dueAtSet  bool
	ownersSet bool
	teamsSet  bool
}

// updateNode applies partial updates to an existing node, persists them,
// and publishes a NodeUpdated event. Returns inputError for validation failures.
func (s *GraphServer) updateNode(ctx context.Context, id string, in updateNodeInput) (*model.Node, error) {
	node, err := s.store.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)

	if in.Type != nil {
		node.Type = model.NodeType(*in.Type)
		changes["type"] = node.Type
	}
	if in.Title != nil {
		node.Title = *in.Title
		changes["title"] = node.Title
	}
	if in.Description != nil {
		node.Description = *in.Description
		changes["description"] = node.Description
	}
	if in.Status != nil {
		node.Status = model.ManualStatus(*in.Status)
		changes["status"] = node.Status
	}
	if in.Priority != nil {
		node.Priority = *in.Priority
		changes["priority"] = node.Priority
	}
	if in.ownersSet {
		node.Owners = in.Owners
		changes["owners"] = node.Owners
	}
	if in.teamsSet {
		node.Teams = in.Teams
		changes["teams"] = node.Teams
	}
	if in.dueAtSet {
		if in.DueAt != nil && in.DueAt.IsZero() {
			node.DueAt = nil
		} else {
			node.DueAt = in.DueAt
		}
		changes["due_at"] = node.DueAt
	}

	// Reconcile CompletedAt with manual status changes.
	if node.Status == model.StatusDone && node.CompletedAt == nil {
		now := time.Now().UTC()
		node.CompletedAt = &now
		changes["completed_at"] = node.CompletedAt
	}
	if node.Status != model.StatusDone && node.CompletedAt != nil {
		node.CompletedAt = nil
		changes["completed_at"] = node.CompletedAt
	}

	node.UpdatedAt = time.Now().UTC()

	if err := model.ValidateNode(node); err != nil {
		return nil, inputError("invalid node: " + err.Error())
	}

	if err := s.store.UpdateNode(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to update node: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicNodeUpdated, node.ID, in.UpdatedBy, events.NodeUpdated{Node: node, Changes: changes})

	// A status update to done through PATCH triggers the same cascade as
	// the complete endpoint.
	if c, ok := changes["status"]; ok && c == model.StatusDone {
		s.runCascade(ctx, node)
	}

	return node, nil
}

// completeNode marks a node done and runs the unblock cascade over its
// project. Completing an already-done node is a no-op for the cascade
// because notifications deduplicate.
func (s *GraphServer) completeNode(ctx context.Context, id, completedBy string) (*model.Node, []string, error) {
	node, err := s.store.CompleteNode(ctx, id, completedBy)
	if err != nil {
		return nil, nil, err
	}

	notified := s.runCascade(ctx, node)

	s.recordAndPublish(ctx, events.TopicNodeCompleted, node.ID, completedBy, events.NodeCompleted{
		Node:        node,
		CompletedBy: completedBy,
		Notified:    notified,
	})

	owners := make([]string, 0, len(notified))
	for _, d := range notified {
		owners = append(owners, d.OwnerID)
	}
	return node, owners, nil
}

// runCascade loads the node's project snapshot and triggers the unblock
// cascade. Cascade errors are partial by design; they are logged and the
// successful deliveries are still reported.
func (s *GraphServer) runCascade(ctx context.Context, node *model.Node) []cascade.Delivery {
	if s.cascader == nil {
		return nil
	}
	snap, err := s.store.GetSnapshot(ctx, node.ProjectID)
	if err != nil {
		s.logger.Warn("failed to load snapshot for cascade", "node_id", node.ID, "project_id", node.ProjectID, "error", err)
		return nil
	}
	notified, errs := s.cascader.Trigger(ctx, node.ID, snap)
	for _, e := range errs {
		s.logger.Warn("unblock cascade delivery failed", "node_id", node.ID, "error", e)
	}
	return notified
}

// reopenNode returns a done node to todo and publishes a NodeReopened event.
func (s *GraphServer) reopenNode(ctx context.Context, id, reopenedBy string) (*model.Node, error) {
	node, err := s.store.ReopenNode(ctx, id)
	if err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicNodeReopened, node.ID, reopenedBy, events.NodeReopened{Node: node})

	return node, nil
}

// addEdge validates and persists a relationship, publishing an EdgeAdded event.
func (s *GraphServer) addEdge(ctx context.Context, from, to, relation, createdBy string) (*model.Edge, error) {
	edge := &model.Edge{
		From:      from,
		To:        to,
		Relation:  model.Relation(relation),
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
	}
	if err := model.ValidateEdge(edge); err != nil {
		return nil, inputError("invalid edge: " + err.Error())
	}

	// The from node must exist; the to side may dangle and simply blocks.
	if _, err := s.store.GetNode(ctx, from); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inputError("node " + from + " not found")
		}
		return nil, err
	}

	if err := s.store.AddEdge(ctx, edge); err != nil {
		return nil, fmt.Errorf("failed to add edge: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicEdgeAdded, edge.From, createdBy, events.EdgeAdded{Edge: edge})

	return edge, nil
}

// removeEdge deletes a relationship and publishes an EdgeRemoved event.
func (s *GraphServer) removeEdge(ctx context.Context, from, to, relation string) error {
	rel := model.Relation(relation)
	if !rel.IsValid() {
		return inputError("unknown relation " + relation)
	}
	if err := s.store.RemoveEdge(ctx, from, to, rel); err != nil {
		return fmt.Errorf("failed to remove edge: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicEdgeRemoved, from, "", events.EdgeRemoved{
		From:     from,
		To:       to,
		Relation: relation,
	})

	return nil
}
