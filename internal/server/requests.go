package server

import (
	"context"
	"fmt"
	"time"

	"github.com/trellishq/trellis/internal/events"
	"github.com/trellishq/trellis/internal/idgen"
	"github.com/trellishq/trellis/internal/model"
)

// openRequestInput holds transport-agnostic parameters for opening a request.
type openRequestInput struct {
	Question   string `json:"question"`
	AssignedTo string `json:"assigned_to"`
	TeamID     string `json:"team_id"`
	CreatedBy  string `json:"created_by"`
}

// openRequest creates an open request against a node. An open request gates
// the node immediately; no edge is involved.
func (s *GraphServer) openRequest(ctx context.Context, nodeID string, in openRequestInput) (*model.Request, error) {
	id, err := idgen.NewRequestID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	now := time.Now().UTC()
	req := &model.Request{
		ID:         id,
		NodeID:     nodeID,
		Status:     model.RequestOpen,
		Question:   in.Question,
		AssignedTo: in.AssignedTo,
		TeamID:     in.TeamID,
		CreatedAt:  now,
		CreatedBy:  in.CreatedBy,
		UpdatedAt:  now,
	}
	if err := model.ValidateRequest(req); err != nil {
		return nil, inputError("invalid request: " + err.Error())
	}

	// The linked node must exist.
	if _, err := s.store.GetNode(ctx, nodeID); err != nil {
		return nil, err
	}

	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicRequestOpened, nodeID, in.CreatedBy, events.RequestOpened{Request: req})

	return req, nil
}

// updateRequestStatus transitions a request and publishes a RequestUpdated
// event. Approving or closing the last active request on a node can release
// it from waiting; the next status computation picks that up.
func (s *GraphServer) updateRequestStatus(ctx context.Context, id, status, response string) (*model.Request, error) {
	st := model.RequestStatus(status)
	if !st.IsValid() {
		return nil, inputError("unknown request status " + status)
	}

	req, err := s.store.UpdateRequestStatus(ctx, id, st, response)
	if err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicRequestUpdated, req.NodeID, "", events.RequestUpdated{Request: req})

	return req, nil
}
