package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/trellishq/trellis/internal/events"
	"github.com/trellishq/trellis/internal/model"
)

// handleCreateNode handles POST /v1/nodes.
func (s *GraphServer) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var in createNodeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	node, err := s.createNode(r.Context(), in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

// handleListNodes handles GET /v1/nodes.
func (s *GraphServer) handleListNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.NodeFilter{
		ProjectID: q.Get("project"),
		Owner:     q.Get("owner"),
		Team:      q.Get("team"),
		Search:    q.Get("search"),
		Sort:      q.Get("sort"),
	}

	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.ManualStatus(st))
		}
	}
	if v := q.Get("type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			filter.Type = append(filter.Type, model.NodeType(t))
		}
	}
	if v := q.Get("priority"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Priority = &n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	nodes, total, err := s.store.ListNodes(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list nodes")
		return
	}

	// Ensure nodes is never null in JSON output.
	if nodes == nil {
		nodes = []*model.Node{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": nodes,
		"total": total,
	})
}

// handleGetNode handles GET /v1/nodes/{id}.
func (s *GraphServer) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	node, err := s.store.GetNode(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get node")
		return
	}

	writeJSON(w, http.StatusOK, node)
}

// handleUpdateNode handles PATCH /v1/nodes/{id}.
func (s *GraphServer) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in updateNodeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	// For HTTP/JSON, DueAt/Owners/Teams presence is inferred from non-nil.
	if in.DueAt != nil {
		in.dueAtSet = true
	}
	if in.Owners != nil {
		in.ownersSet = true
	}
	if in.Teams != nil {
		in.teamsSet = true
	}

	node, err := s.updateNode(r.Context(), id, in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "node not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, node)
}

// handleDeleteNode handles DELETE /v1/nodes/{id}.
// Edges pointing at the deleted node are left in place; they dangle and
// keep blocking their from nodes until removed.
func (s *GraphServer) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteNode(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "node not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete node")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicNodeDeleted, id, "", events.NodeDeleted{NodeID: id})

	w.WriteHeader(http.StatusNoContent)
}

// handleCompleteNode handles POST /v1/nodes/{id}/complete.
// Accepts an optional JSON body with "completed_by". The response includes
// the owners notified by the unblock cascade.
func (s *GraphServer) handleCompleteNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var body struct {
		CompletedBy string `json:"completed_by"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	node, notified, err := s.completeNode(r.Context(), id, body.CompletedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "node not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if notified == nil {
		notified = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"node":     node,
		"notified": notified,
	})
}

// handleReopenNode handles POST /v1/nodes/{id}/reopen.
func (s *GraphServer) handleReopenNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var body struct {
		ReopenedBy string `json:"reopened_by"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	node, err := s.reopenNode(r.Context(), id, body.ReopenedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "node not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, node)
}

// handleGetEvents handles GET /v1/nodes/{id}/events.
func (s *GraphServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	evts, err := s.store.GetEvents(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get events")
		return
	}
	if evts == nil {
		evts = []*model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}

// handleListNotifications handles GET /v1/notifications?owner=<id>.
func (s *GraphServer) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner is required")
		return
	}

	notifications, err := s.store.ListNotifications(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []*model.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}
