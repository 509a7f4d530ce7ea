package server

import (
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/trellishq/trellis/internal/graph"
	"github.com/trellishq/trellis/internal/model"
)

// nodeStatus pairs the computed lattice value with the presentation label.
// The two differ only for nodes blocked solely by open requests, which
// display as waiting.
type nodeStatus struct {
	Status  model.ComputedStatus `json:"status"`
	Display model.ComputedStatus `json:"display"`
}

// handleGetStatuses handles GET /v1/projects/{id}/statuses.
// Returns the computed status for every node in the project.
func (s *GraphServer) handleGetStatuses(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "project id is required")
		return
	}

	snap, err := s.store.GetSnapshot(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	statuses := graph.ComputeStatuses(snap)
	reasons := graph.AllBlockingDetails(snap)

	out := make(map[string]nodeStatus, len(statuses))
	for id, st := range statuses {
		out[id] = nodeStatus{
			Status:  st,
			Display: graph.DisplayStatus(st, reasons[id]),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"statuses": out})
}

// handleGetBlocking handles GET /v1/nodes/{id}/blocking.
// Returns the ordered blocking reasons for one node.
func (s *GraphServer) handleGetBlocking(w http.ResponseWriter, r *http.Request) {
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

	snap, err := s.store.GetSnapshot(r.Context(), node.ProjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	reasons := graph.BlockingDetails(id, snap)
	if reasons == nil {
		reasons = []model.BlockingReason{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocking": reasons})
}

// handleGetLayout handles GET /v1/projects/{id}/layout.
// Returns a deterministic grid position for every node in the project.
func (s *GraphServer) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "project id is required")
		return
	}

	opts := graph.Options{}
	if v := r.URL.Query().Get("columns"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Columns = n
		}
	}

	snap, err := s.store.GetSnapshot(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	positions := graph.ComputeLayout(snap.Nodes, snap.Edges, opts)

	writeJSON(w, http.StatusOK, map[string]any{
		"positions":   positions,
		"node_width":  graph.DefaultNodeWidth,
		"node_height": graph.DefaultNodeHeight,
	})
}

// handleGetGraph handles GET /v1/projects/{id}/graph.
// Returns nodes, edges, and aggregate status counts for visualization.
func (s *GraphServer) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "project id is required")
		return
	}

	snap, err := s.store.GetSnapshot(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	statuses := graph.ComputeStatuses(snap)
	stats := &model.GraphStats{}
	for _, st := range statuses {
		switch st {
		case model.ComputedBlocked:
			stats.TotalBlocked++
		case model.ComputedTodo:
			stats.TotalTodo++
		case model.ComputedDoing:
			stats.TotalDoing++
		case model.ComputedDone:
			stats.TotalDone++
		}
	}

	nodes := snap.Nodes
	if nodes == nil {
		nodes = []*model.Node{}
	}
	edges := snap.Edges
	if edges == nil {
		edges = []*model.Edge{}
	}

	writeJSON(w, http.StatusOK, &model.GraphResponse{
		Nodes: nodes,
		Edges: edges,
		Stats: stats,
	})
}

// handleGetReady handles GET /v1/ready?project=<id>.
// Returns nodes whose computed status is todo: every gating edge satisfied
// and no active requests. Sorted by priority, highest first.
func (s *GraphServer) handleGetReady(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}

	snap, err := s.store.GetSnapshot(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	statuses := graph.ComputeStatuses(snap)
	ready := make([]*model.Node, 0)
	for _, n := range snap.Nodes {
		if statuses[n.ID] == model.ComputedTodo {
			ready = append(ready, n)
		}
	}
	sort.SliceStable(ready, func(i, j int) bool {
		return ready[i].Priority > ready[j].Priority
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": ready,
		"total": len(ready),
	})
}

// blockedNode is one entry in the blocked listing, enriched with reasons.
type blockedNode struct {
	Node    *model.Node            `json:"node"`
	Display model.ComputedStatus   `json:"display"`
	Reasons []model.BlockingReason `json:"reasons"`
}

// handleGetBlocked handles GET /v1/blocked?project=<id>.
// Returns blocked nodes with their blocking reasons, so a caller can answer
// "why is this blocked" without a second round trip.
func (s *GraphServer) handleGetBlocked(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}

	snap, err := s.store.GetSnapshot(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load project")
		return
	}

	statuses := graph.ComputeStatuses(snap)
	reasons := graph.AllBlockingDetails(snap)

	blocked := make([]blockedNode, 0)
	for _, n := range snap.Nodes {
		if statuses[n.ID] != model.ComputedBlocked {
			continue
		}
		blocked = append(blocked, blockedNode{
			Node:    n,
			Display: graph.DisplayStatus(model.ComputedBlocked, reasons[n.ID]),
			Reasons: reasons[n.ID],
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": blocked,
		"total": len(blocked),
	})
}
