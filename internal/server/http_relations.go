package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trellishq/trellis/internal/model"
)

// handleGetEdges handles GET /v1/nodes/{id}/edges.
func (s *GraphServer) handleGetEdges(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	edges, err := s.store.GetEdges(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get edges")
		return
	}
	if edges == nil {
		edges = []*model.Edge{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"edges": edges})
}

// handleAddEdge handles POST /v1/nodes/{id}/edges.
// The path node is the from side; the body names the to node and relation.
func (s *GraphServer) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var body struct {
		To        string `json:"to"`
		Relation  string `json:"relation"`
		CreatedBy string `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	edge, err := s.addEdge(r.Context(), id, body.To, body.Relation, body.CreatedBy)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, edge)
}

// handleRemoveEdge handles DELETE /v1/nodes/{id}/edges.
// The to node and relation come from query parameters.
func (s *GraphServer) handleRemoveEdge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	to := r.URL.Query().Get("to")
	relation := r.URL.Query().Get("relation")
	if to == "" || relation == "" {
		writeError(w, http.StatusBadRequest, "to and relation are required")
		return
	}

	if err := s.removeEdge(r.Context(), id, to, relation); err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleOpenRequest handles POST /v1/nodes/{id}/requests.
func (s *GraphServer) handleOpenRequest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in openRequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, err := s.openRequest(r.Context(), id, in)
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

	writeJSON(w, http.StatusCreated, req)
}

// handleListRequests handles GET /v1/nodes/{id}/requests.
func (s *GraphServer) handleListRequests(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	requests, err := s.store.ListRequests(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}
	if requests == nil {
		requests = []*model.Request{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

// handleGetRequest handles GET /v1/requests/{id}.
func (s *GraphServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	req, err := s.store.GetRequest(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "request not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get request")
		return
	}

	writeJSON(w, http.StatusOK, req)
}

// handleUpdateRequestStatus handles POST /v1/requests/{id}/status.
func (s *GraphServer) handleUpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var body struct {
		Status   string `json:"status"`
		Response string `json:"response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, err := s.updateRequestStatus(r.Context(), id, body.Status, body.Response)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "request not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, req)
}
