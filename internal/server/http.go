package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
/// a valid Authorization: Bearer <token> header.
func (s *GraphServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/nodes", s.handleCreateNode)
	mux.HandleFunc("GET /v1/nodes", s.handleListNodes)
	mux.HandleFunc("GET /v1/nodes/{id}", s.handleGetNode)
	mux.HandleFunc("PATCH /v1/nodes/{id}", s.handleUpdateNode)
	mux.HandleFunc("DELETE /v1/nodes/{id}", s.handleDeleteNode)
	mux.HandleFunc("POST /v1/nodes/{id}/complete", s.handleCompleteNode)
	mux.HandleFunc("POST /v1/nodes/{id}/reopen", s.handleReopenNode)
	mux.HandleFunc("GET /v1/nodes/{id}/edges", s.handleGetEdges)
	mux.HandleFunc("POST /v1/nodes/{id}/edges", s.handleAddEdge)
	mux.HandleFunc("DELETE /v1/nodes/{id}/edges", s.handleRemoveEdge)
	mux.HandleFunc("GET /v1/nodes/{id}/blocking", s.handleGetBlocking)
	mux.HandleFunc("GET /v1/nodes/{id}/events", s.handleGetEvents)
	mux.HandleFunc("POST /v1/nodes/{id}/requests", s.handleOpenRequest)
	mux.HandleFunc("GET /v1/nodes/{id}/requests", s.handleListRequests)
	mux.HandleFunc("GET /v1/requests/{id}", s.handleGetRequest)
	mux.HandleFunc("POST /v1/requests/{id}/status", s.handleUpdateRequestStatus)
	mux.HandleFunc("GET /v1/projects/{id}/statuses", s.handleGetStatuses)
	mux.HandleFunc("GET /v1/projects/{id}/layout", s.handleGetLayout)
	mux.HandleFunc("GET /v1/projects/{id}/graph", s.handleGetGraph)
	mux.HandleFunc("GET /v1/ready", s.handleGetReady)
	mux.HandleFunc("GET /v1/blocked", s.handleGetBlocked)
	mux.HandleFunc("GET /v1/notifications", s.handleListNotifications)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *GraphServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AuthMiddleware wraps an http.Handler and checks the Authorization header for
// a valid Bearer token. When token is empty, auth is disabled and all requests
// pass through. GET /v1/health is always exempt.
func AuthMiddleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Exempt health check.
		if r.Method == http.MethodGet && r.URL.Path == "/v1/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		if !strings.HasPrefix(auth, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "invalid authorization scheme")
			return
		}

		provided := strings.TrimPrefix(auth, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
