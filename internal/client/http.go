package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/trellishq/trellis/internal/model"
)

// HTTPClient implements GraphClient using the trellis HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ GraphClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Node CRUD ---

func (c *HTTPClient) CreateNode(ctx context.Context, req *CreateNodeRequest) (*model.Node, error) {
	var node model.Node
	if err := c.doJSON(ctx, http.MethodPost, "/v1/nodes", req, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func (c *HTTPClient) GetNode(ctx context.Context, id string) (*model.Node, error) {
	var node model.Node
	if err := c.doJSON(ctx, http.MethodGet, "/v1/nodes/"+url.PathEscape(id), nil, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func (c *HTTPClient) ListNodes(ctx context.Context, req *ListNodesRequest) (*ListNodesResponse, error) {
	q := url.Values{}
	if req.ProjectID != "" {
		q.Set("project", req.ProjectID)
	}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}
	if len(req.Type) > 0 {
		q.Set("type", strings.Join(req.Type, ","))
	}
	if req.Owner != "" {
		q.Set("owner", req.Owner)
	}
	if req.Team != "" {
		q.Set("team", req.Team)
	}
	if req.Priority != nil {
		q.Set("priority", fmt.Sprintf("%d", *req.Priority))
	}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/nodes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListNodesResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateNode(ctx context.Context, id string, req *UpdateNodeRequest) (*model.Node, error) {
	var node model.Node
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/nodes/"+url.PathEscape(id), req, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func (c *HTTPClient) CompleteNode(ctx context.Context, id, completedBy string) (*CompleteNodeResponse, error) {
	body := map[string]string{}
	if completedBy != "" {
		body["completed_by"] = completedBy
	}
	var resp CompleteNodeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/nodes/"+url.PathEscape(id)+"/complete", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ReopenNode(ctx context.Context, id, reopenedBy string) (*model.Node, error) {
	body := map[string]string{}
	if reopenedBy != "" {
		body["reopened_by"] = reopenedBy
	}
	var node model.Node
	if err := c.doJSON(ctx, http.MethodPost, "/v1/nodes/"+url.PathEscape(id)+"/reopen", body, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func (c *HTTPClient) DeleteNode(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/nodes/"+url.PathEscape(id), nil, nil)
}

// --- Edges ---

func (c *HTTPClient) AddEdge(ctx context.Context, from, to, relation, createdBy string) (*model.Edge, error) {
	body := map[string]string{
		"to":         to,
		"relation":   relation,
		"created_by": createdBy,
	}
	var edge model.Edge
	if err := c.doJSON(ctx, http.MethodPost, "/v1/nodes/"+url.PathEscape(from)+"/edges", body, &edge); err != nil {
		return nil, err
	}
	return &edge, nil
}

func (c *HTTPClient) RemoveEdge(ctx context.Context, from, to, relation string) error {
	q := url.Values{}
	q.Set("to", to)
	q.Set("relation", relation)
	return c.doJSON(ctx, http.MethodDelete, "/v1/nodes/"+url.PathEscape(from)+"/edges?"+q.Encode(), nil, nil)
}

func (c *HTTPClient) GetEdges(ctx context.Context, nodeID string) ([]*model.Edge, error) {
	var resp struct {
		Edges []*model.Edge `json:"edges"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/nodes/"+url.PathEscape(nodeID)+"/edges", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Edges, nil
}

// --- Requests ---

func (c *HTTPClient) OpenRequest(ctx context.Context, nodeID string, req *OpenRequestRequest) (*model.Request, error) {
	var out model.Request
	if err := c.doJSON(ctx, http.MethodPost, "/v1/nodes/"+url.PathEscape(nodeID)+"/requests", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	var out model.Request
	if err := c.doJSON(ctx, http.MethodGet, "/v1/requests/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListRequests(ctx context.Context, nodeID string) ([]*model.Request, error) {
	var resp struct {
		Requests []*model.Request `json:"requests"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/nodes/"+url.PathEscape(nodeID)+"/requests", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}

func (c *HTTPClient) UpdateRequestStatus(ctx context.Context, id, status, response string) (*model.Request, error) {
	body := map[string]string{"status": status}
	if response != "" {
		body["response"] = response
	}
	var out model.Request
	if err := c.doJSON(ctx, http.MethodPost, "/v1/requests/"+url.PathEscape(id)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Graph views ---

func (c *HTTPClient) GetStatuses(ctx context.Context, projectID string) (map[string]NodeStatus, error) {
	var resp struct {
		Statuses map[string]NodeStatus `json:"statuses"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/projects/"+url.PathEscape(projectID)+"/statuses", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Statuses, nil
}

func (c *HTTPClient) GetBlocking(ctx context.Context, nodeID string) ([]model.BlockingReason, error) {
	var resp struct {
		Blocking []model.BlockingReason `json:"blocking"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/nodes/"+url.PathEscape(nodeID)+"/blocking", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Blocking, nil
}

func (c *HTTPClient) GetLayout(ctx context.Context, projectID string, columns int) (*LayoutResponse, error) {
	path := "/v1/projects/" + url.PathEscape(projectID) + "/layout"
	if columns > 0 {
		path += fmt.Sprintf("?columns=%d", columns)
	}
	var resp LayoutResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetGraph(ctx context.Context, projectID string) (*model.GraphResponse, error) {
	var resp model.GraphResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/projects/"+url.PathEscape(projectID)+"/graph", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetReady(ctx context.Context, projectID string) (*ListNodesResponse, error) {
	var resp ListNodesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/ready?project="+url.QueryEscape(projectID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetBlocked(ctx context.Context, projectID string) (*BlockedResponse, error) {
	var resp BlockedResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/blocked?project="+url.QueryEscape(projectID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Misc ---

func (c *HTTPClient) GetEvents(ctx context.Context, nodeID string) ([]*model.Event, error) {
	var resp struct {
		Events []*model.Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/nodes/"+url.PathEscape(nodeID)+"/events", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *HTTPClient) ListNotifications(ctx context.Context, ownerID string) ([]*model.Notification, error) {
	var resp struct {
		Notifications []*model.Notification `json:"notifications"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/notifications?owner="+url.QueryEscape(ownerID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
