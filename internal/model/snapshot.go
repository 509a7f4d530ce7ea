package model

// Snapshot is the full node/edge/request state for one project, as returned
// by the store. The graph engine treats it as immutable.
type Snapshot struct {
	ProjectID string     `json:"project_id"`
	Nodes     []*Node    `json:"nodes"`
	Edges     []*Edge    `json:"edges"`
	Requests  []*Request `json:"requests"`
}

// GraphStats holds aggregate node counts by computed status.
type GraphStats struct {
	TotalBlocked int `json:"total_blocked"`
	TotalTodo    int `json:"total_todo"`
	TotalDoing   int `json:"total_doing"`
	TotalDone    int `json:"total_done"`
}

// GraphResponse is the response for the graph visualization endpoint.
type GraphResponse struct {
	Nodes []*Node     `json:"nodes"`
	Edges []*Edge     `json:"edges"`
	Stats *GraphStats `json:"stats"`
}

// NodeFilter holds criteria for querying nodes.
type NodeFilter struct {
	ProjectID string         `json:"project_id,omitempty"`
	Status    []ManualStatus `json:"status,omitempty"`
	Type      []NodeType     `json:"type,omitempty"`
	Owner     string         `json:"owner,omitempty"`
	Team      string         `json:"team,omitempty"`
	Priority  *int           `json:"priority,omitempty"`
	Search    string         `json:"search,omitempty"` // full-text search on title/description
	Sort      string         `json:"sort,omitempty"`   // e.g. "-priority", "created_at"; prefix "-" = descending
	Limit     int            `json:"limit,omitempty"`
	Offset    int            `json:"offset,omitempty"`
}
