package model

import "time"

// ManualStatus is the author-controlled lifecycle state of a node.
// It is the only status that is persisted; everything else is derived.
type ManualStatus string

const (
	StatusTodo  ManualStatus = "todo"
	StatusDoing ManualStatus = "doing"
	StatusDone  ManualStatus = "done"
)

// String returns the string representation of the status.
func (s ManualStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s ManualStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// NodeType categorizes a node. The type is descriptive only; it never
// participates in status computation.
type NodeType string

const (
	TypeTask        NodeType = "task"
	TypeDecision    NodeType = "decision"
	TypeBlocker     NodeType = "blocker"
	TypeInfoRequest NodeType = "info_request"
)

// String returns the string representation of the node type.
func (t NodeType) String() string {
	return string(t)
}

// IsValid checks whether the node type is a known value.
func (t NodeType) IsValid() bool {
	switch t {
	case TypeTask, TypeDecision, TypeBlocker, TypeInfoRequest:
		return true
	}
	return false
}

// Node is the core work-item record.
type Node struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"project_id"`
	Type        NodeType     `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      ManualStatus `json:"status"`
	Priority    int          `json:"priority"`
	Owners      []string     `json:"owners,omitempty"`
	Teams       []string     `json:"teams,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	CreatedBy   string       `json:"created_by,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	DueAt       *time.Time   `json:"due_at,omitempty"`

	// Relational data -- populated by queries, not stored in the nodes table.
	Edges    []*Edge    `json:"edges,omitempty"`
	Requests []*Request `json:"requests,omitempty"`
}
