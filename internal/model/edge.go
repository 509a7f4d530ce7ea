package model

import "time"

// Relation categorizes the directed relationship between two nodes.
type Relation string

const (
	// Gating relations: the from node cannot be considered unblocked until
	// the to node reaches done.
	RelDependsOn  Relation = "depends_on"
	RelApprovalBy Relation = "approval_by"

	// Advisory relations: visualization only, never gate status.
	RelNeedsInfoFrom Relation = "needs_info_from"
	RelHandoffTo     Relation = "handoff_to"
)

// String returns the string representation of the relation.
func (r Relation) String() string {
	return string(r)
}

// IsValid checks whether the relation is a known value.
func (r Relation) IsValid() bool {
	switch r {
	case RelDependsOn, RelApprovalBy, RelNeedsInfoFrom, RelHandoffTo:
		return true
	}
	return false
}

// Gates reports whether the relation blocks the from node until the to
// node is done.
func (r Relation) Gates() bool {
	return r == RelDependsOn || r == RelApprovalBy
}

// Edge represents a directed relationship between two nodes in one project.
type Edge struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Relation  Relation  `json:"relation"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}
