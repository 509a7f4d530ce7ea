package model

// ComputedStatus is the derived lifecycle value for a node. It is a pure
// function of a project snapshot, recomputed on demand and never persisted.
type ComputedStatus string

const (
	ComputedBlocked ComputedStatus = "blocked"
	ComputedWaiting ComputedStatus = "waiting"
	ComputedTodo    ComputedStatus = "todo"
	ComputedDoing   ComputedStatus = "doing"
	ComputedDone    ComputedStatus = "done"
)

// String returns the string representation of the computed status.
func (s ComputedStatus) String() string {
	return string(s)
}

// ReasonKind categorizes a blocking reason.
type ReasonKind string

const (
	ReasonDependency ReasonKind = "dependency"
	ReasonApproval   ReasonKind = "approval"
	ReasonRequest    ReasonKind = "request"
)

// BlockingReason explains one cause of a node being blocked, with enough
// detail to render a human explanation. For dependency and approval kinds
// the target fields are set; for request kinds the request fields are set.
type BlockingReason struct {
	Kind ReasonKind `json:"kind"`

	TargetID     string       `json:"target_id,omitempty"`
	TargetTitle  string       `json:"target_title,omitempty"`
	TargetStatus ManualStatus `json:"target_status,omitempty"`
	// TargetMissing is set when the edge references a node that is absent
	// from the snapshot. Missing targets still block.
	TargetMissing bool `json:"target_missing,omitempty"`

	RequestID     string        `json:"request_id,omitempty"`
	RequestStatus RequestStatus `json:"request_status,omitempty"`
}
