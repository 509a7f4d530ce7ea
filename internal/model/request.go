package model

import "time"

// RequestStatus is the lifecycle state of a request.
type RequestStatus string

const (
	RequestOpen      RequestStatus = "open"
	RequestResponded RequestStatus = "responded"
	RequestApproved  RequestStatus = "approved"
	RequestClosed    RequestStatus = "closed"
)

// String returns the string representation of the request status.
func (s RequestStatus) String() string {
	return string(s)
}

// IsValid checks whether the request status is a known value.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestOpen, RequestResponded, RequestApproved, RequestClosed:
		return true
	}
	return false
}

// Active reports whether the request is unresolved. An active request
// gates the node it is linked to; approved and closed are terminal.
func (s RequestStatus) Active() bool {
	return s == RequestOpen || s == RequestResponded
}

// Request is an out-of-band question linked to exactly one node.
// It is addressed to a user or a team, not both.
type Request struct {
	ID         string        `json:"id"`
	NodeID     string        `json:"node_id"`
	Status     RequestStatus `json:"status"`
	Question   string        `json:"question"`
	Response   string        `json:"response,omitempty"`
	AssignedTo string        `json:"assigned_to,omitempty"`
	TeamID     string        `json:"team_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	CreatedBy  string        `json:"created_by,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
