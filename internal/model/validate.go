package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateNode checks a Node for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the node is valid.
func ValidateNode(n *Node) error {
	var ve ValidationError

	// Title: required and at most 500 characters.
	title := strings.TrimSpace(n.Title)
	if title == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	} else if len([]rune(title)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "must be 500 characters or fewer"})
	}

	if strings.TrimSpace(n.ProjectID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "project_id", Message: "is required"})
	}

	// Priority: must be 0-4.
	if n.Priority < 0 || n.Priority > 4 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "priority",
			Message: fmt.Sprintf("must be between 0 and 4, got %d", n.Priority),
		})
	}

	if !n.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value %q", n.Status),
		})
	}

	if !n.Type.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "type",
			Message: fmt.Sprintf("invalid value %q", n.Type),
		})
	}

	// CompletedAt consistency with Status.
	if n.Status == StatusDone && n.CompletedAt == nil {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "completed_at",
			Message: "is required when status is done",
		})
	}
	if n.Status != StatusDone && n.CompletedAt != nil {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "completed_at",
			Message: "must be nil when status is not done",
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateEdge checks an Edge for constraint violations. Self-loops are
// rejected here; dangling references are tolerated downstream by the
// status engine, so they are not checked.
func ValidateEdge(e *Edge) error {
	var ve ValidationError

	if strings.TrimSpace(e.From) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "from", Message: "is required"})
	}
	if strings.TrimSpace(e.To) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "to", Message: "is required"})
	}
	if e.From != "" && e.From == e.To {
		ve.Errors = append(ve.Errors, FieldError{Field: "to", Message: "must differ from from (no self-loops)"})
	}
	if !e.Relation.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "relation",
			Message: fmt.Sprintf("invalid value %q", e.Relation),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateRequest checks a Request for constraint violations. A request is
// addressed to a user or a team, not both.
func ValidateRequest(r *Request) error {
	var ve ValidationError

	if strings.TrimSpace(r.NodeID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "node_id", Message: "is required"})
	}
	if strings.TrimSpace(r.Question) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "question", Message: "is required"})
	}
	if !r.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value %q", r.Status),
		})
	}
	if r.AssignedTo != "" && r.TeamID != "" {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "assigned_to",
			Message: "cannot be set together with team_id",
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
