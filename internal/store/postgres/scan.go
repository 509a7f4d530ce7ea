package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"github.com/trellishq/trellis/internal/model"
)

// scannable is satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanNode(row scannable) (*model.Node, error) {
	var (
		n           model.Node
		nodeType    string
		status      string
		description sql.NullString
		createdBy   sql.NullString
		completedAt sql.NullTime
		dueAt       sql.NullTime
	)
	err := row.Scan(
		&n.ID,
		&n.ProjectID,
		&nodeType,
		&n.Title,
		&description,
		&status,
		&n.Priority,
		pq.Array(&n.Owners),
		pq.Array(&n.Teams),
		&n.CreatedAt,
		&createdBy,
		&n.UpdatedAt,
		&completedAt,
		&dueAt,
	)
	if err != nil {
		return nil, err
	}
	n.Type = model.NodeType(nodeType)
	n.Status = model.ManualStatus(status)
	n.Description = description.String
	n.CreatedBy = createdBy.String
	n.CompletedAt = timePtr(completedAt)
	n.DueAt = timePtr(dueAt)
	return &n, nil
}

// scanNodeWithTotal reads a list-query row whose first column is the
// COUNT(*) OVER() window total.
func scanNodeWithTotal(row scannable) (*model.Node, int, error) {
	var (
		n           model.Node
		total       int
		nodeType    string
		status      string
		description sql.NullString
		createdBy   sql.NullString
		completedAt sql.NullTime
		dueAt       sql.NullTime
	)
	err := row.Scan(
		&total,
		&n.ID,
		&n.ProjectID,
		&nodeType,
		&n.Title,
		&description,
		&status,
		&n.Priority,
		pq.Array(&n.Owners),
		pq.Array(&n.Teams),
		&n.CreatedAt,
		&createdBy,
		&n.UpdatedAt,
		&completedAt,
		&dueAt,
	)
	if err != nil {
		return nil, 0, err
	}
	n.Type = model.NodeType(nodeType)
	n.Status = model.ManualStatus(status)
	n.Description = description.String
	n.CreatedBy = createdBy.String
	n.CompletedAt = timePtr(completedAt)
	n.DueAt = timePtr(dueAt)
	return &n, total, nil
}

func scanEdge(row scannable) (*model.Edge, error) {
	var (
		e         model.Edge
		relation  string
		createdBy sql.NullString
	)
	err := row.Scan(&e.From, &e.To, &relation, &e.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	e.Relation = model.Relation(relation)
	e.CreatedBy = createdBy.String
	return &e, nil
}

func scanEdges(rows *sql.Rows) ([]*model.Edge, error) {
	var edges []*model.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return edges, nil
}

func scanRequest(row scannable) (*model.Request, error) {
	var (
		r          model.Request
		status     string
		response   sql.NullString
		assignedTo sql.NullString
		teamID     sql.NullString
		createdBy  sql.NullString
	)
	err := row.Scan(
		&r.ID,
		&r.NodeID,
		&status,
		&r.Question,
		&response,
		&assignedTo,
		&teamID,
		&r.CreatedAt,
		&createdBy,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = model.RequestStatus(status)
	r.Response = response.String
	r.AssignedTo = assignedTo.String
	r.TeamID = teamID.String
	r.CreatedBy = createdBy.String
	return &r, nil
}

func scanRequests(rows *sql.Rows) ([]*model.Request, error) {
	var requests []*model.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func scanNotification(row scannable) (*model.Notification, error) {
	var n model.Notification
	err := row.Scan(
		&n.ID,
		&n.NodeID,
		&n.OwnerID,
		&n.Title,
		&n.Message,
		&n.DedupeKey,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func scanEvent(row scannable) (*model.Event, error) {
	var (
		e       model.Event
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.NodeID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// jsonbBytes converts a raw payload for a JSONB parameter, mapping empty to NULL.
func jsonbBytes(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
