package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/trellishq/trellis/internal/model"
)

// nodeColumns is the column list used for SELECT statements on the nodes table.
const nodeColumns = `id, project_id, type, title, description, status, priority,
	owners, teams, created_at, created_by, updated_at, completed_at, due_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateNode(ctx context.Context, db executor, n *model.Node) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO nodes (
			id, project_id, type, title, description, status, priority,
			owners, teams, created_at, created_by, updated_at, completed_at, due_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14
		)`,
		n.ID,
		n.ProjectID,
		string(n.Type),
		n.Title,
		n.Description,
		string(n.Status),
		n.Priority,
		pq.Array(n.Owners),
		pq.Array(n.Teams),
		n.CreatedAt,
		n.CreatedBy,
		n.UpdatedAt,
		nullTimePtr(n.CompletedAt),
		nullTimePtr(n.DueAt),
	)
	return err
}

func queryGetNode(ctx context.Context, db executor, id string) (*model.Node, error) {
	row := db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = $1`, id)
	n, err := scanNode(row)
	if err != nil {
		return nil, err
	}

	// Fetch outgoing edges.
	edges, err := queryGetEdges(ctx, db, id)
	if err != nil {
		return nil, err
	}
	n.Edges = edges

	// Fetch requests.
	requests, err := queryListRequests(ctx, db, id)
	if err != nil {
		return nil, err
	}
	n.Requests = requests

	return n, nil
}

func queryListNodes(ctx context.Context, db executor, filter model.NodeFilter) ([]*model.Node, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.ProjectID != "" {
		whereClauses = append(whereClauses, "project_id = "+nextArg())
		args = append(args, filter.ProjectID)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Type) > 0 {
		placeholders := make([]string, len(filter.Type))
		for i, t := range filter.Type {
			placeholders[i] = nextArg()
			args = append(args, string(t))
		}
		whereClauses = append(whereClauses, "type IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.Priority != nil {
		whereClauses = append(whereClauses, "priority = "+nextArg())
		args = append(args, *filter.Priority)
	}

	if filter.Owner != "" {
		whereClauses = append(whereClauses, nextArg()+" = ANY(owners)")
		args = append(args, filter.Owner)
	}

	if filter.Team != "" {
		whereClauses = append(whereClauses, nextArg()+" = ANY(teams)")
		args = append(args, filter.Team)
	}

	if filter.Search != "" {
		p := nextArg()
		whereClauses = append(whereClauses,
			fmt.Sprintf("(title ILIKE '%%' || %s || '%%' OR description ILIKE '%%' || %s || '%%')", p, p))
		args = append(args, filter.Search)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + nodeColumns + " FROM nodes" + whereSQL + " ORDER BY " + parseSortClause(filter.Sort)

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*model.Node
	var total int
	for rows.Next() {
		n, t, err := scanNodeWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan nodes: %w", err)
		}
		total = t
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan nodes: %w", err)
	}

	return nodes, total, nil
}

func queryUpdateNode(ctx context.Context, db executor, n *model.Node) error {
	return db.QueryRowContext(ctx, `
		UPDATE nodes SET
			type = $2,
			title = $3,
			description = $4,
			status = $5,
			priority = $6,
			owners = $7,
			teams = $8,
			updated_at = NOW(),
			completed_at = $9,
			due_at = $10
		WHERE id = $1
		RETURNING updated_at`,
		n.ID,
		string(n.Type),
		n.Title,
		n.Description,
		string(n.Status),
		n.Priority,
		pq.Array(n.Owners),
		pq.Array(n.Teams),
		nullTimePtr(n.CompletedAt),
		nullTimePtr(n.DueAt),
	).Scan(&n.UpdatedAt)
}

func queryCompleteNode(ctx context.Context, db executor, id string, completedBy string) (*model.Node, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE nodes
		SET status = 'done', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING `+nodeColumns,
		id,
	)
	n, err := scanNode(row)
	if err != nil {
		return nil, err
	}
	_ = completedBy // recorded on the event by the caller, not on the row

	edges, err := queryGetEdges(ctx, db, id)
	if err != nil {
		return nil, err
	}
	n.Edges = edges

	return n, nil
}

func queryReopenNode(ctx context.Context, db executor, id string) (*model.Node, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE nodes
		SET status = 'todo', completed_at = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING `+nodeColumns,
		id,
	)
	return scanNode(row)
}

func queryDeleteNode(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM nodes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryAddEdge(ctx context.Context, db executor, e *model.Edge) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO edges (from_id, to_id, relation, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5)`,
		e.From,
		e.To,
		string(e.Relation),
		e.CreatedAt,
		e.CreatedBy,
	)
	return err
}

func queryRemoveEdge(ctx context.Context, db executor, from, to string, relation model.Relation) error {
	_, err := db.ExecContext(ctx, `
		DELETE FROM edges
		WHERE from_id = $1 AND to_id = $2 AND relation = $3`,
		from, to, string(relation),
	)
	return err
}

func queryGetEdges(ctx context.Context, db executor, nodeID string) ([]*model.Edge, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT from_id, to_id, relation, created_at, created_by
		FROM edges WHERE from_id = $1
		ORDER BY created_at, to_id`,
		nodeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEdges(rows)
}

func queryCreateRequest(ctx context.Context, db executor, r *model.Request) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO requests (
			id, node_id, status, question, response, assigned_to, team_id,
			created_at, created_by, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID,
		r.NodeID,
		string(r.Status),
		r.Question,
		r.Response,
		r.AssignedTo,
		r.TeamID,
		r.CreatedAt,
		r.CreatedBy,
		r.UpdatedAt,
	)
	return err
}

func queryGetRequest(ctx context.Context, db executor, id string) (*model.Request, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, node_id, status, question, response, assigned_to, team_id,
			created_at, created_by, updated_at
		FROM requests WHERE id = $1`,
		id,
	)
	return scanRequest(row)
}

func queryListRequests(ctx context.Context, db executor, nodeID string) ([]*model.Request, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, node_id, status, question, response, assigned_to, team_id,
			created_at, created_by, updated_at
		FROM requests WHERE node_id = $1
		ORDER BY created_at, id`,
		nodeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func queryUpdateRequestStatus(ctx context.Context, db executor, id string, status model.RequestStatus, response string) (*model.Request, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE requests
		SET status = $2, response = COALESCE(NULLIF($3, ''), response), updated_at = NOW()
		WHERE id = $1
		RETURNING id, node_id, status, question, response, assigned_to, team_id,
			created_at, created_by, updated_at`,
		id, string(status), response,
	)
	return scanRequest(row)
}

// queryGetSnapshot loads the whole project in three queries. Edge and
// request rows are scoped through their from/linked node's project.
func queryGetSnapshot(ctx context.Context, db executor, projectID string) (*model.Snapshot, error) {
	snap := &model.Snapshot{ProjectID: projectID}

	nodeRows, err := db.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes
		WHERE project_id = $1
		ORDER BY created_at, id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot nodes: %w", err)
	}
	defer nodeRows.Close()
	for nodeRows.Next() {
		n, err := scanNode(nodeRows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot node: %w", err)
		}
		snap.Nodes = append(snap.Nodes, n)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, fmt.Errorf("scan snapshot nodes: %w", err)
	}

	edgeRows, err := db.QueryContext(ctx, `
		SELECT e.from_id, e.to_id, e.relation, e.created_at, e.created_by
		FROM edges e JOIN nodes n ON e.from_id = n.id
		WHERE n.project_id = $1
		ORDER BY e.created_at, e.from_id, e.to_id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot edges: %w", err)
	}
	defer edgeRows.Close()
	snap.Edges, err = scanEdges(edgeRows)
	if err != nil {
		return nil, fmt.Errorf("scan snapshot edges: %w", err)
	}

	reqRows, err := db.QueryContext(ctx, `
		SELECT r.id, r.node_id, r.status, r.question, r.response, r.assigned_to, r.team_id,
			r.created_at, r.created_by, r.updated_at
		FROM requests r JOIN nodes n ON r.node_id = n.id
		WHERE n.project_id = $1
		ORDER BY r.created_at, r.id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot requests: %w", err)
	}
	defer reqRows.Close()
	snap.Requests, err = scanRequests(reqRows)
	if err != nil {
		return nil, fmt.Errorf("scan snapshot requests: %w", err)
	}

	return snap, nil
}

// queryCreateNotification inserts a notification, relying on the unique
// dedupe_key constraint to collapse duplicates. Returns false when the key
// already existed.
func queryCreateNotification(ctx context.Context, db executor, n *model.Notification) (bool, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO notifications (node_id, owner_id, title, message, dedupe_key, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (dedupe_key) DO NOTHING`,
		n.NodeID,
		n.OwnerID,
		n.Title,
		n.Message,
		n.DedupeKey,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func queryListNotifications(ctx context.Context, db executor, ownerID string) ([]*model.Notification, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, node_id, owner_id, title, message, dedupe_key, created_at
		FROM notifications WHERE owner_id = $1
		ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, node_id, actor, payload, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`,
		e.Topic,
		e.NodeID,
		e.Actor,
		jsonbBytes(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func queryGetEvents(ctx context.Context, db executor, nodeID string) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, node_id, actor, payload, created_at
		FROM events WHERE node_id = $1
		ORDER BY created_at, id`,
		nodeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// parseSortClause converts a filter sort string ("-priority", "created_at")
// into a safe ORDER BY clause. Unknown columns fall back to created_at DESC.
func parseSortClause(sort string) string {
	if sort == "" {
		return "created_at DESC"
	}
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	allowed := map[string]bool{
		"priority": true, "created_at": true, "updated_at": true,
		"title": true, "status": true, "type": true, "due_at": true,
	}
	if !allowed[col] {
		return "created_at DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
