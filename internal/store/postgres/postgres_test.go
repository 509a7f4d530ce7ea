package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/trellishq/trellis/internal/model"
	"github.com/trellishq/trellis/internal/store"
)

func newMockDB(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return &PostgresStore{db: db}, mock
}

var nodeColumnList = []string{
	"id", "project_id", "type", "title", "description", "status", "priority",
	"owners", "teams", "created_at", "created_by", "updated_at", "completed_at", "due_at",
}

func nodeRow(id string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(nodeColumnList).AddRow(
		id, "proj-1", "task", "Ship it", "desc", "todo", 2,
		[]byte("{alice,bob}"), []byte("{platform}"), now, "alice", now, nil, nil,
	)
}

func TestParseSortClause(t *testing.T) {
	tests := []struct {
		name string
		sort string
		want string
	}{
		{"empty defaults", "", "created_at DESC"},
		{"ascending column", "priority", "priority ASC"},
		{"descending column", "-priority", "priority DESC"},
		{"due date", "due_at", "due_at ASC"},
		{"unknown column rejected", "owners; DROP TABLE nodes", "created_at DESC"},
		{"unknown descending rejected", "-sneaky", "created_at DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseSortClause(tt.sort); got != tt.want {
				t.Errorf("parseSortClause(%q) = %q, want %q", tt.sort, got, tt.want)
			}
		})
	}
}

func TestCreateNode(t *testing.T) {
	s, mock := newMockDB(t)

	now := time.Now()
	n := &model.Node{
		ID:        "nd-abc",
		ProjectID: "proj-1",
		Type:      model.TypeTask,
		Title:     "Ship it",
		Status:    model.StatusTodo,
		Priority:  2,
		Owners:    []string{"alice"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO nodes")).
		WithArgs(
			n.ID, n.ProjectID, "task", n.Title, "", "todo", 2,
			sqlmock.AnyArg(), sqlmock.AnyArg(), now, "", now,
			sql.NullTime{}, sql.NullTime{},
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.CreateNode(context.Background(), n); err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
}

func TestGetNode(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM nodes WHERE id = $1")).
		WithArgs("nd-abc").
		WillReturnRows(nodeRow("nd-abc"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM edges WHERE from_id = $1")).
		WithArgs("nd-abc").
		WillReturnRows(sqlmock.NewRows([]string{"from_id", "to_id", "relation", "created_at", "created_by"}).
			AddRow("nd-abc", "nd-def", "depends_on", time.Now(), "alice"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM requests WHERE node_id = $1")).
		WithArgs("nd-abc").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "node_id", "status", "question", "response", "assigned_to", "team_id",
			"created_at", "created_by", "updated_at",
		}))

	n, err := s.GetNode(context.Background(), "nd-abc")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if n.ID != "nd-abc" || n.Title != "Ship it" {
		t.Errorf("unexpected node: %+v", n)
	}
	if len(n.Owners) != 2 || n.Owners[0] != "alice" {
		t.Errorf("owners = %v, want [alice bob]", n.Owners)
	}
	if len(n.Edges) != 1 || n.Edges[0].To != "nd-def" {
		t.Errorf("edges = %+v, want one edge to nd-def", n.Edges)
	}
}

func TestGetNodeNotFound(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM nodes WHERE id = $1")).
		WithArgs("nd-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetNode(context.Background(), "nd-missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestListNodesFilter(t *testing.T) {
	s, mock := newMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows(append([]string{"total_count"}, nodeColumnList...)).
		AddRow(7, "nd-1", "proj-1", "task", "One", nil, "todo", 0,
			[]byte("{}"), []byte("{}"), now, nil, now, nil, nil).
		AddRow(7, "nd-2", "proj-1", "task", "Two", nil, "doing", 1,
			[]byte("{}"), []byte("{}"), now, nil, now, nil, nil)

	mock.ExpectQuery(`SELECT COUNT\(\*\) OVER\(\) AS total_count.+WHERE project_id = \$1 AND status IN \(\$2, \$3\).+ORDER BY priority DESC LIMIT \$4`).
		WithArgs("proj-1", "todo", "doing", 10).
		WillReturnRows(rows)

	nodes, total, err := s.ListNodes(context.Background(), model.NodeFilter{
		ProjectID: "proj-1",
		Status:    []model.ManualStatus{model.StatusTodo, model.StatusDoing},
		Sort:      "-priority",
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("ListNodes: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if len(nodes) != 2 || nodes[1].Status != model.StatusDoing {
		t.Errorf("unexpected nodes: %+v", nodes)
	}
}

func TestListNodesOwnerFilter(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectQuery(`\$1 = ANY\(owners\)`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(append([]string{"total_count"}, nodeColumnList...)))

	nodes, total, err := s.ListNodes(context.Background(), model.NodeFilter{Owner: "alice"})
	if err != nil {
		t.Fatalf("ListNodes: %v", err)
	}
	if total != 0 || len(nodes) != 0 {
		t.Errorf("got %d nodes (total %d), want none", len(nodes), total)
	}
}

func TestCompleteNode(t *testing.T) {
	s, mock := newMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows(nodeColumnList).AddRow(
		"nd-abc", "proj-1", "task", "Ship it", nil, "done", 0,
		[]byte("{}"), []byte("{}"), now, nil, now, now, nil,
	)
	mock.ExpectQuery(regexp.QuoteMeta("SET status = 'done', completed_at = NOW()")).
		WithArgs("nd-abc").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM edges WHERE from_id = $1")).
		WithArgs("nd-abc").
		WillReturnRows(sqlmock.NewRows([]string{"from_id", "to_id", "relation", "created_at", "created_by"}))

	n, err := s.CompleteNode(context.Background(), "nd-abc", "alice")
	if err != nil {
		t.Fatalf("CompleteNode: %v", err)
	}
	if n.Status != model.StatusDone {
		t.Errorf("status = %q, want done", n.Status)
	}
	if n.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}
}

func TestDeleteNodeNotFound(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM nodes WHERE id = $1")).
		WithArgs("nd-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteNode(context.Background(), "nd-missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestCreateNotificationDedupe(t *testing.T) {
	s, mock := newMockDB(t)

	n := &model.Notification{
		NodeID:    "nd-abc",
		OwnerID:   "alice",
		Title:     "Unblocked",
		Message:   "Ship it is ready to start",
		DedupeKey: model.UnblockDedupeKey("nd-abc", "alice"),
	}

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (dedupe_key) DO NOTHING")).
		WithArgs(n.NodeID, n.OwnerID, n.Title, n.Message, n.DedupeKey).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := s.CreateNotification(context.Background(), n)
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if !created {
		t.Error("created = false on first insert, want true")
	}

	// Second insert with the same key affects zero rows.
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (dedupe_key) DO NOTHING")).
		WithArgs(n.NodeID, n.OwnerID, n.Title, n.Message, n.DedupeKey).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err = s.CreateNotification(context.Background(), n)
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if created {
		t.Error("created = true on duplicate insert, want false")
	}
}

func TestGetSnapshot(t *testing.T) {
	s, mock := newMockDB(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE project_id = $1")).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows(nodeColumnList).
			AddRow("nd-1", "proj-1", "task", "One", nil, "done", 0,
				[]byte("{}"), []byte("{}"), now, nil, now, now, nil).
			AddRow("nd-2", "proj-1", "task", "Two", nil, "todo", 0,
				[]byte("{}"), []byte("{}"), now, nil, now, nil, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM edges e JOIN nodes n ON e.from_id = n.id")).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"from_id", "to_id", "relation", "created_at", "created_by"}).
			AddRow("nd-2", "nd-1", "depends_on", now, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM requests r JOIN nodes n ON r.node_id = n.id")).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "node_id", "status", "question", "response", "assigned_to", "team_id",
			"created_at", "created_by", "updated_at",
		}))

	snap, err := s.GetSnapshot(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if len(snap.Nodes) != 2 || len(snap.Edges) != 1 || len(snap.Requests) != 0 {
		t.Errorf("snapshot counts = %d/%d/%d, want 2/1/0",
			len(snap.Nodes), len(snap.Edges), len(snap.Requests))
	}
	if snap.Edges[0].Relation != model.RelDependsOn {
		t.Errorf("edge relation = %q", snap.Edges[0].Relation)
	}
}

func TestRunInTransactionCommit(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM edges")).
		WithArgs("nd-1", "nd-2", "depends_on").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.RemoveEdge(context.Background(), "nd-1", "nd-2", model.RelDependsOn)
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
}

func TestRunInTransactionRollback(t *testing.T) {
	s, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("boom")
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
