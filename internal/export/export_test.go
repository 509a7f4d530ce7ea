package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trellishq/trellis/internal/model"
	"github.com/trellishq/trellis/internal/store"
)

type fakeStore struct {
	store.Store

	snapshots map[string]*model.Snapshot
	nodes     []*model.Node
}

func (f *fakeStore) GetSnapshot(_ context.Context, projectID string) (*model.Snapshot, error) {
	if snap, ok := f.snapshots[projectID]; ok {
		return snap, nil
	}
	return &model.Snapshot{ProjectID: projectID}, nil
}

func (f *fakeStore) ListNodes(_ context.Context, _ model.NodeFilter) ([]*model.Node, int, error) {
	return f.nodes, len(f.nodes), nil
}

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		ProjectID: "proj-1",
		Nodes: []*model.Node{
			{ID: "nd-b", ProjectID: "proj-1", Title: "Second", Status: model.StatusTodo,
				Edges: []*model.Edge{{From: "nd-b", To: "nd-a", Relation: model.RelDependsOn}}},
			{ID: "nd-a", ProjectID: "proj-1", Title: "First", Status: model.StatusDone},
		},
		Edges: []*model.Edge{
			{From: "nd-b", To: "nd-a", Relation: model.RelDependsOn},
		},
		Requests: []*model.Request{
			{ID: "rq-1", NodeID: "nd-b", Status: model.RequestOpen, Question: "Which?"},
		},
	}
}

func decodeLines(t *testing.T, data []byte) []map[string]json.RawMessage {
	t.Helper()
	var lines []map[string]json.RawMessage
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("bad JSONL line %q: %v", scanner.Text(), err)
		}
		lines = append(lines, m)
	}
	return lines
}

func lineType(t *testing.T, m map[string]json.RawMessage) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(m["type"], &s); err != nil {
		t.Fatalf("line missing type: %v", err)
	}
	return s
}

func TestJSONL(t *testing.T) {
	fs := &fakeStore{snapshots: map[string]*model.Snapshot{"proj-1": testSnapshot()}}

	var buf bytes.Buffer
	if err := JSONL(context.Background(), fs, []string{"proj-1"}, &buf); err != nil {
		t.Fatalf("JSONL: %v", err)
	}

	lines := decodeLines(t, buf.Bytes())
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines (header + 2 nodes + edge + request), got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal(buf.Bytes()[:bytes.IndexByte(buf.Bytes(), '\n')], &h); err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if h.Type != "header" || h.Version != "1" {
		t.Errorf("header = %+v", h)
	}
	if h.NodeCount != 2 || h.EdgeCount != 1 || h.RequestCount != 1 || h.ProjectCount != 1 {
		t.Errorf("header counts = %+v", h)
	}

	// Nodes sorted by ID, then edges, then requests.
	wantTypes := []string{"header", "node", "node", "edge", "request"}
	for i, want := range wantTypes {
		if got := lineType(t, lines[i]); got != want {
			t.Errorf("line %d type = %q, want %q", i, got, want)
		}
	}

	var first struct {
		Data model.Node `json:"data"`
	}
	if err := json.Unmarshal(mustMarshal(t, lines[1]), &first); err != nil {
		t.Fatalf("decode first node: %v", err)
	}
	if first.Data.ID != "nd-a" {
		t.Errorf("first node = %q, want nd-a", first.Data.ID)
	}
	if first.Data.Edges != nil {
		t.Error("node record carries embedded edges; they belong in edge records")
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestJSONLDiscoversProjects(t *testing.T) {
	fs := &fakeStore{
		snapshots: map[string]*model.Snapshot{"proj-1": testSnapshot()},
		nodes: []*model.Node{
			{ID: "nd-a", ProjectID: "proj-1"},
			{ID: "nd-b", ProjectID: "proj-1"},
			{ID: "nd-z", ProjectID: "proj-2"},
		},
	}

	var buf bytes.Buffer
	if err := JSONL(context.Background(), fs, nil, &buf); err != nil {
		t.Fatalf("JSONL: %v", err)
	}

	var h header
	if err := json.Unmarshal(buf.Bytes()[:bytes.IndexByte(buf.Bytes(), '\n')], &h); err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if h.ProjectCount != 2 {
		t.Errorf("project count = %d, want 2", h.ProjectCount)
	}
}

func TestFileDestination(t *testing.T) {
	dir := t.TempDir()
	dest, err := NewFileDestination(dir, "export.jsonl")
	if err != nil {
		t.Fatalf("NewFileDestination: %v", err)
	}

	if err := dest.Write(context.Background(), []byte("first\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := dest.Write(context.Background(), []byte("second\n")); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "export.jsonl"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "second\n" {
		t.Errorf("export content = %q, want replacement", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

type signalDestination struct {
	ch chan []byte
}

func (d *signalDestination) Write(_ context.Context, data []byte) error {
	select {
	case d.ch <- data:
	default:
	}
	return nil
}

func TestSchedulerRunsImmediately(t *testing.T) {
	fs := &fakeStore{snapshots: map[string]*model.Snapshot{"proj-1": testSnapshot()}}
	dest := &signalDestination{ch: make(chan []byte, 1)}

	sched := NewScheduler(fs, []Destination{dest}, []string{"proj-1"}, time.Hour, nil)
	sched.Start()
	defer sched.Stop()

	select {
	case data := <-dest.ch:
		if len(decodeLines(t, data)) != 5 {
			t.Errorf("unexpected export size")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no export within 2s of Start")
	}
}
