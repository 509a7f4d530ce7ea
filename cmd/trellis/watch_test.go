package main

import (
	"testing"
	"time"

	"github.com/trellishq/trellis/internal/model"
)

func TestDiffNodes(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	seen := make(map[string]time.Time)

	// First pass: everything is new.
	nodes := []*model.Node{
		{ID: "nd-a", UpdatedAt: t0},
		{ID: "nd-b", UpdatedAt: t0},
	}
	changed := diffNodes(nodes, seen)
	if len(changed) != 2 {
		t.Fatalf("first pass changed = %d, want 2", len(changed))
	}

	// Second pass with no updates: nothing changed.
	changed = diffNodes(nodes, seen)
	if len(changed) != 0 {
		t.Fatalf("unchanged pass changed = %d, want 0", len(changed))
	}

	// One node updated: only that one reported.
	nodes[1] = &model.Node{ID: "nd-b", UpdatedAt: t1}
	changed = diffNodes(nodes, seen)
	if len(changed) != 1 || changed[0].ID != "nd-b" {
		t.Fatalf("changed = %+v, want just nd-b", changed)
	}

	// New node appears alongside known ones.
	nodes = append(nodes, &model.Node{ID: "nd-c", UpdatedAt: t1})
	changed = diffNodes(nodes, seen)
	if len(changed) != 1 || changed[0].ID != "nd-c" {
		t.Fatalf("changed = %+v, want just nd-c", changed)
	}
}
