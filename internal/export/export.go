// Package export serializes project graphs to JSONL and ships them to
// configured destinations on a schedule.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/trellishq/trellis/internal/model"
	"github.com/trellishq/trellis/internal/store"
)

// header is the first JSONL record written by JSONL.
type header struct {
	Version      string    `json:"version"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	ProjectCount int       `json:"project_count"`
	NodeCount    int       `json:"node_count"`
	EdgeCount    int       `json:"edge_count"`
	RequestCount int       `json:"request_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type    string `json:"type"`
	Project string `json:"project,omitempty"`
	Data    any    `json:"data"`
}

// JSONL writes the full graph state of the given projects as JSONL to w.
// When projects is empty, every project present in the store is exported.
// Nodes are sorted by ID within each project so the output is diffable.
func JSONL(ctx context.Context, s store.Store, projects []string, w io.Writer) error {
	if len(projects) == 0 {
		var err error
		projects, err = allProjects(ctx, s)
		if err != nil {
			return err
		}
	}
	sort.Strings(projects)

	snaps := make([]*model.Snapshot, 0, len(projects))
	var nodeCount, edgeCount, requestCount int
	for _, p := range projects {
		snap, err := s.GetSnapshot(ctx, p)
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", p, err)
		}
		sort.Slice(snap.Nodes, func(i, j int) bool {
			return snap.Nodes[i].ID < snap.Nodes[j].ID
		})
		nodeCount += len(snap.Nodes)
		edgeCount += len(snap.Edges)
		requestCount += len(snap.Requests)
		snaps = append(snaps, snap)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:      "1",
		Type:         "header",
		Timestamp:    time.Now().UTC(),
		ProjectCount: len(snaps),
		NodeCount:    nodeCount,
		EdgeCount:    edgeCount,
		RequestCount: requestCount,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, snap := range snaps {
		for _, n := range snap.Nodes {
			// Relational fields travel as separate records.
			clone := *n
			clone.Edges = nil
			clone.Requests = nil
			if err := enc.Encode(record{Type: "node", Project: snap.ProjectID, Data: &clone}); err != nil {
				return fmt.Errorf("encode node %s: %w", n.ID, err)
			}
		}
		for _, e := range snap.Edges {
			if err := enc.Encode(record{Type: "edge", Project: snap.ProjectID, Data: e}); err != nil {
				return fmt.Errorf("encode edge %s->%s: %w", e.From, e.To, err)
			}
		}
		for _, r := range snap.Requests {
			if err := enc.Encode(record{Type: "request", Project: snap.ProjectID, Data: r}); err != nil {
				return fmt.Errorf("encode request %s: %w", r.ID, err)
			}
		}
	}

	return nil
}

// allProjects derives the distinct project IDs from an unfiltered node listing.
func allProjects(ctx context.Context, s store.Store) ([]string, error) {
	nodes, _, err := s.ListNodes(ctx, model.NodeFilter{Sort: "created_at"})
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	seen := make(map[string]bool)
	var projects []string
	for _, n := range nodes {
		if !seen[n.ProjectID] {
			seen[n.ProjectID] = true
			projects = append(projects, n.ProjectID)
		}
	}
	return projects, nil
}
