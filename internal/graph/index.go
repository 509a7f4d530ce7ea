// Package graph implements the status compute and layout engines. Every
// function in this package is a pure function of a project snapshot: no
// mutation of inputs, no shared state, safe for concurrent use.
package graph

import "github.com/trellishq/trellis/internal/model"

// Index holds adjacency structures built once per snapshot and shared by
// status computation and blocking-detail resolution, so neither has to
// rescan the edge and request lists per node.
type Index struct {
	nodes    map[string]*model.Node
	outgoing map[string][]*model.Edge    // from node ID -> outgoing edges, declaration order
	active   map[string][]*model.Request // node ID -> active requests, list order
}

// NewIndex builds an Index from a snapshot. The snapshot is not mutated.
func NewIndex(snap *model.Snapshot) *Index {
	idx := &Index{
		nodes:    make(map[string]*model.Node, len(snap.Nodes)),
		outgoing: make(map[string][]*model.Edge),
		active:   make(map[string][]*model.Request),
	}
	for _, n := range snap.Nodes {
		idx.nodes[n.ID] = n
	}
	for _, e := range snap.Edges {
		idx.outgoing[e.From] = append(idx.outgoing[e.From], e)
	}
	for _, r := range snap.Requests {
		if r.Status.Active() {
			idx.active[r.NodeID] = append(idx.active[r.NodeID], r)
		}
	}
	return idx
}

// Node returns the node with the given ID, or nil if it is not in the snapshot.
func (idx *Index) Node(id string) *model.Node {
	return idx.nodes[id]
}

// Outgoing returns the outgoing edges of a node in declaration order.
func (idx *Index) Outgoing(id string) []*model.Edge {
	return idx.outgoing[id]
}

// ActiveRequests returns the unresolved requests linked to a node.
func (idx *Index) ActiveRequests(id string) []*model.Request {
	return idx.active[id]
}
