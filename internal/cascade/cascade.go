// Package cascade walks the dependents of a just-completed node and emits
// unblock notifications for any node that became actionable.
package cascade

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trellishq/trellis/internal/model"
)

// Sink receives generated notifications. Implementations must honor
// DedupeKey as a uniqueness constraint: a duplicate emit reports
// created=false instead of erroring, which is what makes retries and
// concurrent cascades safe.
type Sink interface {
	Emit(ctx context.Context, n *model.Notification) (created bool, err error)
}

// Delivery records one notification emitted (or deduplicated) by a cascade run.
type Delivery struct {
	NodeID  string `json:"node_id"`
	OwnerID string `json:"owner_id"`
}

// Cascader triggers unblock notifications through a sink.
type Cascader struct {
	sink   Sink
	logger *slog.Logger
}

// New returns a Cascader emitting through the given sink.
func New(sink Sink, logger *slog.Logger) *Cascader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascader{sink: sink, logger: logger}
}

// Trigger runs the unblock cascade for a node that just transitioned to
// done. The caller detects the transition and invokes Trigger exactly once
// per transition; repeat invocations are harmless because the sink
// deduplicates on the notification key.
//
// For every node with a depends_on edge pointing at the completed node, the
// node's owners are notified when (a) all of its other depends_on targets
// are done and (b) its own manual status is still todo — a node already
// doing or done is not newly actionable and is not re-notified.
//
// A failure emitting to one owner is collected and does not stop the rest
// of the cascade.
func (c *Cascader) Trigger(ctx context.Context, completedNodeID string, snap *model.Snapshot) ([]Delivery, []error) {
	byID := make(map[string]*model.Node, len(snap.Nodes))
	for _, n := range snap.Nodes {
		byID[n.ID] = n
	}

	var notified []Delivery
	var errs []error
	for _, candidate := range candidates(completedNodeID, snap, byID) {
		for _, owner := range candidate.Owners {
			n := &model.Notification{
				NodeID:    candidate.ID,
				OwnerID:   owner,
				Title:     "Unblocked: " + candidate.Title,
				Message:   fmt.Sprintf("All dependencies of %q are complete. It is ready to start.", candidate.Title),
				DedupeKey: model.UnblockDedupeKey(candidate.ID, owner),
			}
			created, err := c.sink.Emit(ctx, n)
			if err != nil {
				c.logger.Warn("unblock notification failed",
					"node_id", candidate.ID, "owner_id", owner, "error", err)
				errs = append(errs, fmt.Errorf("notify %s for %s: %w", owner, candidate.ID, err))
				continue
			}
			if !created {
				// Deduplicated at the sink; already delivered by an earlier
				// run or a concurrent sibling cascade.
				continue
			}
			notified = append(notified, Delivery{NodeID: candidate.ID, OwnerID: owner})
		}
	}
	return notified, errs
}

// candidates returns the dependents of the completed node that are newly
// actionable, in edge declaration order without duplicates.
func candidates(completedNodeID string, snap *model.Snapshot, byID map[string]*model.Node) []*model.Node {
	var out []*model.Node
	seen := make(map[string]bool)
	for _, e := range snap.Edges {
		if e.Relation != model.RelDependsOn || e.To != completedNodeID {
			continue
		}
		if seen[e.From] {
			continue
		}
		seen[e.From] = true

		dependent := byID[e.From]
		if dependent == nil || dependent.Status != model.StatusTodo {
			continue
		}
		if othersSatisfied(dependent.ID, completedNodeID, snap, byID) {
			out = append(out, dependent)
		}
	}
	return out
}

// othersSatisfied reports whether every depends_on target of the node other
// than the just-completed one is done. Missing targets count as not done.
func othersSatisfied(nodeID, completedNodeID string, snap *model.Snapshot, byID map[string]*model.Node) bool {
	for _, e := range snap.Edges {
		if e.From != nodeID || e.Relation != model.RelDependsOn || e.To == completedNodeID {
			continue
		}
		target := byID[e.To]
		if target == nil || target.Status != model.StatusDone {
			return false
		}
	}
	return true
}
