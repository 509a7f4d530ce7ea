package graph

import "github.com/trellishq/trellis/internal/model"

// ComputeStatuses derives the computed status of every node in the snapshot.
//
// The rule per node, first match wins:
//  1. manual status done -> done. Completion is authoritative; a done node
//     is never blocked regardless of its edges or requests.
//  2. any outgoing depends_on/approval_by edge whose target is not done,
//     or any active request on the node -> blocked. An edge whose target
//     is missing from the snapshot counts as not done.
//  3. otherwise the computed status mirrors the manual status.
func ComputeStatuses(snap *model.Snapshot) map[string]model.ComputedStatus {
	idx := NewIndex(snap)
	out := make(map[string]model.ComputedStatus, len(snap.Nodes))
	for _, n := range snap.Nodes {
		out[n.ID] = computeOne(idx, n)
	}
	return out
}

func computeOne(idx *Index, n *model.Node) model.ComputedStatus {
	if n.Status == model.StatusDone {
		return model.ComputedDone
	}
	if isBlocked(idx, n) {
		return model.ComputedBlocked
	}
	switch n.Status {
	case model.StatusDoing:
		return model.ComputedDoing
	default:
		return model.ComputedTodo
	}
}

// isBlocked applies the direct-edge blocking rule: an unmet gating edge or
// an active request on the node itself.
func isBlocked(idx *Index, n *model.Node) bool {
	for _, e := range idx.Outgoing(n.ID) {
		if !e.Relation.Gates() {
			continue
		}
		target := idx.Node(e.To)
		if target == nil || target.Status != model.StatusDone {
			return true
		}
	}
	return len(idx.ActiveRequests(n.ID)) > 0
}

// BlockingDetails returns the ordered list of reasons a node is blocked:
// unmet dependency/approval edges in declaration order, then active requests
// in list order. The list is complete, never sampled; it feeds both the
// "why is this blocked" display and the assistant analysis.
//
// A done node has no blocking reasons. An unknown node ID yields nil.
func BlockingDetails(nodeID string, snap *model.Snapshot) []model.BlockingReason {
	idx := NewIndex(snap)
	return blockingDetails(idx, nodeID)
}

func blockingDetails(idx *Index, nodeID string) []model.BlockingReason {
	n := idx.Node(nodeID)
	if n == nil || n.Status == model.StatusDone {
		return nil
	}

	var reasons []model.BlockingReason
	for _, e := range idx.Outgoing(nodeID) {
		if !e.Relation.Gates() {
			continue
		}
		kind := model.ReasonDependency
		if e.Relation == model.RelApprovalBy {
			kind = model.ReasonApproval
		}
		target := idx.Node(e.To)
		if target == nil {
			// Dangling edge: the target is absent from the snapshot. Treat as
			// blocking, flag it, and keep going.
			reasons = append(reasons, model.BlockingReason{
				Kind:          kind,
				TargetID:      e.To,
				TargetMissing: true,
			})
			continue
		}
		if target.Status != model.StatusDone {
			reasons = append(reasons, model.BlockingReason{
				Kind:         kind,
				TargetID:     target.ID,
				TargetTitle:  target.Title,
				TargetStatus: target.Status,
			})
		}
	}
	for _, r := range idx.ActiveRequests(nodeID) {
		reasons = append(reasons, model.BlockingReason{
			Kind:          model.ReasonRequest,
			RequestID:     r.ID,
			RequestStatus: r.Status,
		})
	}
	return reasons
}

// AllBlockingDetails returns blocking reasons for every non-done node that
// has any, sharing a single index across the whole snapshot.
func AllBlockingDetails(snap *model.Snapshot) map[string][]model.BlockingReason {
	idx := NewIndex(snap)
	out := make(map[string][]model.BlockingReason)
	for _, n := range snap.Nodes {
		if reasons := blockingDetails(idx, n.ID); len(reasons) > 0 {
			out[n.ID] = reasons
		}
	}
	return out
}

// DisplayStatus refines a computed status for presentation. A node blocked
// only by requests is shown as waiting ("waiting on a person") rather than
// blocked ("blocked by N tasks"). This is a label distinction only; the
// computed lattice itself never produces waiting.
func DisplayStatus(status model.ComputedStatus, reasons []model.BlockingReason) model.ComputedStatus {
	if status != model.ComputedBlocked || len(reasons) == 0 {
		return status
	}
	for _, r := range reasons {
		if r.Kind != model.ReasonRequest {
			return model.ComputedBlocked
		}
	}
	return model.ComputedWaiting
}
