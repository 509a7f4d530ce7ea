package graph

import (
	"sort"

	"github.com/trellishq/trellis/internal/model"
)

// Layout constants. Node size defaults apply when no per-node size is supplied.
const (
	DefaultColumns    = 5
	DefaultNodeWidth  = 260
	DefaultNodeHeight = 120
	DefaultXGap       = 40
	DefaultYGap       = 40

	// cycleDepth is assigned to every node left unprocessed by the
	// topological drain, so cycle members render after all acyclic nodes
	// instead of causing non-termination.
	cycleDepth = 999

	// cycleOrderBase offsets the original input index for cycle members,
	// placing them deterministically after all resolved nodes.
	cycleOrderBase = 10000
)

// Position is a grid position assigned to a node.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is an optional per-node render size.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Options configures ComputeLayout. Zero values fall back to the defaults.
type Options struct {
	Columns int
	XGap    int
	YGap    int
	Sizes   map[string]Size // node ID -> render size
}

func (o Options) withDefaults() Options {
	if o.Columns <= 0 {
		o.Columns = DefaultColumns
	}
	if o.XGap <= 0 {
		o.XGap = DefaultXGap
	}
	if o.YGap <= 0 {
		o.YGap = DefaultYGap
	}
	return o
}

// ComputeLayout assigns each node a deterministic grid position for the
// auto-arranged graph view. It ignores status entirely: depth is derived
// from edge direction alone, treating every edge from -> to as "from comes
// after to", which matches dependency semantics for every relation kind.
//
// The function is total: malformed edges (self-loops, dangling endpoints)
// are skipped and cycles are broken with sentinel depth/order values, so it
// never throws and never loops.
func ComputeLayout(nodes []*model.Node, edges []*model.Edge, opts Options) map[string]Position {
	opts = opts.withDefaults()

	index := make(map[string]int, len(nodes)) // node ID -> original input index
	for i, n := range nodes {
		index[n.ID] = i
	}

	// Successor lists in traversal direction: an edge from -> to means the
	// to node is a prerequisite, so traversal runs to -> from.
	succ := make(map[string][]string, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		if _, ok := index[e.From]; !ok {
			continue
		}
		if _, ok := index[e.To]; !ok {
			continue
		}
		succ[e.To] = append(succ[e.To], e.From)
		inDegree[e.From]++
	}

	depth, order := assignDepths(nodes, index, succ, inDegree)

	// Sort primarily by depth, secondarily by stable topological order.
	sorted := make([]*model.Node, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := depth[sorted[i].ID], depth[sorted[j].ID]
		if di != dj {
			return di < dj
		}
		return order[sorted[i].ID] < order[sorted[j].ID]
	})

	positions := make(map[string]Position, len(nodes))
	y := 0
	rowHeight := 0
	for i, n := range sorted {
		col := i % opts.Columns
		if col == 0 && i > 0 {
			y += rowHeight + opts.YGap
			rowHeight = 0
		}
		h := DefaultNodeHeight
		if s, ok := opts.Sizes[n.ID]; ok && s.Height > 0 {
			h = s.Height
		}
		if h > rowHeight {
			rowHeight = h
		}
		positions[n.ID] = Position{
			X: col * (DefaultNodeWidth + opts.XGap),
			Y: y,
		}
	}
	return positions
}

// assignDepths runs Kahn's algorithm twice over the same adjacency data:
// once for longest-path depth labeling and once for a stable topological
// order. The ready queue is kept sorted by original input index before each
// pop, so nodes tied in readiness resolve reproducibly.
func assignDepths(nodes []*model.Node, index map[string]int, succ map[string][]string, inDegree map[string]int) (depth, order map[string]int) {
	depth = make(map[string]int, len(nodes))
	order = make(map[string]int, len(nodes))

	remaining := make(map[string]int, len(nodes))
	var queue []string
	for _, n := range nodes {
		remaining[n.ID] = inDegree[n.ID]
		if remaining[n.ID] == 0 {
			queue = append(queue, n.ID)
			depth[n.ID] = 0
		}
	}

	next := 0
	for len(queue) > 0 {
		sort.Slice(queue, func(i, j int) bool {
			return index[queue[i]] < index[queue[j]]
		})
		id := queue[0]
		queue = queue[1:]

		order[id] = next
		next++

		for _, v := range succ[id] {
			if depth[id]+1 > depth[v] {
				depth[v] = depth[id] + 1
			}
			remaining[v]--
			if remaining[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	// The queue drained early: a cycle exists. Park every unprocessed node
	// at the sentinel depth with an order derived from its input index.
	for _, n := range nodes {
		if _, done := order[n.ID]; !done {
			depth[n.ID] = cycleDepth
			order[n.ID] = cycleOrderBase + index[n.ID]
		}
	}
	return depth, order
}
