package graph

import (
	"reflect"
	"testing"

	"github.com/trellishq/trellis/internal/model"
)

func layoutNodes(ids ...string) []*model.Node {
	nodes := make([]*model.Node, len(ids))
	for i, id := range ids {
		nodes[i] = node(id, model.StatusTodo)
	}
	return nodes
}

func TestComputeLayout_LinearChain(t *testing.T) {
	// c depends on b depends on a: a at depth 0, then b, then c.
	nodes := layoutNodes("a", "b", "c")
	edges := []*model.Edge{
		edge("b", "a", model.RelDependsOn),
		edge("c", "b", model.RelDependsOn),
	}

	got := ComputeLayout(nodes, edges, Options{Columns: 1})
	step := DefaultNodeHeight + DefaultYGap
	want := map[string]Position{
		"a": {X: 0, Y: 0},
		"b": {X: 0, Y: step},
		"c": {X: 0, Y: 2 * step},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ComputeLayout = %v, want %v", got, want)
	}
}

func TestComputeLayout_RowAndColumnPlacement(t *testing.T) {
	// Seven independent nodes, three columns: rows of 3, 3, 1.
	nodes := layoutNodes("a", "b", "c", "d", "e", "f", "g")
	got := ComputeLayout(nodes, nil, Options{Columns: 3})

	xStep := DefaultNodeWidth + DefaultXGap
	yStep := DefaultNodeHeight + DefaultYGap
	want := map[string]Position{
		"a": {X: 0, Y: 0},
		"b": {X: xStep, Y: 0},
		"c": {X: 2 * xStep, Y: 0},
		"d": {X: 0, Y: yStep},
		"e": {X: xStep, Y: yStep},
		"f": {X: 2 * xStep, Y: yStep},
		"g": {X: 0, Y: 2 * yStep},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ComputeLayout = %v, want %v", got, want)
	}
}

func TestComputeLayout_TallNodeGrowsRow(t *testing.T) {
	nodes := layoutNodes("a", "b", "c")
	got := ComputeLayout(nodes, nil, Options{
		Columns: 2,
		Sizes:   map[string]Size{"b": {Width: 300, Height: 400}},
	})

	// Row 0 holds a and b; b's height dominates the row.
	wantY := 400 + DefaultYGap
	if got["c"].Y != wantY {
		t.Errorf("c.Y = %d, want %d", got["c"].Y, wantY)
	}
}

func TestComputeLayout_DepthIsLongestPath(t *testing.T) {
	// d depends on both a (depth 0) and c, where c depends on b depends on a.
	// The longest path to d has length 3, so d lands below c, not beside b.
	nodes := layoutNodes("a", "b", "c", "d")
	edges := []*model.Edge{
		edge("b", "a", model.RelDependsOn),
		edge("c", "b", model.RelDependsOn),
		edge("d", "a", model.RelDependsOn),
		edge("d", "c", model.RelDependsOn),
	}
	_ = edges

	index := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}
	succ := map[string][]string{"a": {"b", "d"}, "b": {"c"}, "c": {"d"}}
	inDeg := map[string]int{"b": 1, "c": 1, "d": 2}
	depth, _ := assignDepths(nodes, index, succ, inDeg)

	want := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}
	if !reflect.DeepEqual(depth, want) {
		t.Errorf("depth = %v, want %v", depth, want)
	}
}

func TestComputeLayout_TopologicalSoundness(t *testing.T) {
	// For every edge from -> to in an acyclic graph, the prerequisite (to)
	// must come earlier in the stable order than the dependent (from).
	nodes := layoutNodes("e", "d", "c", "b", "a") // deliberately shuffled input
	edges := []*model.Edge{
		edge("d", "e", model.RelDependsOn),
		edge("c", "e", model.RelApprovalBy),
		edge("b", "d", model.RelDependsOn),
		edge("a", "c", model.RelHandoffTo),
		edge("a", "b", model.RelDependsOn),
	}

	index := make(map[string]int)
	for i, n := range nodes {
		index[n.ID] = i
	}
	succ := make(map[string][]string)
	inDeg := make(map[string]int)
	for _, e := range edges {
		succ[e.To] = append(succ[e.To], e.From)
		inDeg[e.From]++
	}

	_, order := assignDepths(nodes, index, succ, inDeg)
	for _, e := range edges {
		if order[e.To] >= order[e.From] {
			t.Errorf("order[%s]=%d not before order[%s]=%d", e.To, order[e.To], e.From, order[e.From])
		}
	}
}

func TestComputeLayout_StableOrderForTies(t *testing.T) {
	// Independent nodes are ready simultaneously; ties resolve by input index.
	nodes := layoutNodes("z", "m", "a")
	index := map[string]int{"z": 0, "m": 1, "a": 2}
	_, order := assignDepths(nodes, index, nil, nil)
	want := map[string]int{"z": 0, "m": 1, "a": 2}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestComputeLayout_CycleSentinels(t *testing.T) {
	// a <- b <- c <- a is a cycle; d is acyclic and must resolve normally.
	nodes := layoutNodes("a", "b", "c", "d")
	edges := []*model.Edge{
		edge("b", "a", model.RelDependsOn),
		edge("c", "b", model.RelDependsOn),
		edge("a", "c", model.RelDependsOn),
	}

	index := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}
	succ := map[string][]string{"a": {"b"}, "b": {"c"}, "c": {"a"}}
	inDeg := map[string]int{"a": 1, "b": 1, "c": 1}
	depth, order := assignDepths(nodes, index, succ, inDeg)

	for _, id := range []string{"a", "b", "c"} {
		if depth[id] != cycleDepth {
			t.Errorf("depth[%s] = %d, want %d", id, depth[id], cycleDepth)
		}
		if order[id] < cycleOrderBase {
			t.Errorf("order[%s] = %d, want >= %d", id, order[id], cycleOrderBase)
		}
	}
	if depth["d"] != 0 {
		t.Errorf("depth[d] = %d, want 0", depth["d"])
	}
	// Cycle members stay distinct and deterministic.
	if order["a"] == order["b"] || order["b"] == order["c"] {
		t.Errorf("cycle members collide in order: %v", order)
	}

	// The full layout also terminates and positions every node.
	positions := ComputeLayout(nodes, edges, Options{})
	if len(positions) != 4 {
		t.Errorf("ComputeLayout placed %d nodes, want 4", len(positions))
	}
}

func TestComputeLayout_ToleratesMalformedEdges(t *testing.T) {
	nodes := layoutNodes("a", "b")
	edges := []*model.Edge{
		edge("a", "a", model.RelDependsOn),     // self-loop
		edge("a", "ghost", model.RelDependsOn), // dangling target
		edge("ghost", "b", model.RelDependsOn), // dangling source
		edge("b", "a", model.RelDependsOn),
		edge("b", "a", model.RelDependsOn), // duplicate
	}
	got := ComputeLayout(nodes, edges, Options{})
	if len(got) != 2 {
		t.Fatalf("ComputeLayout placed %d nodes, want 2", len(got))
	}
	if got["a"] == got["b"] {
		t.Errorf("a and b share a position: %v", got)
	}
}

func TestComputeLayout_Deterministic(t *testing.T) {
	nodes := layoutNodes("a", "b", "c", "d", "e")
	edges := []*model.Edge{
		edge("b", "a", model.RelDependsOn),
		edge("c", "a", model.RelDependsOn),
		edge("d", "b", model.RelHandoffTo),
		edge("e", "c", model.RelApprovalBy),
	}
	first := ComputeLayout(nodes, edges, Options{})
	second := ComputeLayout(nodes, edges, Options{})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ComputeLayout not deterministic: %v vs %v", first, second)
	}
}
