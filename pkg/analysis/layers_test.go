package analysis

import (
	"reflect"
	"testing"

	"github.com/kraitsura/techtree/pkg/model"
)

func nodes(specs ...[]string) []model.Node {
	out := make([]model.Node, 0, len(specs))
	for _, s := range specs {
		out = append(out, model.Node{ID: s[0], Title: s[0], Status: model.StatusPending, DependsOn: s[1:]})
	}
	return out
}

func columnOf(layers [][]string) map[string]int {
	col := make(map[string]int)
	for i, layer := range layers {
		for _, id := range layer {
			col[id] = i
		}
	}
	return col
}

func TestComputeLayers_Chain(t *testing.T) {
	layers := ComputeLayers(nodes(
		[]string{"C", "B"},
		[]string{"A"},
		[]string{"B", "A"},
	))
	want := [][]string{{"A"}, {"B"}, {"C"}}
	if !reflect.DeepEqual(layers, want) {
		t.Errorf("expected %v, got %v", want, layers)
	}
}

func TestComputeLayers_LongestPath(t *testing.T) {
	// D depends on A directly and on C through B, so it must sit after C.
	layers := ComputeLayers(nodes(
		[]string{"A"},
		[]string{"B", "A"},
		[]string{"C", "B"},
		[]string{"D", "A", "C"},
	))
	col := columnOf(layers)
	if col["D"] != 3 {
		t.Errorf("expected D in column 3, got %d (%v)", col["D"], layers)
	}
}

func TestComputeLayers_AcyclicColumnInvariant(t *testing.T) {
	input := nodes(
		[]string{"a"},
		[]string{"b", "a"},
		[]string{"c", "a"},
		[]string{"d", "b", "c"},
		[]string{"e"},
		[]string{"f", "e", "d"},
		[]string{"g", "missing"},
	)
	col := columnOf(ComputeLayers(input))
	if len(col) != len(input) {
		t.Fatalf("expected %d nodes layered, got %d", len(input), len(col))
	}
	for _, n := range input {
		for _, dep := range n.DependsOn {
			depCol, ok := col[dep]
			if !ok {
				continue
			}
			if depCol >= col[n.ID] {
				t.Errorf("edge %s -> %s violates column order (%d >= %d)", dep, n.ID, depCol, col[n.ID])
			}
		}
	}
	if col["g"] != 0 {
		t.Errorf("unknown dependency should leave g in column 0, got %d", col["g"])
	}
}

func TestComputeLayers_CycleTerminates(t *testing.T) {
	input := nodes(
		[]string{"A", "C"},
		[]string{"B", "A"},
		[]string{"C", "B"},
		[]string{"R"},
		[]string{"X", "R", "Y"},
		[]string{"Y", "X"},
	)
	layers := ComputeLayers(input)
	col := columnOf(layers)
	if len(col) != len(input) {
		t.Fatalf("every node must be layered, got %v", layers)
	}
}

func TestComputeLayers_Empty(t *testing.T) {
	if layers := ComputeLayers(nil); layers != nil {
		t.Errorf("expected nil layers, got %v", layers)
	}
}

func TestBuildDependencyGraph_Sanitizes(t *testing.T) {
	g := BuildDependencyGraph([]model.Node{
		{ID: "a", DependsOn: []string{"a", "b", "b", "zzz"}},
		{ID: "b"},
		{ID: "a", DependsOn: []string{"b"}},
	})
	if !reflect.DeepEqual(g.IDs, []string{"a", "b"}) {
		t.Errorf("unexpected ids %v", g.IDs)
	}
	if !reflect.DeepEqual(g.Deps["a"], []string{"b"}) {
		t.Errorf("expected deps [b], got %v", g.Deps["a"])
	}
}

func TestBreakCycles_Deterministic(t *testing.T) {
	build := func() DependencyGraph {
		return BuildDependencyGraph(nodes(
			[]string{"A", "C"},
			[]string{"B", "A"},
			[]string{"C", "B"},
		))
	}
	g1, g2 := build(), build()
	n1, n2 := BreakCycles(&g1), BreakCycles(&g2)
	if n1 != 1 || n2 != 1 {
		t.Fatalf("expected one back edge each run, got %d and %d", n1, n2)
	}
	if !reflect.DeepEqual(g1.Deps, g2.Deps) {
		t.Errorf("cycle breaking not deterministic: %v vs %v", g1.Deps, g2.Deps)
	}
	if _, ok := topoOrder(g1); !ok {
		t.Error("graph still cyclic after BreakCycles")
	}
}
