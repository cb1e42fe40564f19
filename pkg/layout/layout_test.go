package layout

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/kraitsura/techtree/pkg/model"
)

func node(id, group string, deps ...string) model.Node {
	return model.Node{ID: id, Title: id, Status: model.StatusPending, Group: group, DependsOn: deps}
}

func pos(t *testing.T, l *Layout, id string) Position {
	t.Helper()
	p, ok := l.Positions[NodeEntry(id)]
	if !ok {
		t.Fatalf("node %s has no position", id)
	}
	return p
}

func TestScenario_SingleDepChildrenAlignWithParent(t *testing.T) {
	l := Compute(Input{Nodes: []model.Node{
		node("A", ""),
		node("B", "", "A"),
		node("C", "", "A"),
	}})

	want := map[string]Position{
		"A": {Col: 0, Row: 0},
		"B": {Col: 1, Row: 0},
		"C": {Col: 1, Row: 1},
	}
	for id, p := range want {
		if got := pos(t, l, id); got != p {
			t.Errorf("%s: expected %+v, got %+v", id, p, got)
		}
	}
}

func TestScenario_MultiDepAveragesParentRows(t *testing.T) {
	l := Compute(Input{Nodes: []model.Node{
		node("A", ""),
		node("B", "", "A"),
		node("C", "", "A", "B"),
	}})

	if got := pos(t, l, "C"); got != (Position{Col: 2, Row: 0}) {
		t.Errorf("expected C at col 2 row 0, got %+v", got)
	}
	if got := pos(t, l, "B"); got != (Position{Col: 1, Row: 0}) {
		t.Errorf("expected B at col 1 row 0, got %+v", got)
	}
}

func TestScenario_GroupHeadersAndGaps(t *testing.T) {
	l := Compute(Input{
		GroupMode: true,
		Nodes: []model.Node{
			node("A", "g1"),
			node("B", "g1"),
			node("C", "g2"),
		},
	})

	wantHeaders := []Header{{GroupID: "g1", Row: 0}, {GroupID: "g2", Row: 4}}
	if !reflect.DeepEqual(l.Headers, wantHeaders) {
		t.Errorf("expected headers %+v, got %+v", wantHeaders, l.Headers)
	}
	for id, row := range map[string]int{"A": 1, "B": 2, "C": 5} {
		if got := pos(t, l, id).Row; got != row {
			t.Errorf("%s: expected row %d, got %d", id, row, got)
		}
	}
	if !reflect.DeepEqual(l.GroupOrder, []string{"g1", "g2"}) {
		t.Errorf("unexpected group order %v", l.GroupOrder)
	}
}

func TestScenario_HiddenGroupBecomesMarker(t *testing.T) {
	l := Compute(Input{
		GroupMode:    true,
		HiddenGroups: map[string]bool{"g2": true},
		Nodes: []model.Node{
			node("A", "g1"),
			node("B", "g1"),
			node("C", "g2"),
		},
	})

	if _, ok := l.Positions[NodeEntry("C")]; ok {
		t.Fatal("C should not be positioned while g2 is hidden")
	}
	var markers []Entry
	for _, e := range l.Entries {
		if e.IsMarker() {
			markers = append(markers, e)
		}
	}
	if len(markers) != 1 || markers[0].ID != "g2" {
		t.Fatalf("expected exactly one g2 marker, got %v", markers)
	}
	marker := l.Positions[markers[0]]
	for _, id := range []string{"A", "B"} {
		if p := pos(t, l, id); p.Row >= marker.Row {
			t.Errorf("marker row %d should be after %s row %d", marker.Row, id, p.Row)
		}
	}
	if l.HiddenCounts["g2"] != 1 {
		t.Errorf("expected 1 hidden node behind g2, got %d", l.HiddenCounts["g2"])
	}
	if last := l.Entries[len(l.Entries)-1]; last != markers[0] {
		t.Errorf("marker should be last entry, got %v", last)
	}
}

func TestHiddenGroupsIgnoredOutsideGroupMode(t *testing.T) {
	l := Compute(Input{
		HiddenGroups: map[string]bool{"g2": true},
		Nodes:        []model.Node{node("A", "g1"), node("C", "g2")},
	})
	if _, ok := l.Positions[NodeEntry("C")]; !ok {
		t.Error("hidden groups should only apply in group mode")
	}
	if len(l.Headers) != 0 {
		t.Error("no headers expected outside group mode")
	}
}

func TestHiddenMarkersOrderedWithStandaloneLast(t *testing.T) {
	l := Compute(Input{
		GroupMode:    true,
		HiddenGroups: map[string]bool{"zeta": true, "alpha": true, "": true},
		Nodes: []model.Node{
			node("A", "alpha"),
			node("S", ""),
			node("Z", "zeta"),
			node("V", "visible"),
		},
	})
	var got []string
	for _, e := range l.Entries {
		if e.IsMarker() {
			got = append(got, e.ID)
		}
	}
	if !reflect.DeepEqual(got, []string{"alpha", "zeta", ""}) {
		t.Errorf("unexpected marker order %q", got)
	}
}

func TestSingleGroupSkipsCompaction(t *testing.T) {
	in := []model.Node{node("A", "g1"), node("B", "g1", "A")}
	grouped := Compute(Input{GroupMode: true, Nodes: in})
	flat := Compute(Input{Nodes: in})
	if len(grouped.Headers) != 0 {
		t.Errorf("single group should not get headers")
	}
	if !reflect.DeepEqual(grouped.Positions, flat.Positions) {
		t.Errorf("single group layout should match flat layout")
	}
}

func TestUnknownDependencyIsIgnored(t *testing.T) {
	l := Compute(Input{Nodes: []model.Node{
		node("A", ""),
		node("B", "", "ghost"),
	}})
	if pos(t, l, "B").Col != 0 {
		t.Errorf("B should be a root when its only dependency is unknown")
	}
	if len(l.Edges) != 0 {
		t.Errorf("no edges expected, got %v", l.Edges)
	}
}

func TestKeepFilter(t *testing.T) {
	l := Compute(Input{
		Nodes: []model.Node{node("A", ""), node("B", "", "A")},
		Keep:  func(n model.Node) bool { return n.ID != "A" },
	})
	if l.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", l.Len())
	}
	if pos(t, l, "B") != (Position{}) {
		t.Errorf("B should move to origin once A is filtered")
	}
}

func TestEmptyInput(t *testing.T) {
	l := Compute(Input{})
	if l.Len() != 0 || l.Rows != 0 || l.Columns != 0 {
		t.Errorf("expected empty layout, got %d entries %dx%d", l.Len(), l.Columns, l.Rows)
	}
	if _, ok := l.Down(NodeEntry("A")); ok {
		t.Error("navigation on empty layout should find nothing")
	}
}

func TestAllGroupsHidden(t *testing.T) {
	l := Compute(Input{
		GroupMode:    true,
		HiddenGroups: map[string]bool{"g1": true},
		Nodes:        []model.Node{node("A", "g1")},
	})
	if l.Len() != 1 || !l.Entries[0].IsMarker() {
		t.Fatalf("expected a lone marker, got %v", l.Entries)
	}
	if p := l.Positions[l.Entries[0]]; p != (Position{}) {
		t.Errorf("lone marker should sit at the origin, got %+v", p)
	}
}

// bigGraph is a mixed graph used by the property tests below
func bigGraph() []model.Node {
	return []model.Node{
		node("auth-1", "auth"),
		node("auth-2", "auth", "auth-1"),
		node("auth-3", "auth", "auth-1"),
		node("auth-4", "auth", "auth-2", "auth-3"),
		node("api-1", "api", "auth-1"),
		node("api-2", "api", "api-1"),
		node("api-3", "api", "api-1", "auth-4"),
		node("ui-1", "ui"),
		node("ui-2", "ui", "ui-1", "api-2"),
		node("ui-3", "ui", "ui-1"),
		node("ui-4", "ui", "ui-1"),
		node("solo", ""),
		node("solo-2", "", "solo", "missing"),
	}
}

func TestProperty_NoOverlapAndAcyclicColumns(t *testing.T) {
	for _, grouped := range []bool{false, true} {
		t.Run(fmt.Sprintf("grouped=%v", grouped), func(t *testing.T) {
			input := bigGraph()
			l := Compute(Input{Nodes: input, GroupMode: grouped})

			taken := make(map[Position]string)
			for _, e := range l.Entries {
				p := l.Positions[e]
				if other, dup := taken[p]; dup {
					t.Errorf("%s and %s share %+v", e.ID, other, p)
				}
				taken[p] = e.ID
			}
			for _, n := range input {
				for _, dep := range n.DependsOn {
					dp, ok := l.Positions[NodeEntry(dep)]
					if !ok {
						continue
					}
					if dp.Col >= pos(t, l, n.ID).Col {
						t.Errorf("%s -> %s breaks column order", dep, n.ID)
					}
				}
			}
		})
	}
}

func TestProperty_Idempotent(t *testing.T) {
	in := Input{Nodes: bigGraph(), GroupMode: true, HiddenGroups: map[string]bool{"ui": true}}
	a := Compute(in)
	b := Compute(in)
	if !reflect.DeepEqual(a.Positions, b.Positions) {
		t.Error("positions differ between identical runs")
	}
	if !reflect.DeepEqual(a.Entries, b.Entries) {
		t.Error("entry order differs between identical runs")
	}
}

func TestProperty_GroupContiguity(t *testing.T) {
	input := bigGraph()
	l := Compute(Input{Nodes: input, GroupMode: true})
	if !l.Grouped() {
		t.Fatal("expected grouped layout")
	}

	rowsOf := make(map[string]map[int]bool)
	for _, n := range input {
		if rowsOf[n.Group] == nil {
			rowsOf[n.Group] = make(map[int]bool)
		}
		rowsOf[n.Group][pos(t, l, n.ID).Row] = true
	}

	for i, h := range l.Headers {
		rows := rowsOf[h.GroupID]
		for r := h.Row + 1; r <= h.Row+len(rows); r++ {
			if !rows[r] {
				t.Errorf("group %q: row %d missing from contiguous block after header %d", h.GroupID, r, h.Row)
			}
		}
		if i+1 < len(l.Headers) && l.Headers[i+1].Row != h.Row+len(rows)+2 {
			t.Errorf("group %q: next header at %d, expected %d", h.GroupID, l.Headers[i+1].Row, h.Row+len(rows)+2)
		}
	}
	if last := l.Headers[len(l.Headers)-1]; last.GroupID != "" {
		t.Errorf("standalone group should come last, got %q", last.GroupID)
	}
}

func TestAssignRows(t *testing.T) {
	tests := []struct {
		name   string
		nodes  []model.Node
		layers [][]string
		want   map[string]int
	}{
		{
			name: "sole parent reserves rows in column 0",
			nodes: []model.Node{
				node("A", ""), node("B", "", "A"), node("C", "", "A"), node("D", "", "A"),
				node("E", ""), node("F", "", "E"),
			},
			layers: [][]string{{"A", "E"}, {"B", "C", "D", "F"}},
			want:   map[string]int{"A": 0, "B": 0, "C": 1, "D": 2, "E": 3, "F": 3},
		},
		{
			name: "multi-dep moves below a taken preferred row",
			nodes: []model.Node{
				node("A", ""), node("B", ""), node("C", ""),
				node("X", "", "B"), node("D", "", "A", "C"),
			},
			layers: [][]string{{"A", "B", "C"}, {"D", "X"}},
			want:   map[string]int{"A": 0, "B": 1, "C": 2, "X": 1, "D": 2},
		},
		{
			name: "no-dep node takes the lowest free row",
			nodes: []model.Node{
				node("A", ""), node("C", ""), node("D", "", "C"), node("O", ""),
			},
			layers: [][]string{{"A", "C"}, {"D", "O"}},
			want:   map[string]int{"A": 0, "C": 1, "D": 1, "O": 0},
		},
		{
			name: "half average rounds to even",
			nodes: []model.Node{
				node("A", ""), node("B", ""), node("C", ""),
				node("M", "", "A", "B"), node("N", "", "B", "C"),
			},
			layers: [][]string{{"A", "B", "C"}, {"M", "N"}},
			want:   map[string]int{"A": 0, "B": 1, "C": 2, "M": 0, "N": 2},
		},
		{
			name: "unknown deps are ignored",
			nodes: []model.Node{
				node("A", ""), node("B", "", "A", "ghost"),
			},
			layers: [][]string{{"A"}, {"B"}},
			want:   map[string]int{"A": 0, "B": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			byID := make(map[string]model.Node, len(tt.nodes))
			for _, n := range tt.nodes {
				byID[n.ID] = n
			}
			if got := AssignRows(tt.layers, byID); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompute_ColumnZeroReservation(t *testing.T) {
	l := Compute(Input{Nodes: []model.Node{
		node("A", ""), node("B", "", "A"), node("C", "", "A"), node("D", "", "A"),
		node("E", ""), node("F", "", "E"),
	}})

	want := map[string]Position{
		"A": {Col: 0, Row: 0}, "B": {Col: 1, Row: 0}, "C": {Col: 1, Row: 1},
		"D": {Col: 1, Row: 2}, "E": {Col: 0, Row: 3}, "F": {Col: 1, Row: 3},
	}
	for id, p := range want {
		if got := pos(t, l, id); got != p {
			t.Errorf("%s: expected %+v, got %+v", id, p, got)
		}
	}
}

func TestCompactGroupsKeepsRelativeOrder(t *testing.T) {
	rows := map[string]int{"a": 0, "b": 3, "c": 7, "x": 1}
	groupOf := map[string]string{"a": "g", "b": "g", "c": "g", "x": ""}
	out, headers := CompactGroups(rows, groupOf)

	want := map[string]int{"a": 1, "b": 2, "c": 3, "x": 6}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("expected %v, got %v", want, out)
	}
	if !reflect.DeepEqual(headers, []Header{{"g", 0}, {"", 5}}) {
		t.Errorf("unexpected headers %+v", headers)
	}
	if rows["b"] != 3 {
		t.Error("input rows must not be modified")
	}
}
