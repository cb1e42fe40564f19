package canvas

import (
	"strings"
	"testing"
)

func TestGrid_OutOfBoundsWritesAreDropped(t *testing.T) {
	g := NewGrid(3, 2)
	tests := []struct {
		x, y int
		ok   bool
	}{
		{0, 0, true},
		{2, 1, true},
		{-1, 0, false},
		{3, 0, false},
		{0, 2, false},
		{0, -5, false},
	}
	for _, tt := range tests {
		if got := g.Put(tt.x, tt.y, 'x', StyleBox); got != tt.ok {
			t.Errorf("Put(%d,%d): expected %v, got %v", tt.x, tt.y, tt.ok, got)
		}
	}
	if got := g.String(); got != "x\n  x" {
		t.Errorf("unexpected grid:\n%q", got)
	}
}

func TestGrid_NegativeSize(t *testing.T) {
	g := NewGrid(-4, -1)
	if g.Width() != 0 || g.Height() != 0 {
		t.Errorf("expected empty grid, got %dx%d", g.Width(), g.Height())
	}
	if g.Put(0, 0, 'x', StyleBox) {
		t.Error("write to empty grid should be dropped")
	}
}

func TestGrid_WriteStringClipsWideRunes(t *testing.T) {
	g := NewGrid(6, 1)
	n := g.WriteString(0, 0, "日本語", 3, StyleTitle, "")
	if n != 2 {
		t.Fatalf("expected 2 cells written, got %d", n)
	}
	c, _ := g.At(1, 0)
	if c.Glyph != 0 {
		t.Errorf("expected continuation cell, got %q", c.Glyph)
	}
	if got := g.String(); got != "日" {
		t.Errorf("expected clipped title, got %q", got)
	}
}

func TestGrid_CropBlanksSplitWideRune(t *testing.T) {
	g := NewGrid(4, 1)
	g.WriteString(0, 0, "日ab", 4, StyleTitle, "")
	c := g.Crop(Rect{X: 1, Y: 0, W: 3, H: 1})
	if got := c.Lines()[0]; got != " ab" {
		t.Errorf("expected split rune to become a space, got %q", got)
	}
}

func TestGrid_CropOutsideIsBlank(t *testing.T) {
	g := NewGrid(2, 2)
	g.Fill(Rect{0, 0, 2, 2}, Cell{Glyph: '#', Style: StyleBox})
	c := g.Crop(Rect{X: 1, Y: 1, W: 3, H: 2})
	if got := c.Lines(); got[0] != "#  " || got[1] != "   " {
		t.Errorf("unexpected crop %q", got)
	}
}

func TestGeometry_BoxAndSize(t *testing.T) {
	geo := Geometry{NodeWidth: 10, NodeHeight: 3, ColumnGap: 6, RowGap: 1}
	if got := geo.Box(1, 2); got != (Rect{X: 16, Y: 8, W: 10, H: 3}) {
		t.Errorf("unexpected box %+v", got)
	}
	w, h := geo.Size(2, 3)
	if w != 26 || h != 11 {
		t.Errorf("expected 26x11, got %dx%d", w, h)
	}
	if w, h := geo.Size(0, 4); w != 0 || h != 0 {
		t.Errorf("empty layout should have no size, got %dx%d", w, h)
	}
}

func TestGeometry_NormalizeClampsGap(t *testing.T) {
	geo := Geometry{NodeWidth: 2, NodeHeight: 1, ColumnGap: 0, RowGap: -1}.Normalize()
	if geo.ColumnGap != minColumnGap || geo.NodeWidth != 8 || geo.NodeHeight != 3 || geo.RowGap != 0 {
		t.Errorf("unexpected geometry %+v", geo)
	}
}

var testGeo = Geometry{NodeWidth: 10, NodeHeight: 3, ColumnGap: 6, RowGap: 1}

func TestRoute_SameRowIsStraight(t *testing.T) {
	g := NewGrid(26, 3)
	r := NewRouter(testGeo.ColumnGap)
	r.Route(g, []RouteEdge{{FromID: "A", ToID: "D", From: testGeo.Box(0, 0), To: testGeo.Box(1, 0)}})

	if got := strings.TrimSpace(g.Lines()[1]); got != "─────▶" {
		t.Errorf("expected straight connector, got %q", got)
	}
	if len(r.Channels()) != 0 {
		t.Errorf("straight edge should not reserve a channel, got %v", r.Channels())
	}
}

func TestRoute_ZShape(t *testing.T) {
	g := NewGrid(26, 7)
	r := NewRouter(testGeo.ColumnGap)
	r.Route(g, []RouteEdge{{FromID: "A", ToID: "B", From: testGeo.Box(0, 0), To: testGeo.Box(1, 1)}})

	want := []string{
		"",
		"          ──┐",
		"            │",
		"            │",
		"            │",
		"            └──▶",
		"",
	}
	got := strings.Split(g.String(), "\n")
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	ch := r.Channels()
	if len(ch[12]) != 1 || ch[12][0] != [2]int{1, 5} {
		t.Errorf("expected channel at x=12 rows 1..5, got %v", ch)
	}
}

func TestRoute_OverlappingRunsGetSeparateChannels(t *testing.T) {
	g := NewGrid(26, 11)
	r := NewRouter(testGeo.ColumnGap)
	a := testGeo.Box(0, 0)
	r.Route(g, []RouteEdge{
		{FromID: "A", ToID: "C", From: a, To: testGeo.Box(1, 2)},
		{FromID: "A", ToID: "B", From: a, To: testGeo.Box(1, 1)},
	})

	ch := r.Channels()
	if len(ch[12]) != 1 || len(ch[13]) != 1 {
		t.Fatalf("expected one run each at x=12 and x=13, got %v", ch)
	}
	// The shorter edge is routed first and takes the middle channel
	if ch[12][0] != [2]int{1, 5} || ch[13][0] != [2]int{1, 9} {
		t.Errorf("unexpected channel assignment %v", ch)
	}
	if c, _ := g.At(12, 1); c.Glyph != '┬' {
		t.Errorf("expected merged junction at the fork, got %q", c.Glyph)
	}
	for _, y := range []int{5, 9} {
		if c, _ := g.At(15, y); c.Glyph != ArrowGlyph {
			t.Errorf("expected arrow at (15,%d), got %q", y, c.Glyph)
		}
	}
}

func TestRoute_FallsBackToMiddleWhenGapIsFull(t *testing.T) {
	r := NewRouter(3)
	// A gap of 3 leaves exactly one candidate column
	first := r.reserve(20, 0, 10)
	second := r.reserve(20, 2, 4)
	if first != 18 || second != 18 {
		t.Errorf("expected both runs at x=18, got %d and %d", first, second)
	}
}

func TestRoute_DeterministicOrder(t *testing.T) {
	edges := []RouteEdge{
		{FromID: "A", ToID: "C", From: testGeo.Box(0, 0), To: testGeo.Box(1, 2)},
		{FromID: "B", ToID: "C", From: testGeo.Box(0, 1), To: testGeo.Box(1, 2)},
		{FromID: "A", ToID: "B2", From: testGeo.Box(0, 0), To: testGeo.Box(1, 1)},
	}
	render := func(in []RouteEdge) string {
		g := NewGrid(26, 11)
		NewRouter(testGeo.ColumnGap).Route(g, in)
		return g.String()
	}
	reversed := []RouteEdge{edges[2], edges[1], edges[0]}
	if render(edges) != render(reversed) {
		t.Error("output should not depend on input order")
	}
}

func TestLine_MergesJunctions(t *testing.T) {
	tests := []struct {
		name  string
		first rune
		dirs  int
		want  rune
	}{
		{"cross", '─', dirUp | dirDown, '┼'},
		{"tee right", '│', dirRight, '├'},
		{"tee left", '│', dirLeft, '┤'},
		{"tee down", '─', dirDown, '┬'},
		{"tee up", '─', dirUp, '┴'},
		{"corner to tee", '┌', dirUp, '├'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(1, 1)
			g.Put(0, 0, tt.first, StyleEdge)
			line(g, 0, 0, tt.dirs)
			if c, _ := g.At(0, 0); c.Glyph != tt.want {
				t.Errorf("expected %q, got %q", tt.want, c.Glyph)
			}
		})
	}
}

func TestLine_NeverOverwritesArrow(t *testing.T) {
	g := NewGrid(1, 1)
	g.Put(0, 0, ArrowGlyph, StyleArrow)
	line(g, 0, 0, dirUp|dirDown)
	if c, _ := g.At(0, 0); c.Glyph != ArrowGlyph {
		t.Errorf("arrow was overwritten with %q", c.Glyph)
	}
}

func TestGlyphStrokes(t *testing.T) {
	tests := []struct {
		glyph rune
		want  Strokes
		ok    bool
	}{
		{'─', Strokes{Left: true, Right: true}, true},
		{'├', Strokes{Up: true, Down: true, Right: true}, true},
		{'╭', Strokes{Down: true, Right: true}, true},
		{'┛', Strokes{Up: true, Left: true, Heavy: true}, true},
		{'╎', Strokes{Up: true, Down: true}, true},
		{'a', Strokes{}, false},
		{ArrowGlyph, Strokes{}, false},
	}
	for _, tt := range tests {
		got, ok := GlyphStrokes(tt.glyph)
		if ok != tt.ok || got != tt.want {
			t.Errorf("GlyphStrokes(%q) = %+v, %v; want %+v, %v", tt.glyph, got, ok, tt.want, tt.ok)
		}
	}
}
