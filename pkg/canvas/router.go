package canvas

import "sort"

// Line directions packed into a bitmask
const (
	dirUp = 1 << iota
	dirDown
	dirLeft
	dirRight
)

var glyphDirs = map[rune]int{
	'─': dirLeft | dirRight,
	'│': dirUp | dirDown,
	'┌': dirDown | dirRight,
	'┐': dirDown | dirLeft,
	'└': dirUp | dirRight,
	'┘': dirUp | dirLeft,
	'├': dirUp | dirDown | dirRight,
	'┤': dirUp | dirDown | dirLeft,
	'┬': dirLeft | dirRight | dirDown,
	'┴': dirLeft | dirRight | dirUp,
	'┼': dirUp | dirDown | dirLeft | dirRight,
}

var dirGlyphs = func() map[int]rune {
	m := make(map[int]rune, len(glyphDirs))
	for g, d := range glyphDirs {
		m[d] = g
	}
	return m
}()

// ArrowGlyph terminates every edge at the dependent node
const ArrowGlyph = '▶'

// RouteEdge is a connector to draw from a dependency box to a dependent box
type RouteEdge struct {
	FromID string
	ToID   string
	From   Rect
	To     Rect
}

// span is a closed vertical interval of grid rows
type span struct{ lo, hi int }

func (s span) overlaps(o span) bool { return s.lo <= o.hi && o.lo <= s.hi }

// Router draws orthogonal connectors. Vertical runs are kept apart by
// reserving (x, rows) channels for the duration of one render pass.
type Router struct {
	gap      int
	channels map[int][]span
}

// NewRouter creates a router for boxes separated by columnGap cells
func NewRouter(columnGap int) *Router {
	if columnGap < minColumnGap {
		columnGap = minColumnGap
	}
	return &Router{gap: columnGap, channels: make(map[int][]span)}
}

// Channels returns the reserved vertical runs keyed by x
func (r *Router) Channels() map[int][][2]int {
	out := make(map[int][][2]int, len(r.channels))
	for x, spans := range r.channels {
		for _, s := range spans {
			out[x] = append(out[x], [2]int{s.lo, s.hi})
		}
	}
	return out
}

// Route draws every edge onto g. Straight edges go first, then edges by
// increasing vertical distance, so the short ones get the central channels.
func (r *Router) Route(g *Grid, edges []RouteEdge) {
	ordered := make([]RouteEdge, len(edges))
	copy(ordered, edges)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		da, db := abs(a.To.MidY()-a.From.MidY()), abs(b.To.MidY()-b.From.MidY())
		if da != db {
			return da < db
		}
		if a.From.X != b.From.X {
			return a.From.X < b.From.X
		}
		if a.From.Y != b.From.Y {
			return a.From.Y < b.From.Y
		}
		if a.To.X != b.To.X {
			return a.To.X < b.To.X
		}
		if a.To.Y != b.To.Y {
			return a.To.Y < b.To.Y
		}
		if a.FromID != b.FromID {
			return a.FromID < b.FromID
		}
		return a.ToID < b.ToID
	})

	for _, e := range ordered {
		r.draw(g, e)
	}
}

func (r *Router) draw(g *Grid, e RouteEdge) {
	sx, sy := e.From.Right(), e.From.MidY()
	ex, ey := e.To.X-1, e.To.MidY()

	if sy == ey {
		for x := sx; x < ex; x++ {
			line(g, x, sy, dirLeft|dirRight)
		}
		g.Put(ex, ey, ArrowGlyph, StyleArrow)
		return
	}

	cx := r.reserve(e.To.X, sy, ey)
	down := ey > sy

	for x := sx; x < cx; x++ {
		line(g, x, sy, dirLeft|dirRight)
	}
	if down {
		line(g, cx, sy, dirLeft|dirDown)
		line(g, cx, ey, dirUp|dirRight)
	} else {
		line(g, cx, sy, dirLeft|dirUp)
		line(g, cx, ey, dirDown|dirRight)
	}
	lo, hi := sy, ey
	if lo > hi {
		lo, hi = hi, lo
	}
	for y := lo + 1; y < hi; y++ {
		line(g, cx, y, dirUp|dirDown)
	}
	for x := cx + 1; x < ex; x++ {
		line(g, x, ey, dirLeft|dirRight)
	}
	g.Put(ex, ey, ArrowGlyph, StyleArrow)
}

// reserve picks the channel x in the gap left of a box starting at boxX,
// scanning outward from the middle of the gap for a column whose reserved
// runs do not overlap rows y1..y2. Falls back to the middle when the gap is full.
func (r *Router) reserve(boxX, y1, y2 int) int {
	want := span{lo: y1, hi: y2}
	if want.lo > want.hi {
		want.lo, want.hi = want.hi, want.lo
	}

	lo := boxX - r.gap + 1
	hi := boxX - 2
	if lo > hi {
		lo = hi
	}
	mid := (lo + hi) / 2

	chosen := mid
	for off := 0; off <= hi-lo; off++ {
		found := false
		for _, x := range []int{mid + off, mid - off} {
			if x < lo || x > hi || !r.free(x, want) {
				continue
			}
			chosen, found = x, true
			break
		}
		if found {
			break
		}
	}

	r.channels[chosen] = append(r.channels[chosen], want)
	return chosen
}

func (r *Router) free(x int, want span) bool {
	for _, s := range r.channels[x] {
		if s.overlaps(want) {
			return false
		}
	}
	return true
}

// line merges a line segment into whatever connector already occupies the cell
func line(g *Grid, x, y, dirs int) {
	cur, ok := g.At(x, y)
	if !ok {
		return
	}
	if cur.Style == StyleArrow {
		return
	}
	if cur.Style == StyleEdge {
		dirs |= glyphDirs[cur.Glyph]
	}
	glyph, ok := dirGlyphs[dirs]
	if !ok {
		glyph = '┼'
	}
	g.Put(x, y, glyph, StyleEdge)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
