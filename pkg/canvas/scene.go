package canvas

import (
	"fmt"

	"github.com/kraitsura/techtree/pkg/layout"
	"github.com/kraitsura/techtree/pkg/model"

	"github.com/mattn/go-runewidth"
)

// Scene maps a layout onto character cells
type Scene struct {
	Layout   *layout.Layout
	Geometry Geometry
	// GroupName resolves a group id to its label. Nil prints raw ids.
	GroupName func(id string) string

	width  int
	height int
}

// PaintOptions controls the decoration of a painted scene
type PaintOptions struct {
	Selected     layout.Entry
	HasSelection bool
}

// NewScene sizes a scene for l. The width is stretched to minWidth so header
// rules span the whole viewport.
func NewScene(l *layout.Layout, geo Geometry, minWidth int) *Scene {
	geo = geo.Normalize()
	s := &Scene{Layout: l, Geometry: geo}
	if l.Len() == 0 {
		return s
	}
	s.width, s.height = geo.Size(l.Columns, l.Rows)
	if minWidth > s.width {
		s.width = minWidth
	}
	return s
}

// Size returns the content size in cells
func (s *Scene) Size() (width, height int) { return s.width, s.height }

// Rect returns the box occupied by a navigable entry. Markers own their
// row and grow to fit their label.
func (s *Scene) Rect(e layout.Entry) (Rect, bool) {
	p, ok := s.Layout.Positions[e]
	if !ok {
		return Rect{}, false
	}
	r := s.Geometry.Box(p.Col, p.Row)
	if e.IsMarker() {
		w := runewidth.StringWidth(s.markerLabel(e.ID)) + 4
		if limit := s.width - r.X - s.Geometry.MarginX; w > limit {
			w = limit
		}
		if w > r.W {
			r.W = w
		}
	}
	return r, true
}

func (s *Scene) groupName(id string) string {
	if s.GroupName == nil {
		return id
	}
	return s.GroupName(id)
}

func (s *Scene) markerLabel(groupID string) string {
	return fmt.Sprintf("▸ %s (%d hidden)", s.groupName(groupID), s.Layout.HiddenCounts[groupID])
}

// HeaderRect returns the full-width band of a group header
func (s *Scene) HeaderRect(groupID string) (Rect, bool) {
	row, ok := s.Layout.HeaderRow(groupID)
	if !ok {
		return Rect{}, false
	}
	box := s.Geometry.Box(0, row)
	return Rect{X: 0, Y: box.Y, W: s.width, H: box.H}, true
}

// Paint draws headers, edges and boxes. Edges go first so boxes sit on top.
func (s *Scene) Paint(opts PaintOptions) *Grid {
	g := NewGrid(s.width, s.height)
	if s.Layout.Len() == 0 {
		return g
	}
	for _, h := range s.Layout.Headers {
		s.paintHeader(g, h, s.groupName(h.GroupID))
	}

	edges := make([]RouteEdge, 0, len(s.Layout.Edges))
	for _, e := range s.Layout.Edges {
		from, ok1 := s.Rect(layout.NodeEntry(e.From))
		to, ok2 := s.Rect(layout.NodeEntry(e.To))
		if !ok1 || !ok2 {
			continue
		}
		edges = append(edges, RouteEdge{FromID: e.From, ToID: e.To, From: from, To: to})
	}
	NewRouter(s.Geometry.ColumnGap).Route(g, edges)

	for _, e := range s.Layout.Entries {
		r, _ := s.Rect(e)
		selected := opts.HasSelection && e == opts.Selected
		if e.IsMarker() {
			paintMarker(g, r, s.markerLabel(e.ID), selected)
			continue
		}
		n, _ := s.Layout.Node(e.ID)
		paintNode(g, r, n, selected)
	}
	return g
}

func (s *Scene) paintHeader(g *Grid, h layout.Header, label string) {
	box := s.Geometry.Box(0, h.Row)
	y := box.MidY()
	x := s.Geometry.MarginX
	right := s.width - s.Geometry.MarginX

	x += g.WriteString(x, y, "▾ "+label+" ", right-x, StyleHeader, "")
	for ; x < right; x++ {
		g.Put(x, y, '─', StyleHeaderRule)
	}
}

type border struct {
	tl, tr, bl, br, h, v rune
}

var (
	plainBorder    = border{'╭', '╮', '╰', '╯', '─', '│'}
	selectedBorder = border{'┏', '┓', '┗', '┛', '━', '┃'}
	markerBorder   = border{'┌', '┐', '└', '┘', '╌', '╎'}
)

func paintBox(g *Grid, r Rect, b border, style Style, status model.Status) {
	right, bottom := r.Right()-1, r.Bottom()-1
	for x := r.X; x <= right; x++ {
		for y := r.Y; y <= bottom; y++ {
			glyph := ' '
			switch {
			case (y == r.Y || y == bottom) && x > r.X && x < right:
				glyph = b.h
			case (x == r.X || x == right) && y > r.Y && y < bottom:
				glyph = b.v
			case x == r.X && y == r.Y:
				glyph = b.tl
			case x == right && y == r.Y:
				glyph = b.tr
			case x == r.X && y == bottom:
				glyph = b.bl
			case x == right && y == bottom:
				glyph = b.br
			}
			st := style
			if glyph == ' ' {
				st = StyleNone
			}
			g.Set(x, y, Cell{Glyph: glyph, Style: st, Status: status})
		}
	}
}

func paintNode(g *Grid, r Rect, n model.Node, selected bool) {
	b, boxStyle, titleStyle := plainBorder, StyleBox, StyleTitle
	if selected {
		b, boxStyle, titleStyle = selectedBorder, StyleBoxSelected, StyleTitleSelected
	}
	paintBox(g, r, b, boxStyle, n.Status)

	inner := r.W - 4
	if inner <= 0 {
		return
	}
	// Id sits in the top border
	id := runewidth.Truncate(" "+n.ID+" ", inner, "…")
	g.WriteString(r.X+2, r.Y, id, inner, StyleMeta, n.Status)

	y := r.MidY()
	g.Put(r.X+2, y, StatusIcon(n.Status), titleStyle)
	if c, ok := g.At(r.X+2, y); ok {
		c.Status = n.Status
		g.Set(r.X+2, y, c)
	}
	title := runewidth.Truncate(n.Title, inner-2, "…")
	g.WriteString(r.X+4, y, title, inner-2, titleStyle, n.Status)

	if r.H >= 4 && y+1 < r.Bottom()-1 {
		g.WriteString(r.X+4, y+1, n.Status.Label(), inner-2, StyleMeta, n.Status)
	}
}

func paintMarker(g *Grid, r Rect, label string, selected bool) {
	style := StyleMarker
	if selected {
		style = StyleMarkerSelected
	}
	paintBox(g, r, markerBorder, style, "")
	inner := r.W - 4
	if inner <= 0 {
		return
	}
	g.WriteString(r.X+2, r.MidY(), runewidth.Truncate(label, inner, "…"), inner, style, "")
}

// StatusIcon returns the single-cell glyph shown in front of a title
func StatusIcon(s model.Status) rune {
	switch s {
	case model.StatusInProgress:
		return '◐'
	case model.StatusInReview:
		return '◑'
	case model.StatusMerged:
		return '●'
	case model.StatusClosed:
		return '✕'
	case model.StatusBlocked:
		return '⊘'
	default:
		return '○'
	}
}
