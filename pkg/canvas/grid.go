// Package canvas is a fixed-size character grid with bounds-checked writes,
// plus the edge router that draws connectors onto it.
//
// Cells carry a glyph and a style class rather than terminal escape codes so
// the same grid can be rendered with lipgloss, exported to SVG/PNG, or
// compared as plain text in tests.
package canvas

import (
	"strings"

	"github.com/kraitsura/techtree/pkg/model"

	"github.com/mattn/go-runewidth"
)

// Style classifies what a cell belongs to
type Style int

const (
	StyleNone Style = iota
	StyleEdge
	StyleArrow
	StyleBox
	StyleBoxSelected
	StyleTitle
	StyleTitleSelected
	StyleMeta
	StyleHeader
	StyleHeaderRule
	StyleMarker
	StyleMarkerSelected
)

// Cell is one character position of the grid. A zero Glyph following a
// wide rune marks the continuation half of that rune.
type Cell struct {
	Glyph  rune
	Style  Style
	Status model.Status
}

// Grid is a width x height buffer of cells
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// NewGrid allocates a blank grid. Negative sizes are treated as zero.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i].Glyph = ' '
	}
	return &Grid{width: width, height: height, cells: cells}
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) lies on the grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// At returns the cell at (x, y)
func (g *Grid) At(x, y int) (Cell, bool) {
	if !g.InBounds(x, y) {
		return Cell{}, false
	}
	return g.cells[y*g.width+x], true
}

// Set writes a cell. Writes outside the grid are dropped.
func (g *Grid) Set(x, y int, c Cell) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.cells[y*g.width+x] = c
	return true
}

// Put writes a glyph with a style and no status
func (g *Grid) Put(x, y int, glyph rune, style Style) bool {
	return g.Set(x, y, Cell{Glyph: glyph, Style: style})
}

// WriteString writes s starting at (x, y), clipped to maxWidth cells.
// Returns the number of cells written.
func (g *Grid) WriteString(x, y int, s string, maxWidth int, style Style, status model.Status) int {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if used+w > maxWidth {
			break
		}
		g.Set(x+used, y, Cell{Glyph: r, Style: style, Status: status})
		if w == 2 {
			g.Set(x+used+1, y, Cell{Glyph: 0, Style: style, Status: status})
		}
		used += w
	}
	return used
}

// Fill sets every cell of the rectangle to c
func (g *Grid) Fill(r Rect, c Cell) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			g.Set(x, y, c)
		}
	}
}

// Crop copies the part of the grid inside r. Parts of r outside the grid
// come back blank.
func (g *Grid) Crop(r Rect) *Grid {
	out := NewGrid(r.W, r.H)
	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			if c, ok := g.At(r.X+x, r.Y+y); ok {
				out.cells[y*out.width+x] = c
			}
		}
	}
	// A continuation cell cut from its rune would shift the row left
	for y := 0; y < out.height; y++ {
		if out.width > 0 && out.cells[y*out.width].Glyph == 0 {
			out.cells[y*out.width].Glyph = ' '
		}
	}
	return out
}

// Row returns the cells of line y
func (g *Grid) Row(y int) []Cell {
	if y < 0 || y >= g.height {
		return nil
	}
	return g.cells[y*g.width : (y+1)*g.width]
}

// Lines renders the grid as plain text, one string per row
func (g *Grid) Lines() []string {
	lines := make([]string, g.height)
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		b.Reset()
		for _, c := range g.Row(y) {
			if c.Glyph == 0 {
				continue
			}
			b.WriteRune(c.Glyph)
		}
		lines[y] = b.String()
	}
	return lines
}

// String renders the grid as plain text with trailing spaces trimmed
func (g *Grid) String() string {
	lines := g.Lines()
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}
