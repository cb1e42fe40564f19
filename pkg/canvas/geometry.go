package canvas

// Rect is an axis-aligned block of cells
type Rect struct {
	X, Y, W, H int
}

// MidY returns the vertical midpoint row of the rectangle
func (r Rect) MidY() int { return r.Y + r.H/2 }

// Right returns the first column past the rectangle
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the first row past the rectangle
func (r Rect) Bottom() int { return r.Y + r.H }

// Contains reports whether the cell (x, y) is inside r
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.Right() && y < r.Bottom()
}

// Minimum gap that still fits a lead-in, a channel and an arrowhead
const minColumnGap = 3

// Geometry maps layout (column, row) cells to character cells
type Geometry struct {
	NodeWidth  int
	NodeHeight int
	ColumnGap  int
	RowGap     int
	MarginX    int
	MarginY    int
}

// DefaultGeometry returns the sizes used by the dashboard
func DefaultGeometry() Geometry {
	return Geometry{
		NodeWidth:  26,
		NodeHeight: 3,
		ColumnGap:  8,
		RowGap:     1,
		MarginX:    1,
		MarginY:    0,
	}
}

// Normalize clamps the geometry to sizes the renderer can draw
func (g Geometry) Normalize() Geometry {
	if g.NodeWidth < 8 {
		g.NodeWidth = 8
	}
	if g.NodeHeight < 3 {
		g.NodeHeight = 3
	}
	if g.ColumnGap < minColumnGap {
		g.ColumnGap = minColumnGap
	}
	if g.RowGap < 0 {
		g.RowGap = 0
	}
	if g.MarginX < 0 {
		g.MarginX = 0
	}
	if g.MarginY < 0 {
		g.MarginY = 0
	}
	return g
}

// ColumnPitch is the horizontal distance between two columns
func (g Geometry) ColumnPitch() int { return g.NodeWidth + g.ColumnGap }

// RowPitch is the vertical distance between two rows
func (g Geometry) RowPitch() int { return g.NodeHeight + g.RowGap }

// Box returns the rectangle occupied by the cell at (col, row)
func (g Geometry) Box(col, row int) Rect {
	return Rect{
		X: g.MarginX + col*g.ColumnPitch(),
		Y: g.MarginY + row*g.RowPitch(),
		W: g.NodeWidth,
		H: g.NodeHeight,
	}
}

// Size returns the number of character cells needed for cols x rows
func (g Geometry) Size(cols, rows int) (width, height int) {
	if cols <= 0 || rows <= 0 {
		return 0, 0
	}
	width = 2*g.MarginX + cols*g.NodeWidth + (cols-1)*g.ColumnGap
	height = 2*g.MarginY + rows*g.NodeHeight + (rows-1)*g.RowGap
	return width, height
}
