package canvas

// Strokes lists which sides of a cell a box-drawing glyph connects to
type Strokes struct {
	Up, Down, Left, Right bool
	Heavy                 bool
}

// Box glyphs that never take part in edge merging
var borderDirs = map[rune]int{
	'╭': dirDown | dirRight,
	'╮': dirDown | dirLeft,
	'╰': dirUp | dirRight,
	'╯': dirUp | dirLeft,
	'╌': dirLeft | dirRight,
	'╎': dirUp | dirDown,
}

var heavyDirs = map[rune]int{
	'━': dirLeft | dirRight,
	'┃': dirUp | dirDown,
	'┏': dirDown | dirRight,
	'┓': dirDown | dirLeft,
	'┗': dirUp | dirRight,
	'┛': dirUp | dirLeft,
}

// GlyphStrokes decomposes a line or border glyph so raster outputs can draw
// it with vector strokes. ok is false for anything else.
func GlyphStrokes(r rune) (s Strokes, ok bool) {
	d, ok := glyphDirs[r]
	if !ok {
		d, ok = borderDirs[r]
	}
	if !ok {
		if d, ok = heavyDirs[r]; ok {
			s.Heavy = true
		}
	}
	if !ok {
		return Strokes{}, false
	}
	s.Up = d&dirUp != 0
	s.Down = d&dirDown != 0
	s.Left = d&dirLeft != 0
	s.Right = d&dirRight != 0
	return s, true
}
