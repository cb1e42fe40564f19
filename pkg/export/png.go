package export

import (
	"io"

	"github.com/kraitsura/techtree/pkg/canvas"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

// WritePNG rasterizes a painted grid. Line glyphs are drawn as strokes since
// the bitmap face only covers ASCII.
func WritePNG(w io.Writer, g *canvas.Grid, title string) error {
	width, height, top := canvasSize(g, title)

	dc := gg.NewContext(width, height)
	dc.SetHexColor(colorBg)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if title != "" {
		dc.SetHexColor(colorPrimary)
		dc.DrawString(title, padding, padding+cellHeight-3)
	}

	for y := 0; y < g.Height(); y++ {
		for x, c := range g.Row(y) {
			if c.Glyph == 0 || c.Glyph == ' ' {
				continue
			}
			px := float64(padding + x*cellWidth)
			py := float64(padding + top + y*cellHeight)
			dc.SetHexColor(cellColor(c))
			drawCell(dc, c, px, py)
		}
	}
	return dc.EncodePNG(w)
}

func drawCell(dc *gg.Context, c canvas.Cell, px, py float64) {
	const cw, ch = float64(cellWidth), float64(cellHeight)
	cx, cy := px+cw/2, py+ch/2

	if s, ok := canvas.GlyphStrokes(c.Glyph); ok {
		dc.SetLineWidth(1)
		if s.Heavy {
			dc.SetLineWidth(2)
		}
		if s.Up {
			dc.DrawLine(cx, cy, cx, py)
		}
		if s.Down {
			dc.DrawLine(cx, cy, cx, py+ch)
		}
		if s.Left {
			dc.DrawLine(cx, cy, px, cy)
		}
		if s.Right {
			dc.DrawLine(cx, cy, px+cw, cy)
		}
		dc.Stroke()
		return
	}

	switch c.Glyph {
	case canvas.ArrowGlyph:
		dc.MoveTo(px, py+3)
		dc.LineTo(px+cw, cy)
		dc.LineTo(px, py+ch-3)
		dc.ClosePath()
		dc.Fill()
		return
	case '▸':
		dc.MoveTo(px+2, cy-3)
		dc.LineTo(px+cw-2, cy)
		dc.LineTo(px+2, cy+3)
		dc.ClosePath()
		dc.Fill()
		return
	case '▾':
		dc.MoveTo(px+1, cy-2)
		dc.LineTo(px+cw-1, cy-2)
		dc.LineTo(cx, cy+3)
		dc.ClosePath()
		dc.Fill()
		return
	case '…':
		dc.DrawString("..", px-2, py+ch-4)
		return
	case canvas.StatusIcon(c.Status):
		dc.DrawCircle(cx, cy, cw/2-1)
		if c.Status.IsFinished() || c.Status.IsActive() {
			dc.Fill()
		} else {
			dc.SetLineWidth(1)
			dc.Stroke()
		}
		return
	}

	r := c.Glyph
	if r > 0x7e {
		r = '?'
	}
	dc.DrawString(string(r), px, py+ch-4)
}
