package export

import (
	"fmt"
	"io"

	"github.com/kraitsura/techtree/pkg/canvas"

	svg "github.com/ajstarks/svgo"
)

// errWriter remembers the first write error; svgo does not report them
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// WriteSVG renders a painted grid as monospace SVG text. Each run is
// stretched to its exact cell width so box-drawing glyphs meet.
func WriteSVG(w io.Writer, g *canvas.Grid, title string) error {
	ew := &errWriter{w: w}
	width, height, top := canvasSize(g, title)

	s := svg.New(ew)
	s.Start(width, height)
	if title != "" {
		s.Title(title)
	}
	s.Rect(0, 0, width, height, "fill:"+colorBg)
	if title != "" {
		s.Text(padding, padding+cellHeight, title,
			"fill:"+colorPrimary+";font-family:monospace;font-size:16px;font-weight:bold")
	}

	s.Gstyle("font-family:monospace;font-size:14px")
	for y := 0; y < g.Height(); y++ {
		baseline := padding + top + y*cellHeight + cellHeight - 4
		for _, r := range rowRuns(g, y) {
			style := "fill:" + cellColor(r.cell)
			if cellBold(r.cell.Style) {
				style += ";font-weight:bold"
			}
			s.Text(padding+r.x*cellWidth, baseline, r.text, style,
				fmt.Sprintf(`textLength="%d"`, r.n*cellWidth),
				`lengthAdjust="spacingAndGlyphs"`,
				`xml:space="preserve"`)
		}
	}
	s.Gend()
	s.End()
	return ew.err
}
