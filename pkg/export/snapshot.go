// Package export writes static renderings of the tech tree. Both formats are
// drawn from the same painted canvas the terminal shows, so boxes and routed
// edges line up exactly with the TUI.
package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraitsura/techtree/pkg/canvas"
	"github.com/kraitsura/techtree/pkg/model"

	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedFormat is returned for anything other than svg or png
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Pixel size of one grid cell
const (
	cellWidth  = 8
	cellHeight = 16
	padding    = 16
)

// SnapshotOptions describes one output file
type SnapshotOptions struct {
	Path   string
	Format string // "svg" or "png"; derived from Path when empty
	Title  string
}

// ResolveFormat returns the lower-case output format for opts
func ResolveFormat(opts SnapshotOptions) (string, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.Path)), ".")
	}
	switch format {
	case "svg", "png":
		return format, nil
	case "":
		return "", fmt.Errorf("%w: cannot infer format from %q", ErrUnsupportedFormat, opts.Path)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// SaveSnapshot paints the scene and writes it to opts.Path
func SaveSnapshot(scene *canvas.Scene, opts SnapshotOptions) error {
	return SaveAll(context.Background(), scene, []SnapshotOptions{opts})
}

// SaveAll paints the scene once and writes every requested file concurrently
func SaveAll(ctx context.Context, scene *canvas.Scene, outputs []SnapshotOptions) error {
	if scene == nil {
		return errors.New("export: nil scene")
	}
	formats := make([]string, len(outputs))
	for i, o := range outputs {
		f, err := ResolveFormat(o)
		if err != nil {
			return err
		}
		formats[i] = f
	}

	grid := scene.Paint(canvas.PaintOptions{})

	g, ctx := errgroup.WithContext(ctx)
	for i, o := range outputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeFile(o.Path, func(w io.Writer) error {
				if formats[i] == "png" {
					return WritePNG(w, grid, o.Title)
				}
				return WriteSVG(w, grid, o.Title)
			})
		})
	}
	return g.Wait()
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := render(bw); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return bw.Flush()
}

// canvasSize returns the pixel size of a grid plus title band
func canvasSize(g *canvas.Grid, title string) (width, height, top int) {
	if title != "" {
		top = cellHeight * 2
	}
	width = g.Width()*cellWidth + 2*padding
	height = g.Height()*cellHeight + top + 2*padding
	return width, height, top
}

// Dracula palette, matching the terminal theme
const (
	colorBg        = "#282A36"
	colorText      = "#F8F8F2"
	colorSubtext   = "#BFBFBF"
	colorMuted     = "#6272A4"
	colorPrimary   = "#BD93F9"
	colorHighlight = "#44475A"
)

func statusColor(s model.Status) string {
	switch s {
	case model.StatusInProgress:
		return "#8BE9FD"
	case model.StatusInReview:
		return "#F1FA8C"
	case model.StatusMerged:
		return "#50FA7B"
	case model.StatusClosed:
		return "#6272A4"
	case model.StatusBlocked:
		return "#FF5555"
	}
	return colorText
}

func cellColor(c canvas.Cell) string {
	switch c.Style {
	case canvas.StyleEdge:
		return colorMuted
	case canvas.StyleArrow, canvas.StyleBoxSelected, canvas.StyleTitleSelected,
		canvas.StyleHeader, canvas.StyleMarkerSelected:
		return colorPrimary
	case canvas.StyleBox, canvas.StyleTitle:
		return statusColor(c.Status)
	case canvas.StyleMeta, canvas.StyleMarker:
		return colorSubtext
	case canvas.StyleHeaderRule:
		return colorHighlight
	}
	return colorText
}

func cellBold(s canvas.Style) bool {
	switch s {
	case canvas.StyleBoxSelected, canvas.StyleTitleSelected, canvas.StyleHeader, canvas.StyleMarkerSelected:
		return true
	}
	return false
}

// run is a stretch of same-styled, non-blank cells on one row
type run struct {
	x    int // first cell
	n    int // width in cells
	text string
	cell canvas.Cell
}

func rowRuns(g *canvas.Grid, y int) []run {
	var out []run
	var cur *run
	var b strings.Builder
	flush := func() {
		if cur != nil {
			cur.text = b.String()
			out = append(out, *cur)
			cur = nil
			b.Reset()
		}
	}
	for x, c := range g.Row(y) {
		if c.Glyph == 0 {
			if cur != nil {
				cur.n++
			}
			continue
		}
		if c.Glyph == ' ' && c.Style == canvas.StyleNone {
			flush()
			continue
		}
		if cur != nil && (cur.cell.Style != c.Style || cur.cell.Status != c.Status) {
			flush()
		}
		if cur == nil {
			cur = &run{x: x, cell: c}
		}
		cur.n++
		b.WriteRune(c.Glyph)
	}
	flush()
	return out
}
