package ui

import (
	"strings"

	"github.com/kraitsura/techtree/pkg/canvas"

	"github.com/charmbracelet/lipgloss"
)

// EmptyPlaceholder is shown when there is nothing to lay out
const EmptyPlaceholder = "No PRs to show"

// View renders the visible window of the tree
func (m TechTreeModel) View() string {
	if m.layout.Len() == 0 {
		return m.renderPlaceholder()
	}

	g := m.scene.Paint(canvas.PaintOptions{Selected: m.selected, HasSelection: m.hasSelection})
	if m.width > 0 && m.height > 0 {
		g = g.Crop(canvas.Rect{X: m.offsetX, Y: m.offsetY, W: m.width, H: m.height})
	}
	return m.theme.renderGrid(g)
}

func (m TechTreeModel) renderPlaceholder() string {
	t := m.theme
	msg := t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true).Render(EmptyPlaceholder)
	if m.width <= 0 || m.height <= 0 {
		return msg
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

// renderGrid turns painted cells into styled lines. Consecutive cells of the
// same class are rendered as one run.
func (t Theme) renderGrid(g *canvas.Grid) string {
	lines := make([]string, g.Height())
	var line, run strings.Builder

	for y := 0; y < g.Height(); y++ {
		line.Reset()
		run.Reset()
		var cur canvas.Cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur.Style == canvas.StyleNone {
				line.WriteString(run.String())
			} else {
				line.WriteString(t.cellStyle(cur).Render(run.String()))
			}
			run.Reset()
		}

		for _, c := range g.Row(y) {
			if c.Glyph == 0 {
				continue
			}
			if run.Len() > 0 && (c.Style != cur.Style || c.Status != cur.Status) {
				flush()
			}
			cur = c
			run.WriteRune(c.Glyph)
		}
		flush()
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}
