package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	reflowtrunc "github.com/muesli/reflow/truncate"
)

// Rows taken by the header and the footer
const (
	headerLines = 1
	footerLines = 2
)

// Narrowest terminal that still shows the detail pane beside the tree
const minSplitWidth = 80

func (m *Model) resize() {
	bodyHeight := m.height - headerLines - footerLines
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	treeWidth, detailWidth := m.splitWidths()
	m.tree.SetSize(treeWidth, bodyHeight)
	if detailWidth > 0 {
		// Border takes two rows and two columns
		m.detail.SetSize(detailWidth-2, bodyHeight-2)
	}
	m.helpOverlay.SetSize(m.width, m.height)
	m.jump.SetSize(m.width, m.height)
	m.help.Width = m.width
}

func (m Model) splitWidths() (tree, detail int) {
	if !m.showDetail || m.width < minSplitWidth {
		return m.width, 0
	}
	detail = m.width * 40 / 100
	return m.width - detail, detail
}

// View implements tea.Model
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	body := m.tree.View()
	if _, detailWidth := m.splitWidths(); detailWidth > 0 {
		panel := PanelStyle.Width(detailWidth - 2).Height(m.height - headerLines - footerLines - 2)
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel.Render(m.detail.View()))
	}

	base := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())

	switch {
	case m.helpOverlay.IsVisible():
		return m.renderModalOverlay(base, m.helpOverlay.View())
	case m.showJump:
		return m.renderModalOverlay(base, m.jump.View())
	}
	return base
}

func (m Model) renderHeader() string {
	t := m.theme
	titleStyle := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary)
	statsStyle := t.Renderer.NewStyle().Foreground(t.Subtext)

	total, finished := len(m.nodes), 0
	for _, n := range m.nodes {
		if n.Status.IsFinished() {
			finished++
		}
	}
	parts := []string{fmt.Sprintf("%d/%d done", finished, total)}
	if m.tree.GroupMode() {
		parts = append(parts, "grouped")
	}
	if hidden := len(m.tree.HiddenGroups()); hidden > 0 && m.tree.GroupMode() {
		parts = append(parts, fmt.Sprintf("%d collapsed", hidden))
	}
	if m.hideFinished {
		parts = append(parts, "hiding finished")
	}

	line := titleStyle.Render("◆ Tech Tree") + "  " + statsStyle.Render(strings.Join(parts, " · "))
	return reflowtrunc.StringWithTail(line, uint(m.width), "…")
}

func (m Model) renderFooter() string {
	t := m.theme
	var status string
	if m.status != "" && time.Since(m.statusAt) < statusTTL {
		style := t.Renderer.NewStyle().Foreground(t.Merged)
		if m.statusErr {
			style = t.Renderer.NewStyle().Foreground(t.Blocked)
		}
		status = style.Render(m.status)
	} else if id, ok := m.tree.SelectedGroupID(); ok {
		status = t.Renderer.NewStyle().Foreground(t.Subtext).Render("Plan: " + m.tree.GroupDisplayName(id))
	}
	status = reflowtrunc.StringWithTail(status, uint(m.width), "…")
	return status + "\n" + m.help.View(m.keys)
}

// renderModalOverlay centers a modal over the base view. Base content left of
// the modal is kept; content to its right is dropped on the covered rows.
func (m Model) renderModalOverlay(base, modal string) string {
	modalWidth := lipgloss.Width(modal)
	modalHeight := lipgloss.Height(modal)

	baseLines := strings.Split(base, "\n")
	modalLines := strings.Split(modal, "\n")

	startRow := (m.height - modalHeight) / 2
	startCol := (m.width - modalWidth) / 2
	if startRow < 0 {
		startRow = 0
	}
	if startCol < 0 {
		startCol = 0
	}

	for i, modalLine := range modalLines {
		row := startRow + i
		for row >= len(baseLines) {
			baseLines = append(baseLines, "")
		}
		baseLine := baseLines[row]
		baseWidth := ansi.PrintableRuneWidth(baseLine)

		var b strings.Builder
		if startCol > 0 {
			if baseWidth >= startCol {
				b.WriteString(reflowtrunc.String(baseLine, uint(startCol)))
			} else {
				b.WriteString(baseLine)
				b.WriteString(strings.Repeat(" ", startCol-baseWidth))
			}
		}
		b.WriteString(modalLine)
		baseLines[row] = b.String()
	}
	return strings.Join(baseLines, "\n")
}
