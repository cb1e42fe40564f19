package ui

import (
	"fmt"
	"strings"

	"github.com/kraitsura/techtree/pkg/model"
	"github.com/kraitsura/techtree/pkg/store"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// DetailModel shows the selected PR as rendered markdown
type DetailModel struct {
	viewport   viewport.Model
	mdRenderer *glamour.TermRenderer
	wrapWidth  int
	theme      Theme

	node     model.Node
	hasNode  bool
	planName string
	blocking []string
	lastRun  *store.Activation
}

// NewDetailModel creates an empty detail pane
func NewDetailModel(theme Theme) DetailModel {
	return DetailModel{
		viewport: viewport.New(40, 20),
		theme:    theme,
	}
}

// SetSize resizes the pane and re-wraps the content
func (m *DetailModel) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	if width != m.wrapWidth {
		m.wrapWidth = width
		m.mdRenderer, _ = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width-2),
		)
	}
	m.refresh()
}

// SetNode shows a PR. blocking lists the PRs that depend on it.
func (m *DetailModel) SetNode(n model.Node, planName string, blocking []string) {
	m.node, m.hasNode = n, true
	m.planName = planName
	m.blocking = blocking
	m.lastRun = nil
	m.viewport.GotoTop()
	m.refresh()
}

// SetLastRun attaches the latest activate result for the shown PR. Results
// for other PRs are ignored.
func (m *DetailModel) SetLastRun(a store.Activation) {
	if !m.hasNode || a.NodeID != m.node.ID {
		return
	}
	m.lastRun = &a
	m.refresh()
}

// SetText shows a plain message instead of a PR
func (m *DetailModel) SetText(text string) {
	m.hasNode = false
	m.viewport.SetContent(m.theme.Renderer.NewStyle().Foreground(m.theme.Subtext).Render(text))
	m.viewport.GotoTop()
}

// Update forwards scroll keys to the viewport
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the pane
func (m DetailModel) View() string {
	return m.viewport.View()
}

func (m *DetailModel) refresh() {
	if !m.hasNode {
		return
	}
	md := DetailMarkdown(m.node, m.planName, m.blocking)
	if m.lastRun != nil {
		md += lastRunMarkdown(*m.lastRun)
	}
	if m.mdRenderer != nil {
		if out, err := m.mdRenderer.Render(md); err == nil {
			m.viewport.SetContent(out)
			return
		}
	}
	m.viewport.SetContent(md)
}

// DetailMarkdown formats a PR for the detail pane
func DetailMarkdown(n model.Node, planName string, blocking []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", n.Title)
	fmt.Fprintf(&b, "**%s** · %s · %s\n\n", n.ID, n.Status.Label(), planName)
	if n.Branch != "" {
		fmt.Fprintf(&b, "Branch: `%s`\n\n", n.Branch)
	}
	if n.URL != "" {
		fmt.Fprintf(&b, "Link: %s\n\n", n.URL)
	}
	if !n.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "Updated: %s\n\n", n.UpdatedAt.Format("2006-01-02 15:04"))
	}
	if len(n.DependsOn) > 0 {
		fmt.Fprintf(&b, "Depends on: %s\n\n", strings.Join(n.DependsOn, ", "))
	}
	if len(blocking) > 0 {
		fmt.Fprintf(&b, "Blocks: %s\n\n", strings.Join(blocking, ", "))
	}
	if desc := strings.TrimSpace(n.Description); desc != "" {
		b.WriteString("---\n\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}
	return b.String()
}

func lastRunMarkdown(a store.Activation) string {
	result := "ok"
	if !a.Succeeded() {
		result = fmt.Sprintf("exit %d", a.ExitCode)
	}
	s := fmt.Sprintf("\n---\n\nLast run %s (%s): `%s`\n", a.RanAt.Format("2006-01-02 15:04"), result, a.Command)
	if a.Output != "" {
		s += "\n```\n" + a.Output + "\n```\n"
	}
	return s
}
