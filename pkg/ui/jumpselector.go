package ui

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kraitsura/techtree/pkg/model"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// JumpItem is a plan or a PR that can be jumped to
type JumpItem struct {
	Type   string // "plan" or "pr"
	Value  string // plan id or PR id
	Title  string
	Status model.Status

	// Plans only
	Total    int
	Finished int
}

// Progress returns the finished share of a plan's PRs
func (it JumpItem) Progress() float64 {
	if it.Total == 0 {
		return 0
	}
	return float64(it.Finished) / float64(it.Total)
}

// JumpSelectorModel is the fuzzy "jump to" overlay
type JumpSelectorModel struct {
	// Data
	allItems      []JumpItem
	filteredItems []JumpItem

	// UI State
	searchInput   textinput.Model
	selectedIndex int

	// Dimensions
	width  int
	height int
	theme  Theme

	// Selection result
	confirmed    bool
	selectedItem *JumpItem
}

// NewJumpSelectorModel builds the selector over the current PRs
func NewJumpSelectorModel(nodes []model.Node, groupName func(string) string, theme Theme) JumpSelectorModel {
	ti := textinput.New()
	ti.Placeholder = "Search PRs and plans..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	type counts struct{ total, finished int }
	plans := make(map[string]counts)
	var prs []JumpItem
	for _, n := range nodes {
		prs = append(prs, JumpItem{Type: "pr", Value: n.ID, Title: n.Title, Status: n.Status})
		c := plans[n.Group]
		c.total++
		if n.Status.IsFinished() {
			c.finished++
		}
		plans[n.Group] = c
	}

	var planItems []JumpItem
	for id, c := range plans {
		planItems = append(planItems, JumpItem{
			Type:     "plan",
			Value:    id,
			Title:    groupName(id),
			Total:    c.total,
			Finished: c.finished,
		})
	}

	// Plans by id with standalone last, PRs by id
	sort.Slice(planItems, func(i, j int) bool {
		a, b := planItems[i].Value, planItems[j].Value
		if a == "" || b == "" {
			return b == "" && a != ""
		}
		return a < b
	})
	sort.Slice(prs, func(i, j int) bool { return prs[i].Value < prs[j].Value })

	allItems := append(planItems, prs...)

	return JumpSelectorModel{
		allItems:      allItems,
		filteredItems: allItems,
		searchInput:   ti,
		theme:         theme,
		width:         60,
		height:        20,
	}
}

// SetSize updates the selector dimensions
func (m *JumpSelectorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	inputWidth := width - 20
	if inputWidth < 20 {
		inputWidth = 20
	}
	if inputWidth > 50 {
		inputWidth = 50
	}
	m.searchInput.Width = inputWidth
}

// Update handles a key and reports whether it was consumed
func (m *JumpSelectorModel) Update(key string) (handled bool) {
	switch key {
	case "up", "ctrl+k", "ctrl+p":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
		return true
	case "down", "ctrl+j", "ctrl+n":
		if m.selectedIndex < len(m.filteredItems)-1 {
			m.selectedIndex++
		}
		return true
	case "enter":
		if m.selectedIndex < len(m.filteredItems) {
			item := m.filteredItems[m.selectedIndex]
			m.selectedItem = &item
			m.confirmed = true
		}
		return true
	case "esc":
		m.confirmed = false
		m.selectedItem = nil
		return true
	case "backspace":
		if v := []rune(m.searchInput.Value()); len(v) > 0 {
			m.searchInput.SetValue(string(v[:len(v)-1]))
			m.filterItems()
		}
		return true
	case " ":
		m.searchInput.SetValue(m.searchInput.Value() + " ")
		m.filterItems()
		return true
	default:
		if len([]rune(key)) == 1 {
			m.searchInput.SetValue(m.searchInput.Value() + key)
			m.filterItems()
			return true
		}
	}
	return false
}

func (m *JumpSelectorModel) filterItems() {
	query := strings.TrimSpace(m.searchInput.Value())
	m.selectedIndex = 0
	if query == "" {
		m.filteredItems = m.allItems
		return
	}

	searchStrings := make([]string, len(m.allItems))
	for i, item := range m.allItems {
		searchStrings[i] = item.Value + " " + item.Title
	}

	matches := fuzzy.Find(query, searchStrings)
	m.filteredItems = make([]JumpItem, 0, len(matches))
	for _, match := range matches {
		m.filteredItems = append(m.filteredItems, m.allItems[match.Index])
	}
}

// IsConfirmed returns true if the user picked an item
func (m *JumpSelectorModel) IsConfirmed() bool { return m.confirmed }

// SelectedItem returns the picked item, or nil
func (m *JumpSelectorModel) SelectedItem() *JumpItem { return m.selectedItem }

// SearchValue returns the current query
func (m *JumpSelectorModel) SearchValue() string { return m.searchInput.Value() }

// Items returns the items matching the current query
func (m *JumpSelectorModel) Items() []JumpItem { return m.filteredItems }

// View renders the selector as a centered box
func (m *JumpSelectorModel) View() string {
	t := m.theme

	boxWidth := 60
	if m.width < 70 {
		boxWidth = m.width - 10
	}
	if boxWidth < 35 {
		boxWidth = 35
	}
	contentWidth := boxWidth - 4

	var lines []string
	titleStyle := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
	lines = append(lines, titleStyle.Render("Jump to PR or Plan"), "")

	inputStyle := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Secondary).
		Padding(0, 1).
		Width(contentWidth - 2)
	searchValue := m.searchInput.Value()
	if searchValue == "" {
		searchValue = t.Renderer.NewStyle().Foreground(t.Subtext).Render(m.searchInput.Placeholder)
	}
	lines = append(lines, inputStyle.Render(searchValue), "")

	maxVisible := clamp(m.height-12, 5, 15)

	if len(m.filteredItems) == 0 {
		emptyStyle := t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true)
		lines = append(lines, emptyStyle.Render("  No matching PRs or plans"))
	} else {
		// Keep the selected row inside the visible window
		start := 0
		if m.selectedIndex >= maxVisible {
			start = m.selectedIndex - maxVisible + 1
		}
		end := start + maxVisible
		if end > len(m.filteredItems) {
			end = len(m.filteredItems)
		}
		for i := start; i < end; i++ {
			lines = append(lines, m.renderItem(m.filteredItems[i], i == m.selectedIndex, contentWidth))
		}
		if rest := len(m.filteredItems) - end; rest > 0 {
			moreStyle := t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true)
			lines = append(lines, moreStyle.Render("  ... and "+strconv.Itoa(rest)+" more"))
		}
	}

	lines = append(lines, "")
	footerStyle := t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true)
	lines = append(lines, footerStyle.Render("↑/↓: navigate • enter: jump • esc: cancel"))

	boxStyle := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth)

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m *JumpSelectorModel) renderItem(item JumpItem, isSelected bool, maxWidth int) string {
	t := m.theme

	prefix := "  "
	if isSelected {
		prefix = "▸ "
	}
	nameStyle := t.Renderer.NewStyle()
	if isSelected {
		nameStyle = nameStyle.Foreground(t.Primary).Bold(true)
	}

	var suffix, name string
	if item.Type == "plan" {
		suffix = m.renderProgressBar(item)
		name = prefix + "▤ " + item.Title
	} else {
		suffix = RenderStatusBadge(item.Status)
		name = prefix + item.Value + "  " + item.Title
	}

	room := maxWidth - lipgloss.Width(suffix) - 2
	if room < 8 {
		room = 8
	}
	name = runewidth.Truncate(name, room, "…")
	padding := maxWidth - runewidth.StringWidth(name) - lipgloss.Width(suffix)
	if padding < 1 {
		padding = 1
	}
	return nameStyle.Render(name) + strings.Repeat(" ", padding) + suffix
}

func (m *JumpSelectorModel) renderProgressBar(item JumpItem) string {
	t := m.theme

	barWidth := 8
	progress := item.Progress()
	filled := int(progress * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	var barColor lipgloss.AdaptiveColor
	switch {
	case progress >= 1.0:
		barColor = t.Merged
	case progress >= 0.5:
		barColor = t.InProgress
	default:
		barColor = t.Pending
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	out := t.Renderer.NewStyle().Foreground(barColor).Render("[" + bar + "]")
	out += t.Renderer.NewStyle().Foreground(t.Subtext).Render(
		" " + strconv.Itoa(item.Finished) + "/" + strconv.Itoa(item.Total))
	if progress >= 1.0 {
		out += " ✓"
	}
	return out
}
