package ui

import (
	"sort"

	"github.com/kraitsura/techtree/pkg/canvas"
	"github.com/kraitsura/techtree/pkg/layout"
	"github.com/kraitsura/techtree/pkg/model"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ScrollEdge names the end of the content a scroll-only move reveals
type ScrollEdge int

const (
	ScrollTop ScrollEdge = iota
	ScrollBottom
)

// SelectionChangedMsg is emitted when keyboard input moves the selection
type SelectionChangedMsg struct {
	Entry layout.Entry
}

// ActivatedMsg is emitted when enter is pressed on a real PR
type ActivatedMsg struct {
	NodeID string
}

// ScrollEdgeMsg is emitted when a vertical move finds nothing further and
// the view scrolls to reveal the top header or the bottom overflow instead
type ScrollEdgeMsg struct {
	Edge ScrollEdge
}

// TechTreeModel lays out PRs as a dependency tree and handles spatial
// navigation over it. Every setter rebuilds the layout from scratch.
type TechTreeModel struct {
	theme Theme
	keys  TreeKeyMap
	geo   canvas.Geometry

	// Inputs
	nodes        []model.Node
	groups       map[string]model.Group
	hidden       map[string]bool
	groupMode    bool
	hiddenStatus map[model.Status]bool

	// Derived, replaced wholesale by recompute
	layout *layout.Layout
	scene  *canvas.Scene

	selected     layout.Entry
	hasSelection bool

	width   int
	height  int
	offsetX int
	offsetY int
}

// NewTechTreeModel creates an empty widget
func NewTechTreeModel(theme Theme, geo canvas.Geometry) TechTreeModel {
	m := TechTreeModel{
		theme:        theme,
		keys:         DefaultTreeKeyMap(),
		geo:          geo.Normalize(),
		groups:       make(map[string]model.Group),
		hidden:       make(map[string]bool),
		hiddenStatus: make(map[model.Status]bool),
	}
	m.recompute()
	return m
}

// ══════════════════════════════════════════════════════════════════════════════
// INPUTS - Each setter triggers a full recompute
// ══════════════════════════════════════════════════════════════════════════════

// SetNodes replaces the PR set
func (m *TechTreeModel) SetNodes(nodes []model.Node) {
	m.nodes = make([]model.Node, len(nodes))
	for i, n := range nodes {
		m.nodes[i] = n.Clone()
	}
	m.recompute()
}

// SetGroups replaces the plan metadata used for labels
func (m *TechTreeModel) SetGroups(groups []model.Group) {
	m.groups = make(map[string]model.Group, len(groups))
	for _, g := range groups {
		m.groups[g.ID] = g
	}
	m.recompute()
}

// SetHiddenGroups replaces the set of collapsed plans
func (m *TechTreeModel) SetHiddenGroups(ids []string) {
	m.hidden = make(map[string]bool, len(ids))
	for _, id := range ids {
		m.hidden[id] = true
	}
	m.recompute()
}

// SetGroupMode switches plan headers and collapsing on or off
func (m *TechTreeModel) SetGroupMode(on bool) {
	m.groupMode = on
	m.recompute()
}

// SetStatusFilter hides PRs with any of the given statuses
func (m *TechTreeModel) SetStatusFilter(hide ...model.Status) {
	m.hiddenStatus = make(map[model.Status]bool, len(hide))
	for _, s := range hide {
		m.hiddenStatus[s] = true
	}
	m.recompute()
}

// SetSize sets the viewport the widget renders into
func (m *TechTreeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.rebuildScene()
	m.ensureVisible()
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// Layout returns the current layout snapshot
func (m TechTreeModel) Layout() *layout.Layout { return m.layout }

// GroupMode reports whether plans are grouped
func (m TechTreeModel) GroupMode() bool { return m.groupMode }

// HiddenGroups returns the collapsed plans in display order
func (m TechTreeModel) HiddenGroups() []string {
	ids := make([]string, 0, len(m.hidden))
	for id := range m.hidden {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsGroupHidden reports whether a plan is collapsed
func (m TechTreeModel) IsGroupHidden(id string) bool { return m.hidden[id] }

// StatusFilter returns the statuses currently hidden
func (m TechTreeModel) StatusFilter() []model.Status {
	var out []model.Status
	for _, s := range model.AllStatuses {
		if m.hiddenStatus[s] {
			out = append(out, s)
		}
	}
	return out
}

// SelectedEntry returns the selected navigable entry
func (m TechTreeModel) SelectedEntry() (layout.Entry, bool) {
	return m.selected, m.hasSelection
}

// SelectedNodeID returns the id of the selected PR. Markers have none.
func (m TechTreeModel) SelectedNodeID() (string, bool) {
	if !m.hasSelection || m.selected.IsMarker() {
		return "", false
	}
	return m.selected.ID, true
}

// SelectedNode returns the selected PR
func (m TechTreeModel) SelectedNode() (model.Node, bool) {
	id, ok := m.SelectedNodeID()
	if !ok {
		return model.Node{}, false
	}
	return m.layout.Node(id)
}

// IsHiddenGroupMarkerSelected reports whether a collapsed-plan marker is selected
func (m TechTreeModel) IsHiddenGroupMarkerSelected() bool {
	return m.hasSelection && m.selected.IsMarker()
}

// SelectedGroupID returns the plan of the selected entry. Standalone PRs
// report the empty id.
func (m TechTreeModel) SelectedGroupID() (string, bool) {
	if !m.hasSelection {
		return "", false
	}
	return m.layout.GroupOf(m.selected), true
}

// GroupDisplayName returns the label shown for a plan
func (m TechTreeModel) GroupDisplayName(id string) string {
	if id == "" {
		return model.StandaloneName
	}
	if g, ok := m.groups[id]; ok {
		return g.DisplayName()
	}
	return id
}

// ContentSize returns the size in cells of the full tree for a viewport width
func (m TechTreeModel) ContentSize(viewportWidth int) (width, height int) {
	return m.newScene(viewportWidth).Size()
}

// EntryRect returns where an entry is drawn in content coordinates
func (m TechTreeModel) EntryRect(e layout.Entry) (canvas.Rect, bool) {
	if m.scene == nil {
		return canvas.Rect{}, false
	}
	return m.scene.Rect(e)
}

// Offset returns the top-left content cell shown in the viewport
func (m TechTreeModel) Offset() (x, y int) { return m.offsetX, m.offsetY }

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE - Key handling and events
// ══════════════════════════════════════════════════════════════════════════════

// Update handles navigation keys. Events are returned as commands, one per
// qualifying key press.
func (m TechTreeModel) Update(msg tea.Msg) (TechTreeModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.hasSelection {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		return m.moveVertical(m.layout.Up, ScrollTop)
	case key.Matches(keyMsg, m.keys.Down):
		return m.moveVertical(m.layout.Down, ScrollBottom)
	case key.Matches(keyMsg, m.keys.Left):
		return m.move(m.layout.Left)
	case key.Matches(keyMsg, m.keys.Right):
		return m.move(m.layout.Right)
	case key.Matches(keyMsg, m.keys.NextGroup):
		return m.move(m.layout.NextGroup)
	case key.Matches(keyMsg, m.keys.PrevGroup):
		return m.move(m.layout.PrevGroup)
	case key.Matches(keyMsg, m.keys.First):
		cmd := m.Select(m.layout.Entries[0])
		return m, cmd
	case key.Matches(keyMsg, m.keys.Last):
		cmd := m.Select(m.layout.Entries[len(m.layout.Entries)-1])
		return m, cmd
	case key.Matches(keyMsg, m.keys.Activate):
		if id, ok := m.SelectedNodeID(); ok {
			return m, func() tea.Msg { return ActivatedMsg{NodeID: id} }
		}
	}
	return m, nil
}

func (m TechTreeModel) move(step func(layout.Entry) (layout.Entry, bool)) (TechTreeModel, tea.Cmd) {
	next, ok := step(m.selected)
	if !ok {
		return m, nil
	}
	cmd := m.Select(next)
	return m, cmd
}

func (m TechTreeModel) moveVertical(step func(layout.Entry) (layout.Entry, bool), edge ScrollEdge) (TechTreeModel, tea.Cmd) {
	if next, ok := step(m.selected); ok {
		cmd := m.Select(next)
		return m, cmd
	}
	m.scrollToEdge(edge)
	return m, func() tea.Msg { return ScrollEdgeMsg{Edge: edge} }
}

// Select moves the selection to e and scrolls it into view. It returns a
// SelectionChangedMsg command when the selection actually changed.
func (m *TechTreeModel) Select(e layout.Entry) tea.Cmd {
	if _, ok := m.layout.IndexOf(e); !ok {
		return nil
	}
	if m.hasSelection && m.selected == e {
		return nil
	}
	m.selected = e
	m.hasSelection = true
	m.ensureVisible()
	return func() tea.Msg { return SelectionChangedMsg{Entry: e} }
}

// ══════════════════════════════════════════════════════════════════════════════
// RECOMPUTE - Layout, selection tracking and scrolling
// ══════════════════════════════════════════════════════════════════════════════

func (m *TechTreeModel) recompute() {
	prev, had := m.selected, m.hasSelection
	prevIndex, _ := m.layout.IndexOf(prev)

	m.layout = layout.Compute(layout.Input{
		Nodes:        m.nodes,
		HiddenGroups: m.hidden,
		GroupMode:    m.groupMode,
		Keep:         m.keep,
	})
	m.rebuildScene()
	m.restoreSelection(prev, had, prevIndex)
	m.ensureVisible()
}

func (m *TechTreeModel) keep(n model.Node) bool {
	return !m.hiddenStatus[n.Status]
}

// restoreSelection keeps the previous entry when it survived. A PR whose plan
// was just collapsed hands the selection to that plan's marker. Otherwise the
// old index is clamped into the new entry list.
func (m *TechTreeModel) restoreSelection(prev layout.Entry, had bool, prevIndex int) {
	n := m.layout.Len()
	if n == 0 {
		m.selected, m.hasSelection = layout.Entry{}, false
		return
	}
	m.hasSelection = true
	if !had {
		m.selected = m.layout.Entries[0]
		return
	}
	if _, ok := m.layout.IndexOf(prev); ok {
		m.selected = prev
		return
	}
	if !prev.IsMarker() {
		if node, ok := m.layout.Node(prev.ID); ok {
			marker := layout.HiddenGroupEntry(node.Group)
			if _, ok := m.layout.IndexOf(marker); ok {
				m.selected = marker
				return
			}
		}
	}
	if prevIndex >= n {
		prevIndex = n - 1
	}
	if prevIndex < 0 {
		prevIndex = 0
	}
	m.selected = m.layout.Entries[prevIndex]
}

func (m TechTreeModel) newScene(viewportWidth int) *canvas.Scene {
	s := canvas.NewScene(m.layout, m.geo, viewportWidth)
	s.GroupName = m.GroupDisplayName
	return s
}

func (m *TechTreeModel) rebuildScene() {
	m.scene = m.newScene(m.width)
}

// ensureVisible scrolls the viewport so the selected box is fully shown. The
// header of the selected PR's plan is pulled into view when it fits.
func (m *TechTreeModel) ensureVisible() {
	if !m.hasSelection || m.width <= 0 || m.height <= 0 {
		m.clampOffsets()
		return
	}
	r, ok := m.scene.Rect(m.selected)
	if !ok {
		return
	}

	top := r.Y
	if pos, ok := m.layout.Positions[m.selected]; ok && !m.selected.IsMarker() {
		if hr, ok := m.scene.HeaderRect(m.layout.GroupOf(m.selected)); ok {
			if row, _ := m.layout.HeaderRow(m.layout.GroupOf(m.selected)); row == pos.Row-1 && r.Bottom()-hr.Y <= m.height {
				top = hr.Y
			}
		}
	}
	if top < m.offsetY {
		m.offsetY = top
	}
	if r.Bottom() > m.offsetY+m.height {
		m.offsetY = r.Bottom() - m.height
	}

	left := r.X - m.geo.MarginX
	if left < m.offsetX {
		m.offsetX = left
	}
	if r.Right()+m.geo.MarginX > m.offsetX+m.width {
		m.offsetX = r.Right() + m.geo.MarginX - m.width
	}
	m.clampOffsets()
}

func (m *TechTreeModel) scrollToEdge(edge ScrollEdge) {
	_, h := m.scene.Size()
	if edge == ScrollTop {
		m.offsetY = 0
	} else {
		m.offsetY = h - m.height
	}
	m.clampOffsets()
}

func (m *TechTreeModel) clampOffsets() {
	w, h := 0, 0
	if m.scene != nil {
		w, h = m.scene.Size()
	}
	maxX, maxY := w-m.width, h-m.height
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	m.offsetX = clamp(m.offsetX, 0, maxX)
	m.offsetY = clamp(m.offsetY, 0, maxY)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
