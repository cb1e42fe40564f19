package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kraitsura/techtree/pkg/canvas"
	"github.com/kraitsura/techtree/pkg/launch"
	"github.com/kraitsura/techtree/pkg/layout"
	"github.com/kraitsura/techtree/pkg/loader"
	"github.com/kraitsura/techtree/pkg/logging"
	"github.com/kraitsura/techtree/pkg/model"
	"github.com/kraitsura/techtree/pkg/store"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// StateStore persists view state and activate history
type StateStore interface {
	Save(ctx context.Context, st store.ViewState) error
	RecordActivation(ctx context.Context, a *store.Activation) error
	LastActivation(ctx context.Context, nodeID string) (store.Activation, error)
}

// Activator runs the activate hook for a PR
type Activator interface {
	Configured() bool
	Activate(ctx context.Context, n model.Node) (launch.Result, error)
}

// Reloader loads the current plans from disk
type Reloader func(ctx context.Context) (*loader.PlanSet, error)

// Options configures the dashboard
type Options struct {
	// Context bounds background work such as the activate hook. Nil means
	// context.Background().
	Context context.Context

	Nodes    []model.Node
	Groups   []model.Group
	State    store.ViewState
	Geometry canvas.Geometry
	Theme    Theme

	Store     StateStore
	Activator Activator
	Reload    Reloader
	Logger    *log.Logger
	// Copy writes to the system clipboard. Nil uses the real clipboard.
	Copy func(string) error
}

// PlansReloadedMsg carries freshly loaded plans, or the load error
type PlansReloadedMsg struct {
	Set *loader.PlanSet
	Err error
}

// ActivationDoneMsg reports a finished activate hook run
type ActivationDoneMsg struct {
	Result launch.Result
	Err    error
}

type lastRunMsg struct {
	activation store.Activation
}

type stateSavedMsg struct {
	err error
}

// How long a status message stays before the footer shows the default hint
const statusTTL = 5 * time.Second

// Model is the top-level dashboard around the tech-tree widget
type Model struct {
	theme Theme
	keys  KeyMap
	help  help.Model

	tree        TechTreeModel
	detail      DetailModel
	jump        JumpSelectorModel
	helpOverlay HelpOverlayModel

	showDetail   bool
	showJump     bool
	hideFinished bool

	nodes  []model.Node
	groups []model.Group

	ctx       context.Context
	store     StateStore
	activator Activator
	reload    Reloader
	logger    *log.Logger
	copy      func(string) error

	running map[string]bool

	status    string
	statusErr bool
	statusAt  time.Time

	width  int
	height int
}

// NewModel builds the dashboard and restores the saved view state
func NewModel(opts Options) Model {
	theme := opts.Theme
	if theme.Renderer == nil {
		theme = DefaultTheme(nil)
	}
	geo := opts.Geometry
	if geo == (canvas.Geometry{}) {
		geo = canvas.DefaultGeometry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	cp := opts.Copy
	if cp == nil {
		cp = clipboard.WriteAll
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	keys := DefaultKeyMap()
	m := Model{
		theme:       theme,
		keys:        keys,
		help:        help.New(),
		tree:        NewTechTreeModel(theme, geo),
		detail:      NewDetailModel(theme),
		helpOverlay: NewHelpOverlayModel(theme, keys),
		ctx:         ctx,
		store:       opts.Store,
		activator:   opts.Activator,
		reload:      opts.Reload,
		logger:      logger,
		copy:        cp,
		running:     make(map[string]bool),
	}

	m.tree.SetGroupMode(opts.State.GroupMode)
	m.tree.SetHiddenGroups(opts.State.HiddenGroups)
	m.hideFinished = opts.State.HideFinished
	m.applyStatusFilter()
	m.setPlans(opts.Nodes, opts.Groups)
	if opts.State.Selected != "" {
		m.tree.Select(layout.NodeEntry(opts.State.Selected))
	}
	m.refreshDetail()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("techtree"), m.lastRunCmd())
}

// Tree exposes the widget for inspection
func (m Model) Tree() TechTreeModel { return m.tree }

// Status returns the current status line text
func (m Model) Status() string { return m.status }

// ViewState returns the state that would be persisted
func (m Model) ViewState() store.ViewState {
	st := store.ViewState{
		GroupMode:    m.tree.GroupMode(),
		HideFinished: m.hideFinished,
		HiddenGroups: m.tree.HiddenGroups(),
	}
	if id, ok := m.tree.SelectedNodeID(); ok {
		st.Selected = id
	}
	return st
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE
// ══════════════════════════════════════════════════════════════════════════════

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case PlansReloadedMsg:
		if msg.Err != nil {
			m.logger.Warn("reload failed", "err", msg.Err)
			m.setStatus(fmt.Sprintf("Reload failed: %v", msg.Err), true)
			return m, nil
		}
		m.setPlans(msg.Set.Nodes, msg.Set.Groups)
		m.refreshDetail()
		text := fmt.Sprintf("Loaded %d PRs in %d plans", len(msg.Set.Nodes), len(msg.Set.Groups))
		if msg.Set.Skipped > 0 {
			text += fmt.Sprintf(" (%d lines skipped)", msg.Set.Skipped)
		}
		m.setStatus(text, false)
		return m, m.lastRunCmd()

	case ActivationDoneMsg:
		delete(m.running, msg.Result.NodeID)
		if msg.Err != nil {
			m.logger.Warn("activate failed", "pr", msg.Result.NodeID, "err", msg.Err)
			m.setStatus(msg.Err.Error(), true)
		} else {
			m.logger.Info("activated", "pr", msg.Result.NodeID, "took", msg.Result.Duration)
			m.setStatus(fmt.Sprintf("Activated %s", msg.Result.NodeID), false)
		}
		return m, m.lastRunCmd()

	case lastRunMsg:
		m.detail.SetLastRun(msg.activation)
		return m, nil

	case stateSavedMsg:
		if msg.err != nil {
			m.logger.Warn("save view state", "err", msg.err)
		}
		return m, nil

	case SelectionChangedMsg:
		m.refreshDetail()
		return m, tea.Batch(m.saveCmd(), m.lastRunCmd())

	case ActivatedMsg:
		cmd := m.activate(msg.NodeID)
		return m, cmd

	case ScrollEdgeMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.helpOverlay.IsVisible() {
		m.helpOverlay, _ = m.helpOverlay.Update(msg)
		return m, nil
	}
	if m.showJump {
		return m.handleJumpKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.helpOverlay.Show()
		return m, nil
	case key.Matches(msg, m.keys.Jump):
		m.openJump()
		return m, nil
	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		m.resize()
		return m, nil
	case key.Matches(msg, m.keys.ToggleGroups):
		m.tree.SetGroupMode(!m.tree.GroupMode())
		m.refreshDetail()
		return m, m.saveCmd()
	case key.Matches(msg, m.keys.ToggleCollapse):
		cmd := m.toggleCollapse()
		return m, cmd
	case key.Matches(msg, m.keys.ExpandAll):
		if len(m.tree.HiddenGroups()) == 0 {
			return m, nil
		}
		m.tree.SetHiddenGroups(nil)
		m.refreshDetail()
		return m, m.saveCmd()
	case key.Matches(msg, m.keys.Filter):
		m.hideFinished = !m.hideFinished
		m.applyStatusFilter()
		m.refreshDetail()
		if m.hideFinished {
			m.setStatus("Hiding merged and closed PRs", false)
		} else {
			m.setStatus("Showing all PRs", false)
		}
		return m, m.saveCmd()
	case key.Matches(msg, m.keys.CopyID):
		if id, ok := m.tree.SelectedNodeID(); ok {
			m.copyText(id, "id")
		}
		return m, nil
	case key.Matches(msg, m.keys.CopyBranch):
		if n, ok := m.tree.SelectedNode(); ok {
			if n.Branch == "" {
				m.setStatus(fmt.Sprintf("%s has no branch", n.ID), true)
			} else {
				m.copyText(n.Branch, "branch")
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		cmd := m.reloadCmd()
		return m, cmd
	}

	switch msg.String() {
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		if m.showDetail {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.tree, cmd = m.tree.Update(msg)
	return m, cmd
}

func (m Model) handleJumpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.jump.Update(msg.String())
	if msg.String() == "esc" {
		m.showJump = false
		return m, nil
	}
	if !m.jump.IsConfirmed() {
		return m, nil
	}
	m.showJump = false
	item := m.jump.SelectedItem()
	if item == nil {
		return m, nil
	}
	target, ok := m.jumpTarget(*item)
	if !ok {
		m.setStatus(fmt.Sprintf("%s is filtered out", item.Value), true)
		return m, nil
	}
	cmd := m.tree.Select(target)
	return m, cmd
}

// jumpTarget maps a jump item to a navigable entry. PRs in a collapsed plan
// resolve to the plan's marker.
func (m Model) jumpTarget(item JumpItem) (layout.Entry, bool) {
	l := m.tree.Layout()
	if item.Type == "pr" {
		e := layout.NodeEntry(item.Value)
		if _, ok := l.IndexOf(e); ok {
			return e, true
		}
		if n, ok := l.Node(item.Value); ok {
			marker := layout.HiddenGroupEntry(n.Group)
			_, ok := l.IndexOf(marker)
			return marker, ok
		}
		return layout.Entry{}, false
	}

	marker := layout.HiddenGroupEntry(item.Value)
	if _, ok := l.IndexOf(marker); ok {
		return marker, true
	}
	for _, e := range l.Entries {
		if !e.IsMarker() && l.GroupOf(e) == item.Value {
			return e, true
		}
	}
	return layout.Entry{}, false
}

func (m *Model) openJump() {
	m.jump = NewJumpSelectorModel(m.nodes, m.tree.GroupDisplayName, m.theme)
	m.jump.SetSize(m.width, m.height)
	m.showJump = true
}

// toggleCollapse collapses the selected PR's plan, or expands the selected
// marker's plan. Plans only collapse in group mode.
func (m *Model) toggleCollapse() tea.Cmd {
	if !m.tree.GroupMode() {
		m.setStatus("Turn on plan grouping (p) to collapse plans", true)
		return nil
	}
	groupID, ok := m.tree.SelectedGroupID()
	if !ok {
		return nil
	}
	hidden := m.tree.HiddenGroups()
	if m.tree.IsHiddenGroupMarkerSelected() {
		hidden = remove(hidden, groupID)
	} else {
		hidden = append(hidden, groupID)
	}
	m.tree.SetHiddenGroups(hidden)
	m.refreshDetail()
	return m.saveCmd()
}

func (m *Model) activate(id string) tea.Cmd {
	n, ok := m.tree.Layout().Node(id)
	if !ok {
		return nil
	}
	if m.activator == nil || !m.activator.Configured() {
		m.setStatus("No activate command configured (activate.command)", true)
		return nil
	}
	if m.running[id] {
		m.setStatus(fmt.Sprintf("%s is already running", id), true)
		return nil
	}
	m.running[id] = true
	m.setStatus(fmt.Sprintf("Activating %s…", id), false)

	ctx, act, st, logger := m.ctx, m.activator, m.store, m.logger
	return func() tea.Msg {
		res, err := act.Activate(ctx, n)
		if st != nil && !errors.Is(err, launch.ErrNoCommand) {
			rec := &store.Activation{
				NodeID:   res.NodeID,
				Command:  res.Command,
				ExitCode: res.ExitCode,
				Output:   res.Output,
			}
			if rerr := st.RecordActivation(ctx, rec); rerr != nil {
				logger.Warn("record activation", "err", rerr)
			}
		}
		return ActivationDoneMsg{Result: res, Err: err}
	}
}

func (m *Model) copyText(text, what string) {
	if err := m.copy(text); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s %s", what, text), false)
}

func (m Model) reloadCmd() tea.Cmd {
	if m.reload == nil {
		return nil
	}
	ctx, reload := m.ctx, m.reload
	return func() tea.Msg {
		set, err := reload(ctx)
		return PlansReloadedMsg{Set: set, Err: err}
	}
}

func (m Model) saveCmd() tea.Cmd {
	if m.store == nil {
		return nil
	}
	st, s := m.ViewState(), m.store
	return func() tea.Msg {
		// Written even while the program context is being cancelled
		return stateSavedMsg{err: s.Save(context.Background(), st)}
	}
}

func (m Model) lastRunCmd() tea.Cmd {
	id, ok := m.tree.SelectedNodeID()
	if !ok || m.store == nil {
		return nil
	}
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		a, err := s.LastActivation(ctx, id)
		if err != nil {
			return nil
		}
		return lastRunMsg{activation: a}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func (m *Model) setPlans(nodes []model.Node, groups []model.Group) {
	m.nodes = nodes
	m.groups = groups
	m.tree.SetGroups(groups)
	m.tree.SetNodes(nodes)
}

func (m *Model) applyStatusFilter() {
	if m.hideFinished {
		m.tree.SetStatusFilter(model.StatusMerged, model.StatusClosed)
	} else {
		m.tree.SetStatusFilter()
	}
}

func (m *Model) refreshDetail() {
	if m.tree.IsHiddenGroupMarkerSelected() {
		id, _ := m.tree.SelectedGroupID()
		count := m.tree.Layout().HiddenCounts[id]
		m.detail.SetText(fmt.Sprintf("%s is collapsed (%d PRs).\nPress space to expand it.",
			m.tree.GroupDisplayName(id), count))
		return
	}
	n, ok := m.tree.SelectedNode()
	if !ok {
		m.detail.SetText(EmptyPlaceholder)
		return
	}
	m.detail.SetNode(n, m.tree.GroupDisplayName(n.Group), m.blocking(n.ID))
}

// blocking returns the PRs that depend on id
func (m Model) blocking(id string) []string {
	var out []string
	for _, n := range m.nodes {
		for _, dep := range n.DependsOn {
			if dep == id {
				out = append(out, n.ID)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
	m.statusAt = time.Now()
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
