package ui

import "github.com/charmbracelet/bubbles/key"

// TreeKeyMap holds the bindings handled by the tech-tree widget
type TreeKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	NextGroup key.Binding
	PrevGroup key.Binding
	First     key.Binding
	Last      key.Binding
	Activate  key.Binding
}

// DefaultTreeKeyMap returns vim-style and arrow bindings
func DefaultTreeKeyMap() TreeKeyMap {
	return TreeKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "dependency side")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "dependent side")),
		NextGroup: key.NewBinding(key.WithKeys("]", "J"), key.WithHelp("]", "next plan")),
		PrevGroup: key.NewBinding(key.WithKeys("[", "K"), key.WithHelp("[", "previous plan")),
		First:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Last:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		Activate:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "activate PR")),
	}
}

// KeyMap holds the dashboard bindings around the widget
type KeyMap struct {
	Tree TreeKeyMap

	ToggleGroups   key.Binding
	ToggleCollapse key.Binding
	ExpandAll      key.Binding
	Filter         key.Binding
	Jump           key.Binding
	Detail         key.Binding
	CopyID         key.Binding
	CopyBranch     key.Binding
	Reload         key.Binding
	Help           key.Binding
	Quit           key.Binding
}

// DefaultKeyMap returns the dashboard bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tree: DefaultTreeKeyMap(),

		ToggleGroups:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "group by plan")),
		ToggleCollapse: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "collapse/expand plan")),
		ExpandAll:      key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "expand all plans")),
		Filter:         key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "hide finished")),
		Jump:           key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "jump to PR")),
		Detail:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "detail pane")),
		CopyID:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		CopyBranch:     key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy branch")),
		Reload:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload plans")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tree.Activate, k.ToggleGroups, k.ToggleCollapse, k.Filter, k.Jump, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap. Each inner slice is one section.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tree.Up, k.Tree.Down, k.Tree.Left, k.Tree.Right, k.Tree.NextGroup, k.Tree.PrevGroup, k.Tree.First, k.Tree.Last},
		{k.Tree.Activate, k.CopyID, k.CopyBranch, k.Jump, k.Reload},
		{k.ToggleGroups, k.ToggleCollapse, k.ExpandAll, k.Filter, k.Detail, k.Help, k.Quit},
	}
}
