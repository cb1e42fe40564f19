// Package layout positions a dependency graph of PRs on a 2-D grid of
// columns and rows and answers spatial navigation queries against it.
//
// The layout is always rebuilt from scratch: Compute takes the full input and
// returns an immutable *Layout. Callers hold on to the result until the next
// input change and treat it as a read-only snapshot.
package layout

import (
	"sort"

	"github.com/kraitsura/techtree/pkg/analysis"
	"github.com/kraitsura/techtree/pkg/model"
)

// EntryKind discriminates the navigable entries of a layout
type EntryKind int

const (
	EntryNode        EntryKind = iota // A real PR
	EntryHiddenGroup                  // Stand-in for a collapsed plan
)

// Entry is a navigable item: a real node or a hidden-group marker.
// ID holds the node id or the group id depending on Kind.
type Entry struct {
	Kind EntryKind
	ID   string
}

// NodeEntry returns the entry for a real node
func NodeEntry(id string) Entry { return Entry{Kind: EntryNode, ID: id} }

// HiddenGroupEntry returns the marker entry for a collapsed group
func HiddenGroupEntry(groupID string) Entry { return Entry{Kind: EntryHiddenGroup, ID: groupID} }

// IsMarker reports whether the entry stands in for a hidden group
func (e Entry) IsMarker() bool { return e.Kind == EntryHiddenGroup }

// Position is a (column, row) cell of the layout grid
type Position struct {
	Col int
	Row int
}

// Edge is a dependency edge between two visible nodes, From being the dependency
type Edge struct {
	From string
	To   string
}

// Header marks the label row of a group
type Header struct {
	GroupID string
	Row     int
}

// Input is everything the layout depends on
type Input struct {
	Nodes        []model.Node
	HiddenGroups map[string]bool // Only honoured in group mode
	GroupMode    bool
	// Keep filters nodes before layering. Nil keeps everything.
	Keep func(model.Node) bool
}

// Layout is the derived, read-only result of Compute
type Layout struct {
	// Entries is the total order over navigable entries: by row, then column.
	Entries   []Entry
	Positions map[Entry]Position
	Edges     []Edge
	Headers   []Header
	// GroupOrder lists the visible groups top to bottom. Empty unless groups
	// were compacted, which requires group mode and at least two groups.
	GroupOrder []string
	// HiddenCounts holds the number of nodes behind each hidden-group marker
	HiddenCounts map[string]int
	Columns      int
	Rows         int

	nodes map[string]model.Node
	index map[Entry]int
}

// Compute builds a layout from scratch
func Compute(in Input) *Layout {
	l := &Layout{
		Positions:    make(map[Entry]Position),
		HiddenCounts: make(map[string]int),
		nodes:        make(map[string]model.Node),
		index:        make(map[Entry]int),
	}

	var visible []model.Node
	seen := make(map[string]bool, len(in.Nodes))
	for _, n := range in.Nodes {
		if n.ID == "" || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		if in.Keep != nil && !in.Keep(n) {
			continue
		}
		if in.GroupMode && in.HiddenGroups[n.Group] {
			l.HiddenCounts[n.Group]++
			l.nodes[n.ID] = n
			continue
		}
		l.nodes[n.ID] = n
		visible = append(visible, n)
	}

	byID := make(map[string]model.Node, len(visible))
	for _, n := range visible {
		byID[n.ID] = n
	}

	layers := analysis.ComputeLayers(visible)
	rows := AssignRows(layers, byID)
	cols := make(map[string]int, len(rows))
	for c, layer := range layers {
		for _, id := range layer {
			cols[id] = c
		}
	}

	if in.GroupMode {
		groupOf := make(map[string]string, len(visible))
		for _, n := range visible {
			groupOf[n.ID] = n.Group
		}
		if countGroups(groupOf) >= 2 {
			var headers []Header
			rows, headers = CompactGroups(rows, groupOf)
			l.Headers = headers
			for _, h := range headers {
				l.GroupOrder = append(l.GroupOrder, h.GroupID)
			}
		}
	}

	maxRow := -1
	for id, r := range rows {
		p := Position{Col: cols[id], Row: r}
		l.Positions[NodeEntry(id)] = p
		l.Entries = append(l.Entries, NodeEntry(id))
		if r > maxRow {
			maxRow = r
		}
		if p.Col+1 > l.Columns {
			l.Columns = p.Col + 1
		}
	}
	for _, h := range l.Headers {
		if h.Row > maxRow {
			maxRow = h.Row
		}
	}

	if len(l.HiddenCounts) > 0 {
		start := 0
		if maxRow >= 0 {
			start = maxRow + 2
		}
		for i, gid := range sortedGroupIDs(l.HiddenCounts) {
			e := HiddenGroupEntry(gid)
			l.Positions[e] = Position{Col: 0, Row: start + i}
			l.Entries = append(l.Entries, e)
			maxRow = start + i
		}
		if l.Columns == 0 {
			l.Columns = 1
		}
	}
	l.Rows = maxRow + 1

	sort.Slice(l.Entries, func(i, j int) bool {
		a, b := l.Entries[i], l.Entries[j]
		pa, pb := l.Positions[a], l.Positions[b]
		if pa.Row != pb.Row {
			return pa.Row < pb.Row
		}
		if pa.Col != pb.Col {
			return pa.Col < pb.Col
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID < b.ID
	})
	for i, e := range l.Entries {
		l.index[e] = i
	}

	for _, n := range visible {
		to := l.Positions[NodeEntry(n.ID)]
		drawn := make(map[string]bool, len(n.DependsOn))
		for _, dep := range n.DependsOn {
			if drawn[dep] {
				continue
			}
			drawn[dep] = true
			from, ok := l.Positions[NodeEntry(dep)]
			if !ok || dep == n.ID || from.Col >= to.Col {
				continue
			}
			l.Edges = append(l.Edges, Edge{From: dep, To: n.ID})
		}
	}

	return l
}

// Len returns the number of navigable entries
func (l *Layout) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}

// IndexOf returns the position of e in Entries
func (l *Layout) IndexOf(e Entry) (int, bool) {
	if l == nil {
		return 0, false
	}
	i, ok := l.index[e]
	return i, ok
}

// Node looks up a node known to the layout, including nodes in hidden groups
func (l *Layout) Node(id string) (model.Node, bool) {
	if l == nil {
		return model.Node{}, false
	}
	n, ok := l.nodes[id]
	return n, ok
}

// GroupOf returns the group an entry belongs to
func (l *Layout) GroupOf(e Entry) string {
	if e.Kind == EntryHiddenGroup {
		return e.ID
	}
	if n, ok := l.Node(e.ID); ok {
		return n.Group
	}
	return ""
}

// Grouped reports whether group headers are part of the layout
func (l *Layout) Grouped() bool {
	return l != nil && len(l.GroupOrder) >= 2
}

// HeaderRow returns the label row of a group
func (l *Layout) HeaderRow(groupID string) (int, bool) {
	if l == nil {
		return 0, false
	}
	for _, h := range l.Headers {
		if h.GroupID == groupID {
			return h.Row, true
		}
	}
	return 0, false
}

func countGroups(groupOf map[string]string) int {
	seen := make(map[string]bool)
	for _, g := range groupOf {
		seen[g] = true
	}
	return len(seen)
}

// sortedGroupIDs orders group ids ascending with the standalone group last
func sortedGroupIDs[V any](groups map[string]V) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return groupLess(ids[i], ids[j])
	})
	return ids
}

func groupLess(a, b string) bool {
	if a == "" || b == "" {
		return b == "" && a != ""
	}
	return a < b
}
