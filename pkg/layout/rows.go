package layout

import (
	"math"
	"sort"

	"github.com/kraitsura/techtree/pkg/model"
)

// multiDep is a node with two or more placed parents, waiting for its row
type multiDep struct {
	id        string
	preferred int
}

// AssignRows gives every layered node a row within its column.
//
// Column 0 is filled top to bottom in id order, leaving room under a node
// whose children hang off it alone. Later columns place single-parent
// children level with their parent first (straight chains win), then nodes
// with several parents at the average of the parent rows (halves round to
// even), then parentless nodes in the lowest free row. Rows are shifted so
// the smallest is 0; gaps between rows are kept.
func AssignRows(layers [][]string, nodeByID map[string]model.Node) map[string]int {
	rows := make(map[string]int)
	if len(layers) == 0 {
		return rows
	}

	soleChildren := make(map[string]int)
	for _, n := range nodeByID {
		if deps := knownDeps(n, nodeByID); len(deps) == 1 {
			soleChildren[deps[0]]++
		}
	}

	next := 0
	for _, id := range sortedIDs(layers[0]) {
		if _, ok := nodeByID[id]; !ok {
			continue
		}
		rows[id] = next
		next++
		if k := soleChildren[id]; k >= 2 {
			next += k - 1
		}
	}

	for c := 1; c < len(layers); c++ {
		used := make(map[int]bool)
		singles := make(map[string][]string) // parent -> children
		var parents []string
		var multis []multiDep
		var orphans []string

		for _, id := range sortedIDs(layers[c]) {
			n, ok := nodeByID[id]
			if !ok {
				continue
			}
			var placed []int
			var parent string
			for _, dep := range knownDeps(n, nodeByID) {
				if r, ok := rows[dep]; ok {
					placed = append(placed, r)
					parent = dep
				}
			}

			switch len(placed) {
			case 0:
				orphans = append(orphans, id)
			case 1:
				if _, seen := singles[parent]; !seen {
					parents = append(parents, parent)
				}
				singles[parent] = append(singles[parent], id)
			default:
				sum := 0
				for _, r := range placed {
					sum += r
				}
				avg := float64(sum) / float64(len(placed))
				multis = append(multis, multiDep{id: id, preferred: int(math.RoundToEven(avg))})
			}
		}

		sort.Slice(parents, func(i, j int) bool {
			ri, rj := rows[parents[i]], rows[parents[j]]
			if ri != rj {
				return ri < rj
			}
			return parents[i] < parents[j]
		})
		for _, p := range parents {
			cursor := rows[p]
			for _, child := range singles[p] {
				r := takeFree(used, cursor)
				rows[child] = r
				cursor = r + 1
			}
		}

		sort.Slice(multis, func(i, j int) bool {
			if multis[i].preferred != multis[j].preferred {
				return multis[i].preferred < multis[j].preferred
			}
			return multis[i].id < multis[j].id
		})
		for _, m := range multis {
			rows[m.id] = takeFree(used, m.preferred)
		}

		for _, id := range orphans {
			rows[id] = takeFree(used, 0)
		}
	}

	normalizeRows(rows)
	return rows
}

// takeFree claims the first unused row at or below from
func takeFree(used map[int]bool, from int) int {
	r := from
	for used[r] {
		r++
	}
	used[r] = true
	return r
}

func normalizeRows(rows map[string]int) {
	if len(rows) == 0 {
		return
	}
	minRow := math.MaxInt
	for _, r := range rows {
		if r < minRow {
			minRow = r
		}
	}
	if minRow == 0 {
		return
	}
	for id := range rows {
		rows[id] -= minRow
	}
}

// knownDeps returns the dependencies of n that are part of the node set
func knownDeps(n model.Node, nodeByID map[string]model.Node) []string {
	var deps []string
	seen := make(map[string]bool, len(n.DependsOn))
	for _, dep := range n.DependsOn {
		if dep == n.ID || seen[dep] {
			continue
		}
		if _, ok := nodeByID[dep]; !ok {
			continue
		}
		seen[dep] = true
		deps = append(deps, dep)
	}
	return deps
}

func sortedIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}
