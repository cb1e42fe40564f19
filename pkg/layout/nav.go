package layout

// ══════════════════════════════════════════════════════════════════════════════
// NAVIGATION - Spatial moves over the position map
// ══════════════════════════════════════════════════════════════════════════════

// Up returns the entry above from, preferring the same column over a nearer row
func (l *Layout) Up(from Entry) (Entry, bool) {
	return l.vertical(from, -1)
}

// Down returns the entry below from, preferring the same column over a nearer row
func (l *Layout) Down(from Entry) (Entry, bool) {
	return l.vertical(from, 1)
}

// Left returns the nearest entry in an earlier column, staying on the same row if possible
func (l *Layout) Left(from Entry) (Entry, bool) {
	return l.horizontal(from, -1)
}

// Right returns the nearest entry in a later column, staying on the same row if possible
func (l *Layout) Right(from Entry) (Entry, bool) {
	return l.horizontal(from, 1)
}

// NextGroup returns the first node of the group below the current one
func (l *Layout) NextGroup(from Entry) (Entry, bool) {
	return l.stepGroup(from, 1)
}

// PrevGroup returns the first node of the group above the current one
func (l *Layout) PrevGroup(from Entry) (Entry, bool) {
	return l.stepGroup(from, -1)
}

func (l *Layout) vertical(from Entry, dir int) (Entry, bool) {
	if l == nil {
		return Entry{}, false
	}
	cur, ok := l.Positions[from]
	if !ok {
		return Entry{}, false
	}

	var best Entry
	var bestKey [3]int
	found := false
	for _, e := range l.Entries {
		p := l.Positions[e]
		if (dir < 0 && p.Row >= cur.Row) || (dir > 0 && p.Row <= cur.Row) {
			continue
		}
		key := [3]int{abs(p.Col - cur.Col), abs(p.Row - cur.Row), p.Col}
		if !found || keyLess(key, bestKey) {
			best, bestKey, found = e, key, true
		}
	}
	return best, found
}

func (l *Layout) horizontal(from Entry, dir int) (Entry, bool) {
	if l == nil {
		return Entry{}, false
	}
	cur, ok := l.Positions[from]
	if !ok {
		return Entry{}, false
	}

	var sameRow, other Entry
	var sameKey, otherKey [3]int
	foundSame, foundOther := false, false
	for _, e := range l.Entries {
		p := l.Positions[e]
		if (dir < 0 && p.Col >= cur.Col) || (dir > 0 && p.Col <= cur.Col) {
			continue
		}
		key := [3]int{abs(p.Col - cur.Col), abs(p.Row - cur.Row), p.Row}
		if p.Row == cur.Row {
			if !foundSame || keyLess(key, sameKey) {
				sameRow, sameKey, foundSame = e, key, true
			}
			continue
		}
		if !foundOther || keyLess(key, otherKey) {
			other, otherKey, foundOther = e, key, true
		}
	}
	if foundSame {
		return sameRow, true
	}
	return other, foundOther
}

func (l *Layout) stepGroup(from Entry, step int) (Entry, bool) {
	if !l.Grouped() {
		return Entry{}, false
	}
	if _, ok := l.Positions[from]; !ok {
		return Entry{}, false
	}

	// Markers sit below every visible group
	idx := len(l.GroupOrder)
	if !from.IsMarker() {
		idx = -1
		g := l.GroupOf(from)
		for i, id := range l.GroupOrder {
			if id == g {
				idx = i
				break
			}
		}
		if idx < 0 {
			return Entry{}, false
		}
	}

	target := idx + step
	if target < 0 || target >= len(l.GroupOrder) {
		return Entry{}, false
	}
	want := l.GroupOrder[target]
	for _, e := range l.Entries {
		if e.IsMarker() {
			continue
		}
		if l.GroupOf(e) == want {
			return e, true
		}
	}
	return Entry{}, false
}

func keyLess(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
