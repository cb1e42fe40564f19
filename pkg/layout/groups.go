package layout

import "sort"

// CompactGroups re-partitions rows by group membership.
//
// Groups are laid out top to bottom in id order with the standalone group
// ("") last. Each group gets a header row, then its own rows squeezed into a
// contiguous run in their original relative order, then one blank row.
// The input map is not modified.
func CompactGroups(rows map[string]int, groupOf map[string]string) (map[string]int, []Header) {
	members := make(map[string][]string)
	for id := range rows {
		g := groupOf[id]
		members[g] = append(members[g], id)
	}

	out := make(map[string]int, len(rows))
	headers := make([]Header, 0, len(members))
	cursor := 0

	for _, g := range sortedGroupIDs(members) {
		headers = append(headers, Header{GroupID: g, Row: cursor})

		distinct := make(map[int]bool)
		for _, id := range members[g] {
			distinct[rows[id]] = true
		}
		ordered := make([]int, 0, len(distinct))
		for r := range distinct {
			ordered = append(ordered, r)
		}
		sort.Ints(ordered)

		remap := make(map[int]int, len(ordered))
		for i, r := range ordered {
			remap[r] = cursor + 1 + i
		}
		for _, id := range members[g] {
			out[id] = remap[rows[id]]
		}

		cursor += 1 + len(ordered) + 1
	}

	return out, headers
}
