package dag

// CountLayerCrossings counts link crossings between two adjacent rows given
// their left-to-right order. Links are taken from the children of the upper
// row; nodes outside either row are ignored.
//
// Two links (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is an inversion count over the target positions, computed with a
// Fenwick tree in O(E log V).
func CountLayerCrossings(upper, lower []*Node) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := make(map[*Node]int, len(lower))
	for i, n := range lower {
		lowerPos[n] = i
	}

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, u := range upper {
		var targets []int
		for _, c := range u.Children() {
			if pos, ok := lowerPos[c]; ok {
				targets = append(targets, pos)
			}
		}
		// Query all links of u before inserting any, so links sharing a
		// source never count as crossing each other.
		for _, pos := range targets {
			lessOrEqual := 0
			for q := pos + 1; q > 0; q -= q & (-q) {
				lessOrEqual += fenwick[q]
			}
			crossings += total - lessOrEqual
		}
		for _, pos := range targets {
			total++
			for idx := pos + 1; idx < len(fenwick); idx += idx & (-idx) {
				fenwick[idx]++
			}
		}
	}
	return crossings
}

// CountCrossings sums [CountLayerCrossings] over consecutive rows.
func CountCrossings(rows [][]*Node) int {
	crossings := 0
	for i := 0; i+1 < len(rows); i++ {
		crossings += CountLayerCrossings(rows[i], rows[i+1])
	}
	return crossings
}
