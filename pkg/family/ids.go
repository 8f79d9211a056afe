package family

import (
	"slices"
	"strconv"
	"strings"
)

const (
	// MemberPrefix starts every member node id.
	MemberPrefix = "mem_"
	// UnionPrefix starts every union node id.
	UnionPrefix = "u_"
	// UnknownParent stands in for a missing second parent in a union key.
	UnknownParent = "unknown"
	// SpouseMarker is the generation cell value of a spouse row.
	SpouseMarker = "E"
)

// MemberID returns the node id of the member parsed from data row n.
func MemberID(row int) string {
	return MemberPrefix + strconv.Itoa(row)
}

// RowOf extracts the data row index from a member id.
func RowOf(id string) (int, bool) {
	if !strings.HasPrefix(id, MemberPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(MemberPrefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// UnionKey returns the canonical key of the couple (p1, p2). An empty p2
// is recorded as [UnknownParent]. The ids are sorted so the key does not
// depend on argument order.
func UnionKey(p1, p2 string) string {
	if p2 == "" {
		p2 = UnknownParent
	}
	pair := []string{p1, p2}
	slices.Sort(pair)
	return strings.Join(pair, "_")
}

// UnionID returns the node id of the union for the couple (p1, p2).
func UnionID(p1, p2 string) string {
	return UnionPrefix + UnionKey(p1, p2)
}

// IsUnionID reports whether id follows the union id scheme.
func IsUnionID(id string) bool {
	return strings.HasPrefix(id, UnionPrefix)
}
