package lineage

import (
	"fmt"
	"strings"

	"github.com/matzehuels/familytree/pkg/family"
)

// Mode selects which members are shown.
type Mode int

const (
	// Full shows every member.
	Full Mode = iota
	// Patrilineal shows the male line and its direct branches.
	Patrilineal
)

func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Patrilineal:
		return "patrilineal"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts "full", "patrilineal" and the short forms "all" and "p".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full", "all":
		return Full, nil
	case "patrilineal", "p":
		return Patrilineal, nil
	}
	return Full, fmt.Errorf("unknown lineage mode %q", s)
}

// Apply returns data filtered for mode. Full returns data itself.
func (m Mode) Apply(data *family.Data) *family.Data {
	if m == Patrilineal {
		return FilterPatrilineal(data)
	}
	return data
}
