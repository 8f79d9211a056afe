package family

import (
	"regexp"
	"strconv"
)

var digitRun = regexp.MustCompile(`\d+`)

// ParseYear extracts a sortable year from free-text date s: the first run
// of digits whose value exceeds 31, so day and month numbers are skipped.
// It reports false when no such number exists or s is the "?" placeholder.
//
// The heuristic accepts any number above 31, so "Haus 45" yields 45.
func ParseYear(s string) (int, bool) {
	if s == "?" {
		return 0, false
	}
	for _, run := range digitRun.FindAllString(s, -1) {
		n, err := strconv.Atoi(run)
		if err != nil {
			continue
		}
		if n > 31 {
			return n, true
		}
	}
	return 0, false
}

// BirthYear is ParseYear applied to the member's resolved birth date.
func (m *Member) BirthYear() (int, bool) {
	return ParseYear(FieldBirthDate.Resolve(m))
}
