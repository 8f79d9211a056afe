package state

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/familytree/pkg/family"
)

var (
	nonAlnum  = regexp.MustCompile(`[^a-z0-9]`)
	fourDigit = regexp.MustCompile(`\d{4}`)
)

// IDMap translates between member ids and persistent ids.
type IDMap struct {
	toMember     map[string]string
	toPersistent map[string]string
}

// BuildIDMap assigns a persistent id to every non-spouse member and to
// every spouse with a first name, in row order. Duplicates get a "_N"
// suffix. The ids are also stored on the members.
func BuildIDMap(data *family.Data) *IDMap {
	m := &IDMap{
		toMember:     make(map[string]string),
		toPersistent: make(map[string]string),
	}
	counts := make(map[string]int)
	for _, mem := range data.Ordered() {
		if mem.IsSpouse && mem.FirstName == "" {
			continue
		}
		base := PersistentID(mem)
		id := base
		if n := counts[base]; n > 0 {
			id = base + "_" + strconv.Itoa(n)
		}
		counts[base]++

		mem.PersistentID = id
		m.toMember[id] = mem.ID
		m.toPersistent[mem.ID] = id
	}
	return m
}

// PersistentID returns "fir_las_yy": three letters of the first and last
// name and the last two digits of the first four-digit number in the birth
// date. "unk" replaces a missing name and "00" a missing year.
func PersistentID(m *family.Member) string {
	year := "00"
	if y := fourDigit.FindString(m.BirthDate); y != "" {
		year = y[2:]
	}
	return idPart(m.FirstName) + "_" + idPart(m.LastName) + "_" + year
}

func idPart(s string) string {
	if s == "" {
		s = "unk"
	}
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), "")
	if len(s) > 3 {
		s = s[:3]
	}
	return s
}

// Member returns the member id of a persistent id.
func (m *IDMap) Member(persistent string) (string, bool) {
	id, ok := m.toMember[persistent]
	return id, ok
}

// Persistent returns the persistent id of a member id.
func (m *IDMap) Persistent(memberID string) (string, bool) {
	id, ok := m.toPersistent[memberID]
	return id, ok
}

// Len returns the number of mapped members.
func (m *IDMap) Len() int { return len(m.toMember) }
