package family

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Gender is the single-letter gender code used by the source sheet.
type Gender string

const (
	Male    Gender = "E"
	Female  Gender = "K"
	Unknown Gender = "U"
)

// Valid reports whether g is one of the known codes.
func (g Gender) Valid() bool {
	return g == Male || g == Female || g == Unknown
}

// Member is one person from the source sheet.
//
// Members are created once by the row parser and mutated in place when an
// edit succeeds optimistically. Keys that have no dedicated field (for
// example "Zweitnamen" or "Beruf" from older German exports) live in Extra
// and are reachable through [Member.Lookup].
type Member struct {
	ID           string            `json:"id" yaml:"id" bson:"id"`
	Name         string            `json:"name" yaml:"name" bson:"name"`
	FirstName    string            `json:"first_name" yaml:"first_name" bson:"first_name"`
	LastName     string            `json:"last_name,omitempty" yaml:"last_name,omitempty" bson:"last_name,omitempty"`
	BirthDate    string            `json:"birth_date,omitempty" yaml:"birth_date,omitempty" bson:"birth_date,omitempty"`
	BirthPlace   string            `json:"birthplace,omitempty" yaml:"birthplace,omitempty" bson:"birthplace,omitempty"`
	DeathDate    string            `json:"death_date,omitempty" yaml:"death_date,omitempty" bson:"death_date,omitempty"`
	DeathPlace   string            `json:"death_place,omitempty" yaml:"death_place,omitempty" bson:"death_place,omitempty"`
	ImagePath    string            `json:"image_path,omitempty" yaml:"image_path,omitempty" bson:"image_path,omitempty"`
	Marriage     string            `json:"marriage,omitempty" yaml:"marriage,omitempty" bson:"marriage,omitempty"`
	Note         string            `json:"note,omitempty" yaml:"note,omitempty" bson:"note,omitempty"`
	Gender       Gender            `json:"gender" yaml:"gender" bson:"gender"`
	Gen          int               `json:"gen" yaml:"gen" bson:"gen"`
	IsSpouse     bool              `json:"is_spouse" yaml:"is_spouse" bson:"is_spouse"`
	RowIndex     int               `json:"row_index" yaml:"row_index" bson:"row_index"`
	SourceID     string            `json:"source_id,omitempty" yaml:"source_id,omitempty" bson:"source_id,omitempty"`
	PersistentID string            `json:"persistent_id,omitempty" yaml:"persistent_id,omitempty" bson:"persistent_id,omitempty"`
	Extra        map[string]string `json:"extra,omitempty" yaml:"extra,omitempty" bson:"extra,omitempty"`
}

// Lookup returns the value stored under key. Keys backed by a struct field
// are always present (possibly empty); other keys are looked up in Extra.
func (m *Member) Lookup(key string) (string, bool) {
	switch key {
	case "id":
		return m.ID, true
	case "name":
		return m.Name, true
	case "first_name":
		return m.FirstName, true
	case "last_name":
		return m.LastName, true
	case "birth_date":
		return m.BirthDate, true
	case "birthplace", "birth_place":
		return m.BirthPlace, true
	case "death_date":
		return m.DeathDate, true
	case "death_place":
		return m.DeathPlace, true
	case "image_path":
		return m.ImagePath, true
	case "marriage":
		return m.Marriage, true
	case "note":
		return m.Note, true
	case "gender":
		return string(m.Gender), true
	}
	v, ok := m.Extra[key]
	return v, ok
}

// Set stores value under key, mirroring [Member.Lookup]. Unknown keys go
// to Extra. It reports whether key mapped to a dedicated field.
func (m *Member) Set(key, value string) bool {
	switch key {
	case "name":
		m.Name = value
	case "first_name":
		m.FirstName = value
	case "last_name":
		m.LastName = value
	case "birth_date":
		m.BirthDate = value
	case "birthplace", "birth_place":
		m.BirthPlace = value
	case "death_date":
		m.DeathDate = value
	case "death_place":
		m.DeathPlace = value
	case "image_path":
		m.ImagePath = value
	case "marriage":
		m.Marriage = value
	case "note":
		m.Note = value
	case "gender":
		m.Gender = Gender(value)
	case "gen_col":
		if value == SpouseMarker {
			m.IsSpouse = true
		} else if n, err := strconv.Atoi(value); err == nil {
			m.Gen = n
		}
	case "id":
		m.SourceID = value
	default:
		if m.Extra == nil {
			m.Extra = make(map[string]string)
		}
		m.Extra[key] = value
		return false
	}
	return true
}

// RebuildName recomputes Name from the first and last name.
func (m *Member) RebuildName() {
	m.Name = FullName(m.FirstName, m.LastName)
}

// FullName joins first and last name, falling back to "Unknown".
func FullName(first, last string) string {
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		return "Unknown"
	}
	return name
}

// Clone returns a deep copy of m.
func (m *Member) Clone() *Member {
	c := *m
	if m.Extra != nil {
		c.Extra = maps.Clone(m.Extra)
	}
	return &c
}

// Link is a directed edge between a member and a union, stored as
// [source, target].
type Link [2]string

// Source returns the link's source id.
func (l Link) Source() string { return l[0] }

// Target returns the link's target id.
func (l Link) Target() string { return l[1] }

// Data is the canonical serializable snapshot of a family: every member by
// id, the member/union link list and the starting member.
type Data struct {
	Members map[string]*Member `json:"members" yaml:"members" bson:"members"`
	Links   []Link             `json:"links" yaml:"links" bson:"links"`
	Start   string             `json:"start" yaml:"start" bson:"start"`
}

// NewData returns an empty Data ready for population.
func NewData() *Data {
	return &Data{Members: make(map[string]*Member)}
}

// Ordered returns the members in source row order.
func (d *Data) Ordered() []*Member {
	out := slices.Collect(maps.Values(d.Members))
	slices.SortFunc(out, func(a, b *Member) int {
		if a.RowIndex != b.RowIndex {
			return a.RowIndex - b.RowIndex
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Member returns the member with the given id, or nil.
func (d *Data) Member(id string) *Member {
	return d.Members[id]
}

// Clone returns a deep copy of d.
func (d *Data) Clone() *Data {
	c := &Data{
		Members: make(map[string]*Member, len(d.Members)),
		Links:   slices.Clone(d.Links),
		Start:   d.Start,
	}
	for id, m := range d.Members {
		c.Members[id] = m.Clone()
	}
	return c
}
