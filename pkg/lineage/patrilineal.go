package lineage

import (
	"math"

	"github.com/matzehuels/familytree/pkg/family"
)

// FilterPatrilineal keeps the male lineage, the children of its members
// and the spouses attached to anyone kept. The result's Start is the
// input's Start when that member belongs to the lineage, else the lineage
// root.
func FilterPatrilineal(data *family.Data) *family.Data {
	f := newFilter(data)

	root := f.actualRoot()
	f.root = root
	for _, m := range data.Ordered() {
		f.inLineage(m.ID)
	}

	displayRoot := root
	if f.lineage[data.Start] {
		displayRoot = data.Start
	}

	shown := make(map[string]bool)
	for _, m := range data.Ordered() {
		switch {
		case f.lineage[m.ID]:
			shown[m.ID] = true
		case !m.IsSpouse:
			if p := f.bloodParent(m.ID); p != "" && f.lineage[p] {
				shown[m.ID] = true
			}
		}
	}
	for _, m := range data.Ordered() {
		if m.IsSpouse && f.spouseShown(m.ID, shown) {
			shown[m.ID] = true
		}
	}

	out := family.NewData()
	for id := range shown {
		out.Members[id] = data.Members[id]
	}
	keep := func(id string) bool {
		return family.IsUnionID(id) || shown[id]
	}
	for _, l := range data.Links {
		if keep(l.Source()) && keep(l.Target()) {
			out.Links = append(out.Links, l)
		}
	}
	if _, ok := out.Members[displayRoot]; !ok {
		if m := data.Members[displayRoot]; m != nil {
			out.Members[displayRoot] = m
		}
	}
	out.Start = displayRoot
	return out
}

type filter struct {
	data           *family.Data
	root           string
	unionParents   map[string][]string
	childUnion     map[string]string
	memberUnions   map[string][]string
	lineage, known map[string]bool
}

func newFilter(data *family.Data) *filter {
	f := &filter{
		data:         data,
		unionParents: make(map[string][]string),
		childUnion:   make(map[string]string),
		memberUnions: make(map[string][]string),
		lineage:      make(map[string]bool),
		known:        make(map[string]bool),
	}
	for _, l := range data.Links {
		from, to := l.Source(), l.Target()
		switch {
		case family.IsUnionID(from):
			f.childUnion[to] = from
		case family.IsUnionID(to):
			f.unionParents[to] = append(f.unionParents[to], from)
			f.memberUnions[from] = append(f.memberUnions[from], to)
		}
	}
	return f
}

// actualRoot is the non-spouse member with the lowest generation; the
// lowest row wins ties.
func (f *filter) actualRoot() string {
	root, lowest := f.data.Start, math.MaxInt
	for _, m := range f.data.Ordered() {
		if !m.IsSpouse && m.Gen < lowest {
			root, lowest = m.ID, m.Gen
		}
	}
	return root
}

// bloodParent returns the father of id's parent union, else the mother.
func (f *filter) bloodParent(id string) string {
	u, ok := f.childUnion[id]
	if !ok {
		return ""
	}
	var father, mother string
	for _, p := range f.unionParents[u] {
		m := f.data.Members[p]
		if m == nil {
			continue
		}
		if m.Gender == family.Male {
			father = p
		} else {
			mother = p
		}
	}
	if father != "" {
		return father
	}
	return mother
}

func (f *filter) inLineage(id string) bool {
	if f.known[id] {
		return f.lineage[id]
	}
	f.known[id] = true

	m := f.data.Members[id]
	switch {
	case m == nil:
		return false
	case id == f.root:
		f.lineage[id] = true
		return true
	case m.IsSpouse:
		return false
	}

	p := f.bloodParent(id)
	if p == "" {
		return false
	}
	parent := f.data.Members[p]
	if m.Gender == family.Male && parent.Gender == family.Male && f.inLineage(p) {
		f.lineage[id] = true
	}
	return f.lineage[id]
}

func (f *filter) spouseShown(id string, shown map[string]bool) bool {
	if u, ok := f.childUnion[id]; ok {
		for _, p := range f.unionParents[u] {
			if shown[p] {
				return true
			}
		}
		return false
	}
	for _, u := range f.memberUnions[id] {
		for _, p := range f.unionParents[u] {
			if p != id && shown[p] {
				return true
			}
		}
	}
	return false
}
