package graph

import (
	"github.com/matzehuels/familytree/pkg/dag"
	"github.com/matzehuels/familytree/pkg/family"
)

// State is the view overlay attached to every node. Graphs rebuilt from
// the same family share State values by pointer, so visibility set on one
// graph is seen by all of them.
type State struct {
	Visible     bool
	Highlighted bool // has a hidden neighbour and can be expanded further

	// Coordinates of the previous render, the start point of transitions.
	X0, Y0  float64
	HasPrev bool

	// Sortable year inferred by the layout engine.
	Age      float64
	AgeKnown bool
}

// Position is a node's layout coordinate. Placed is false until the node
// has been laid out (or inherited a position through [FamilyGraph.TransferFrom]).
type Position struct {
	X, Y   float64
	Placed bool
}

// FamilyGraph is a [dag.Dag] with a member payload and a view overlay per
// node.
type FamilyGraph struct {
	*dag.Dag

	members map[string]*family.Member
	state   []*State
	pos     []Position
}

// New builds a FamilyGraph over links. Nodes whose id is a key of members
// carry that member as payload; every node starts hidden and unplaced.
func New(links []family.Link, members map[string]*family.Member) (*FamilyGraph, error) {
	d, err := dag.New(links)
	if err != nil {
		return nil, err
	}
	g := &FamilyGraph{
		Dag:     d,
		members: make(map[string]*family.Member),
		state:   make([]*State, d.Len()),
		pos:     make([]Position, d.Len()),
	}
	for _, n := range d.Nodes() {
		g.state[n.Index()] = &State{}
		if m, ok := members[n.ID()]; ok {
			g.members[n.ID()] = m
		}
	}
	return g, nil
}

// FromData builds the full graph of a family.
func FromData(data *family.Data) (*FamilyGraph, error) {
	return New(data.Links, data.Members)
}

// State returns the overlay of n.
func (g *FamilyGraph) State(n *dag.Node) *State { return g.state[n.Index()] }

// Pos returns the layout position of n.
func (g *FamilyGraph) Pos(n *dag.Node) Position { return g.pos[n.Index()] }

// SetPos places n at (x, y).
func (g *FamilyGraph) SetPos(n *dag.Node, x, y float64) {
	g.pos[n.Index()] = Position{X: x, Y: y, Placed: true}
}

// Shift moves every placed node by (dx, dy).
func (g *FamilyGraph) Shift(dx, dy float64) {
	for i := range g.pos {
		if g.pos[i].Placed {
			g.pos[i].X += dx
			g.pos[i].Y += dy
		}
	}
}

// Member returns the payload of n, or nil for unions and unknown members.
func (g *FamilyGraph) Member(n *dag.Node) *family.Member { return g.members[n.ID()] }

// Members returns the payload map keyed by node id.
func (g *FamilyGraph) Members() map[string]*family.Member { return g.members }

// IsMember reports whether n carries a member payload.
func (g *FamilyGraph) IsMember(n *dag.Node) bool {
	_, ok := g.members[n.ID()]
	return ok
}

// Field resolves a logical field of n. Nodes without a payload yield the
// field default.
func (g *FamilyGraph) Field(n *dag.Node, f family.Field) string {
	return f.Resolve(g.Member(n))
}

// Typed accessors for the logical fields in [family.Fields].

func (g *FamilyGraph) Name(n *dag.Node) string       { return g.Field(n, family.FieldName) }
func (g *FamilyGraph) BirthDate(n *dag.Node) string  { return g.Field(n, family.FieldBirthDate) }
func (g *FamilyGraph) DeathDate(n *dag.Node) string  { return g.Field(n, family.FieldDeathDate) }
func (g *FamilyGraph) BirthPlace(n *dag.Node) string { return g.Field(n, family.FieldBirthPlace) }
func (g *FamilyGraph) DeathPlace(n *dag.Node) string { return g.Field(n, family.FieldDeathPlace) }
func (g *FamilyGraph) Marriage(n *dag.Node) string   { return g.Field(n, family.FieldMarriage) }
func (g *FamilyGraph) Occupation(n *dag.Node) string { return g.Field(n, family.FieldOccupation) }
func (g *FamilyGraph) Note(n *dag.Node) string       { return g.Field(n, family.FieldNote) }
func (g *FamilyGraph) Image(n *dag.Node) string      { return g.Field(n, family.FieldImagePath) }

// Gender returns the member gender, [family.Unknown] for unions.
func (g *FamilyGraph) Gender(n *dag.Node) family.Gender {
	if m := g.Member(n); m != nil && m.Gender != "" {
		return m.Gender
	}
	return family.Unknown
}

// IsSpouse reports whether n is a member that married into the family.
func (g *FamilyGraph) IsSpouse(n *dag.Node) bool {
	m := g.Member(n)
	return m != nil && m.IsSpouse
}

// TransferFrom copies positions from the nodes of from that share an id
// with nodes of g, and makes them share the same State. Nodes missing in
// from keep their current values.
func (g *FamilyGraph) TransferFrom(from *FamilyGraph) {
	if from == nil {
		return
	}
	for _, n := range g.Nodes() {
		src, err := from.Node(n.ID())
		if err != nil {
			continue
		}
		g.pos[n.Index()] = from.pos[src.Index()]
		g.state[n.Index()] = from.state[src.Index()]
	}
}

// VisibleLinks returns the links whose endpoints are both visible.
func (g *FamilyGraph) VisibleLinks() []family.Link {
	var out []family.Link
	for _, l := range g.Links() {
		s, _ := g.Node(l.Source())
		t, _ := g.Node(l.Target())
		if g.State(s).Visible && g.State(t).Visible {
			out = append(out, l)
		}
	}
	return out
}

// VisibleIDs returns the ids of visible nodes in id order.
func (g *FamilyGraph) VisibleIDs() []string {
	var out []string
	for _, n := range g.Nodes() {
		if g.State(n).Visible {
			out = append(out, n.ID())
		}
	}
	return out
}

// Subgraph builds a new graph over links that shares payloads with g.
// States are fresh until [FamilyGraph.TransferFrom] is called.
func (g *FamilyGraph) Subgraph(links []family.Link) (*FamilyGraph, error) {
	return New(links, g.members)
}
