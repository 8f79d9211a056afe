package dag

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/familytree/pkg/family"
)

var (
	// ErrNoLinks is returned by [New] for an empty link list. A family tree
	// without edges cannot be laid out.
	ErrNoLinks = errors.New("cannot handle a dataset without links")

	// ErrInvalidLink is returned by [New] when a link joins two nodes of the
	// same kind. Links always connect a member and a union.
	ErrInvalidLink = errors.New("link must join a member and a union")

	// ErrNodeNotFound is returned by [Dag.Node] for unknown ids.
	ErrNodeNotFound = errors.New("node not found")
)

// Kind distinguishes the two node types of the bipartite family graph.
type Kind int

const (
	// KindMember is a person.
	KindMember Kind = iota
	// KindUnion is a synthetic couple node joining parents to children.
	KindUnion
)

func (k Kind) String() string {
	if k == KindUnion {
		return "union"
	}
	return "member"
}

// KindOf derives the node kind from the id scheme.
func KindOf(id string) Kind {
	if family.IsUnionID(id) {
		return KindUnion
	}
	return KindMember
}

// Node is a vertex of a [Dag]. Nodes are created by [New] and are only
// valid for the Dag that created them.
type Node struct {
	id       string
	kind     Kind
	index    int
	children []*Node
}

// ID returns the node id (mem_<n> or u_<a>_<b>).
func (n *Node) ID() string { return n.id }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// IsUnion reports whether n is a union node.
func (n *Node) IsUnion() bool { return n.kind == KindUnion }

// IsMember reports whether n is a member node.
func (n *Node) IsMember() bool { return n.kind == KindMember }

// Index returns the position of n in [Dag.Nodes].
func (n *Node) Index() int { return n.index }

// Children returns the targets of n's outgoing links in link order.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) String() string { return n.id }

// Dag is an immutable directed graph built from a link list. Relations
// (parents, first- and second-level adjacency) are computed on first use
// and cached for the lifetime of the Dag.
//
// A Dag is not safe for concurrent use; the view controller serializes
// access.
type Dag struct {
	nodes []*Node
	byID  map[string]int
	links []family.Link

	parentsDone bool
	parents     [][]*Node

	firstDone bool
	first     []nodeSet

	secondDone bool
	second     []nodeSet
}

// New builds a Dag from links. Node ids are deduplicated and sorted so
// that iteration order is deterministic.
func New(links []family.Link) (*Dag, error) {
	if len(links) == 0 {
		return nil, ErrNoLinks
	}

	seen := make(map[string]bool, len(links))
	var ids []string
	for _, l := range links {
		if KindOf(l.Source()) == KindOf(l.Target()) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidLink, l.Source(), l.Target())
		}
		for _, id := range l {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	slices.Sort(ids)

	d := &Dag{
		nodes: make([]*Node, len(ids)),
		byID:  make(map[string]int, len(ids)),
		links: slices.Clone(links),
	}
	for i, id := range ids {
		d.nodes[i] = &Node{id: id, kind: KindOf(id), index: i}
		d.byID[id] = i
	}
	for _, l := range links {
		src := d.nodes[d.byID[l.Source()]]
		src.children = append(src.children, d.nodes[d.byID[l.Target()]])
	}
	return d, nil
}

// Node looks up a node by id.
func (d *Dag) Node(id string) (*Node, error) {
	i, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return d.nodes[i], nil
}

// Has reports whether the Dag contains id.
func (d *Dag) Has(id string) bool {
	_, ok := d.byID[id]
	return ok
}

// Nodes returns all nodes sorted by id.
func (d *Dag) Nodes() []*Node { return d.nodes }

// Links returns the link list the Dag was built from.
func (d *Dag) Links() []family.Link { return d.links }

// Len returns the number of nodes.
func (d *Dag) Len() int { return len(d.nodes) }

// Parents returns the sources of n's incoming links.
func (d *Dag) Parents(n *Node) []*Node {
	if !d.parentsDone {
		d.parents = make([][]*Node, len(d.nodes))
		for _, l := range d.links {
			t := d.byID[l.Target()]
			d.parents[t] = append(d.parents[t], d.nodes[d.byID[l.Source()]])
		}
		d.parentsDone = true
	}
	return d.parents[n.index]
}

// FirstLevel returns the nodes directly linked to n in either direction,
// in first-seen link order.
func (d *Dag) FirstLevel(n *Node) []*Node {
	d.computeFirst()
	return d.first[n.index].items
}

// SecondLevel returns the neighbours of n's neighbours, including n's own
// neighbourhood. For a member this reaches partners and siblings through
// the unions between them.
func (d *Dag) SecondLevel(n *Node) []*Node {
	if !d.secondDone {
		d.computeFirst()
		d.second = make([]nodeSet, len(d.nodes))
		merge := func(from, to int) {
			for _, m := range d.first[from].items {
				d.second[to].add(m)
			}
		}
		for _, l := range d.links {
			s, t := d.byID[l.Source()], d.byID[l.Target()]
			merge(s, s)
			merge(t, t)
			merge(s, t)
			merge(t, s)
		}
		d.secondDone = true
	}
	return d.second[n.index].items
}

func (d *Dag) computeFirst() {
	if d.firstDone {
		return
	}
	d.first = make([]nodeSet, len(d.nodes))
	for _, l := range d.links {
		s, t := d.byID[l.Source()], d.byID[l.Target()]
		d.first[s].add(d.nodes[t])
		d.first[t].add(d.nodes[s])
	}
	d.firstDone = true
}

// Roots returns the nodes without parents, sorted by id.
func (d *Dag) Roots() []*Node {
	var roots []*Node
	for _, n := range d.nodes {
		if len(d.Parents(n)) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// nodeSet is an insertion-ordered set of nodes.
type nodeSet struct {
	items []*Node
	seen  map[*Node]bool
}

func (s *nodeSet) add(n *Node) {
	if s.seen == nil {
		s.seen = make(map[*Node]bool)
	}
	if !s.seen[n] {
		s.seen[n] = true
		s.items = append(s.items, n)
	}
}
