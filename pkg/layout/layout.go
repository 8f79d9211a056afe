package layout

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/familytree/pkg/dag"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
)

// Default node spacing.
const (
	DefaultDX = 80.0
	DefaultDY = 140.0
)

// RelaxationPasses is the number of global relaxation sweeps.
const RelaxationPasses = 8

// Options configures a layout run.
type Options struct {
	DX float64 // horizontal spacing within a generation
	DY float64 // vertical distance between member generations
}

func (o Options) withDefaults() Options {
	if o.DX <= 0 {
		o.DX = DefaultDX
	}
	if o.DY <= 0 {
		o.DY = DefaultDY
	}
	return o
}

// Result describes a finished layout.
type Result struct {
	// Levels maps node ids to their row. Members sit on even levels and
	// unions on odd levels; the member generation is level/2.
	Levels map[string]int
	// Rows lists the nodes of every level in ascending level order, sorted
	// left to right.
	Rows [][]*dag.Node
	// Crossings counts links that cross between consecutive rows.
	Crossings int
}

// Run lays out every node of g. Positions are written with
// [graph.FamilyGraph.SetPos]; positions already present are used to keep
// the left-to-right order stable across runs. Ages are written to each
// node's [graph.State].
func Run(g *graph.FamilyGraph, opts Options) Result {
	e := newEngine(g, opts.withDefaults())
	e.assignGenerations()
	e.assignGroups()
	e.assignAges()
	e.alignAll()
	return e.result()
}

type engine struct {
	g    *graph.FamilyGraph
	opts Options

	level       map[*dag.Node]int
	generations map[int][]*dag.Node

	partners [][]*dag.Node // per node index, deduplicated
	siblings []int         // per node index, size of all sibling groups

	// anchor and group keep partners next to their primary in pass C.
	anchor map[*dag.Node]*dag.Node
	group  map[*dag.Node][]*dag.Node
}

func newEngine(g *graph.FamilyGraph, opts Options) *engine {
	return &engine{
		g:           g,
		opts:        opts,
		level:       make(map[*dag.Node]int, g.Len()),
		generations: make(map[int][]*dag.Node),
		partners:    make([][]*dag.Node, g.Len()),
		siblings:    make([]int, g.Len()),
		anchor:      make(map[*dag.Node]*dag.Node),
		group:       make(map[*dag.Node][]*dag.Node),
	}
}

// assignGenerations runs a frontier expansion from every root. Parents go
// one level up, children one level down; the first assignment wins.
func (e *engine) assignGenerations() {
	for _, root := range e.g.Roots() {
		e.add(root, 0, false)
		border := []*dag.Node{root}
		for len(border) > 0 {
			var next []*dag.Node
			for _, n := range border {
				lvl := e.level[n]
				for _, p := range e.g.Parents(n) {
					if e.add(p, lvl-1, len(e.g.Parents(p)) == 0) {
						next = append(next, p)
					}
				}
				for _, c := range n.Children() {
					if e.add(c, lvl+1, false) {
						next = append(next, c)
					}
				}
			}
			border = next
		}
	}
}

// add records n at lvl unless it already has a level. A partner (a parent
// without parents of its own) is spliced right after the other parent of
// its first child.
func (e *engine) add(n *dag.Node, lvl int, partner bool) bool {
	if _, ok := e.level[n]; ok {
		return false
	}
	e.level[n] = lvl
	gen := e.generations[lvl]

	if partner && len(n.Children()) > 0 {
		var other *dag.Node
		for _, p := range e.g.Parents(n.Children()[0]) {
			if p != n {
				other = p
				break
			}
		}
		at := slices.Index(gen, other) + 1
		e.generations[lvl] = slices.Insert(gen, at, n)
		return true
	}
	e.generations[lvl] = append(gen, n)
	return true
}

// assignGroups collects, for every node, the partners it shares a union
// with (itself included) and the total size of its sibling groups.
func (e *engine) assignGroups() {
	for _, u := range e.g.Nodes() {
		if !u.IsUnion() {
			continue
		}
		parents := e.g.Parents(u)
		for _, p := range parents {
			for _, q := range parents {
				if !slices.Contains(e.partners[p.Index()], q) {
					e.partners[p.Index()] = append(e.partners[p.Index()], q)
				}
			}
		}
		for _, c := range u.Children() {
			e.siblings[c.Index()] += len(u.Children())
		}
	}
}

// assignAges infers a sortable year for every node. Members use their
// birth date; unions use the oldest parent, else the mean of their
// children, else stay unknown.
func (e *engine) assignAges() {
	for _, n := range e.g.Nodes() {
		st := e.g.State(n)
		st.Age, st.AgeKnown = 0, false
		if !e.g.IsMember(n) {
			continue
		}
		if y, ok := family.ParseYear(e.g.BirthDate(n)); ok {
			st.Age, st.AgeKnown = float64(y), true
		}
	}
	for _, n := range e.g.Nodes() {
		if !n.IsUnion() {
			continue
		}
		st := e.g.State(n)
		if age, ok := e.oldest(e.g.Parents(n)); ok {
			st.Age, st.AgeKnown = age, true
		} else if age, ok := e.average(n.Children()); ok {
			st.Age, st.AgeKnown = age, true
		}
	}
}

func (e *engine) oldest(nodes []*dag.Node) (float64, bool) {
	found, age := false, 0.0
	for _, n := range nodes {
		if st := e.g.State(n); st.AgeKnown && (!found || st.Age < age) {
			found, age = true, st.Age
		}
	}
	return age, found
}

func (e *engine) average(nodes []*dag.Node) (float64, bool) {
	sum, count := 0.0, 0
	for _, n := range nodes {
		if st := e.g.State(n); st.AgeKnown {
			sum += st.Age
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func (e *engine) sortedLevels() []int {
	return slices.Sorted(maps.Keys(e.generations))
}

func (e *engine) alignAll() {
	levels := e.sortedLevels()
	for _, lvl := range levels {
		nodes := e.generations[lvl]
		e.alignGeneration(lvl, nodes)
		e.recenter(nodes, 0)
	}

	r := relaxer{g: e.g, dx: e.opts.DX}
	for range RelaxationPasses {
		for _, lvl := range levels {
			r.run(e.generations[lvl])
		}
	}
}

// alignGeneration runs the three ordering passes over one generation.
func (e *engine) alignGeneration(lvl int, nodes []*dag.Node) {
	y := float64(lvl) * e.opts.DY / 2
	for pass := 1; pass <= 3; pass++ {
		slices.SortStableFunc(nodes, e.compare)
		for i, n := range nodes {
			e.g.SetPos(n, float64(i)*e.opts.DX, y)
		}
		switch pass {
		case 1:
			for _, n := range nodes {
				e.alignToParents(n)
			}
		case 2:
			for _, n := range nodes {
				if n.IsMember() {
					e.alignPartners(lvl, n)
				}
			}
		}
	}
}

// compare orders nodes by their partnership anchor, keeping attached
// partners right behind it in attachment order.
func (e *engine) compare(a, b *dag.Node) int {
	ra, rb := e.anchorOf(a), e.anchorOf(b)
	if ra != rb {
		return e.compareNodes(ra, rb)
	}
	return cmp.Compare(e.rank(a), e.rank(b))
}

func (e *engine) anchorOf(n *dag.Node) *dag.Node {
	if a, ok := e.anchor[n]; ok {
		return a
	}
	return n
}

func (e *engine) rank(n *dag.Node) int {
	a, ok := e.anchor[n]
	if !ok {
		return 0
	}
	return slices.Index(e.group[a], n) + 1
}

// attach places p, together with anything already attached to it, in the
// group of primary's anchor.
func (e *engine) attach(primary, p *dag.Node) {
	root := e.anchorOf(primary)
	if _, ok := e.anchor[p]; ok || p == root {
		return
	}
	moved := append([]*dag.Node{p}, e.group[p]...)
	delete(e.group, p)
	for _, m := range moved {
		e.anchor[m] = root
	}
	e.group[root] = append(e.group[root], moved...)
}

// compareNodes orders placed nodes by x, then by known age, then by id.
func (e *engine) compareNodes(a, b *dag.Node) int {
	pa, pb := e.g.Pos(a), e.g.Pos(b)
	if pa.Placed != pb.Placed {
		if pa.Placed {
			return -1
		}
		return 1
	}
	if pa.Placed {
		if c := cmp.Compare(pa.X, pb.X); c != 0 {
			return c
		}
	}
	if c := e.compareAge(a, b); c != 0 {
		return c
	}
	return cmp.Compare(a.ID(), b.ID())
}

func (e *engine) compareAge(a, b *dag.Node) int {
	sa, sb := e.g.State(a), e.g.State(b)
	switch {
	case sa.AgeKnown && sb.AgeKnown:
		return cmp.Compare(sa.Age, sb.Age)
	case sa.AgeKnown:
		return -1
	case sb.AgeKnown:
		return 1
	}
	return 0
}

// alignToParents moves n to the mean x of its parents. A union follows its
// blood-line parents when it has any so the main line stays straight.
func (e *engine) alignToParents(n *dag.Node) {
	parents := e.g.Parents(n)
	if len(parents) == 0 {
		return
	}
	if n.IsUnion() {
		var blood []*dag.Node
		for _, p := range parents {
			if !e.g.IsSpouse(p) {
				blood = append(blood, p)
			}
		}
		if len(blood) > 0 {
			parents = blood
		}
	}
	sum := 0.0
	for _, p := range parents {
		sum += e.g.Pos(p).X
	}
	p := e.g.Pos(n)
	e.g.SetPos(n, sum/float64(len(parents)), p.Y)
}

// alignPartners places the partners of n next to the primary partner, the
// first blood-line member in (sibling count, age, id) order.
func (e *engine) alignPartners(lvl int, n *dag.Node) {
	var partners []*dag.Node
	for _, p := range e.partners[n.Index()] {
		if e.level[p] == lvl {
			partners = append(partners, p)
		}
	}
	if len(partners) < 2 {
		return
	}
	slices.SortStableFunc(partners, func(a, b *dag.Node) int {
		if c := cmp.Compare(e.siblings[a.Index()], e.siblings[b.Index()]); c != 0 {
			return c
		}
		if c := e.compareAge(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})

	primary := partners[0]
	for _, p := range partners {
		if !e.g.IsSpouse(p) {
			primary = p
			break
		}
	}
	base := e.g.Pos(primary)
	i := 1
	for _, p := range partners {
		if p == primary {
			continue
		}
		e.g.SetPos(p, base.X+float64(i)*e.opts.DX, base.Y)
		e.attach(primary, p)
		i++
	}
}

// recenter shifts nodes so their mean x equals center.
func (e *engine) recenter(nodes []*dag.Node, center float64) {
	if len(nodes) == 0 {
		return
	}
	sum := 0.0
	for _, n := range nodes {
		sum += e.g.Pos(n).X
	}
	offset := center - sum/float64(len(nodes))
	for _, n := range nodes {
		p := e.g.Pos(n)
		e.g.SetPos(n, p.X+offset, p.Y)
	}
}

func (e *engine) result() Result {
	res := Result{Levels: make(map[string]int, len(e.level))}
	for n, lvl := range e.level {
		res.Levels[n.ID()] = lvl
	}
	for _, lvl := range e.sortedLevels() {
		row := slices.Clone(e.generations[lvl])
		slices.SortStableFunc(row, func(a, b *dag.Node) int {
			return cmp.Compare(e.g.Pos(a).X, e.g.Pos(b).X)
		})
		res.Rows = append(res.Rows, row)
	}
	res.Crossings = dag.CountCrossings(res.Rows)
	return res
}
