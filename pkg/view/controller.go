package view

import (
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familytree/pkg/dag"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/layout"
	"github.com/matzehuels/familytree/pkg/lineage"
)

// ErrNoPath is returned by [Controller.FindPath] when the two nodes are not
// connected.
var ErrNoPath = errors.New("no path between nodes")

// Options configures a Controller.
type Options struct {
	Layout layout.Options
	Logger *log.Logger
}

// Controller owns the full and the visible graph of one family.
type Controller struct {
	mu     sync.Mutex
	opts   Options
	logger *log.Logger

	source *family.Data // unfiltered
	data   *family.Data // source with the lineage filter applied
	mode   lineage.Mode
	saved  map[string]bool // full-tree visible set kept while filtered

	full    *graph.FamilyGraph
	visible *graph.FamilyGraph
	focus   string
	frame   graph.Frame
}

// New builds the full graph of data and shows the default view around
// data.Start. Nothing is laid out until the first [Controller.Draw].
func New(data *family.Data, opts Options) (*Controller, error) {
	c := &Controller{
		opts:   opts,
		logger: opts.Logger,
		source: data,
		data:   data,
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	full, err := graph.FromData(data)
	if err != nil {
		return nil, err
	}
	c.full = full
	c.focus = data.Start
	if root, err := full.Node(data.Start); err == nil {
		c.showDefault(root)
	}
	return c, nil
}

// Focus returns the id of the node the view is anchored on.
func (c *Controller) Focus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// Mode returns the active lineage filter.
func (c *Controller) Mode() lineage.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Data returns the family data currently displayed, with the lineage
// filter applied.
func (c *Controller) Data() *family.Data {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// Source returns the unfiltered family data.
func (c *Controller) Source() *family.Data {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// Frame returns the result of the last draw.
func (c *Controller) Frame() graph.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// VisibleIDs lists the visible node ids of the full graph in id order.
func (c *Controller) VisibleIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.full.VisibleIDs()
}

// Reset hides everything except the default view around the start member
// and redraws with recentering.
func (c *Controller) Reset() (graph.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	root, err := c.full.Node(c.data.Start)
	if err != nil {
		return graph.Frame{}, err
	}
	c.hideAll()
	c.showDefault(root)
	return c.draw(true, root.ID())
}

// Draw rebuilds the visible graph, lays it out and returns the frame. When
// recenter is false the focus node keeps its previous position.
func (c *Controller) Draw(recenter bool, focus string) (graph.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draw(recenter, focus)
}

// Expand toggles a visible node. A highlighted node reveals its
// relationship set; any other node hides what hangs below it.
func (c *Controller) Expand(id string) (graph.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.visible == nil {
		if _, err := c.draw(true, c.focus); err != nil {
			return graph.Frame{}, err
		}
	}
	n, err := c.visible.Node(id)
	if err != nil {
		return graph.Frame{}, err
	}
	full, _ := c.full.Node(id)
	if c.visible.State(n).Highlighted {
		for _, r := range c.relationship(full) {
			c.full.State(r).Visible = true
		}
	} else {
		c.hideDescendants(full)
	}
	return c.draw(false, id)
}

// CollapseToAncestors shows only id, its ancestors, the partners it has
// children with and all its descendants, then recenters on id.
func (c *Controller) CollapseToAncestors(id string) (graph.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.full.Node(id)
	if err != nil {
		return graph.Frame{}, err
	}
	c.hideAll()
	c.full.State(n).Visible = true

	stack := append([]*dag.Node(nil), c.full.Parents(n)...)
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.full.State(p).Visible = true
		stack = append(stack, c.full.Parents(p)...)
	}

	for _, u := range n.Children() {
		for _, p := range c.full.Parents(u) {
			c.full.State(p).Visible = true
		}
	}
	stack = append(stack, n.Children()...)
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.full.State(d).Visible = true
		stack = append(stack, d.Children()...)
	}
	return c.draw(true, id)
}

// ConnectToNode reveals id and walks its ancestor chain upward, revealing
// unions and parents, until it reaches ancestors that are already visible.
// The view is recentered on id.
func (c *Controller) ConnectToNode(id string) (graph.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.full.Node(id)
	if err != nil {
		return graph.Frame{}, err
	}
	c.full.State(n).Visible = true

	border := []*dag.Node{n}
	for len(border) > 0 {
		var next []*dag.Node
		for _, m := range border {
			for _, u := range c.full.Parents(m) {
				c.full.State(u).Visible = true
				for _, p := range c.full.Parents(u) {
					st := c.full.State(p)
					if st.Visible {
						continue
					}
					st.Visible = true
					next = append(next, p)
				}
			}
		}
		border = next
	}
	return c.draw(true, id)
}

// FindPath reveals the shortest path between from and to, ignoring link
// direction, and recenters on to. It returns the ids along the path.
func (c *Controller) FindPath(from, to string) ([]string, graph.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	src, err := c.full.Node(from)
	if err != nil {
		return nil, graph.Frame{}, err
	}
	dst, err := c.full.Node(to)
	if err != nil {
		return nil, graph.Frame{}, err
	}

	prev := map[*dag.Node]*dag.Node{src: nil}
	queue := []*dag.Node{src}
	for len(queue) > 0 && prev[dst] == nil && src != dst {
		n := queue[0]
		queue = queue[1:]
		for _, m := range c.full.FirstLevel(n) {
			if _, seen := prev[m]; seen {
				continue
			}
			prev[m] = n
			queue = append(queue, m)
		}
	}
	if _, ok := prev[dst]; !ok {
		return nil, graph.Frame{}, ErrNoPath
	}

	var path []string
	for n := dst; n != nil; n = prev[n] {
		c.full.State(n).Visible = true
		path = append([]string{n.ID()}, path...)
	}
	f, err := c.draw(true, to)
	return path, f, err
}

// UpdateData replaces the family data, keeps the lineage filter and
// restores visibility from restore, or from the current visible set when
// restore is nil. The view is redrawn without recentering.
func (c *Controller) UpdateData(data *family.Data, restore []string) (graph.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source = data
	return c.load(c.mode.Apply(data), restore)
}

// SetLineage switches the lineage filter. Switching to a filter remembers
// the full-tree visible set; switching back merges what was opened while
// filtered into it and restores the result.
func (c *Controller) SetLineage(mode lineage.Mode) (graph.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mode == c.mode {
		return c.draw(false, c.focus)
	}

	current := c.full.VisibleIDs()
	var restore []string
	if mode != lineage.Full {
		c.saved = make(map[string]bool, len(current))
		for _, id := range current {
			c.saved[id] = true
		}
		restore = current
	} else {
		if c.saved == nil {
			c.saved = make(map[string]bool, len(current))
		}
		for _, id := range current {
			c.saved[id] = true
		}
		for id := range c.saved {
			restore = append(restore, id)
		}
		c.saved = nil
	}

	c.mode = mode
	return c.load(mode.Apply(c.source), restore)
}

// load rebuilds the full graph from data and restores visibility.
func (c *Controller) load(data *family.Data, restore []string) (graph.Frame, error) {
	if restore == nil {
		restore = c.full.VisibleIDs()
	}
	full, err := graph.FromData(data)
	if err != nil {
		return graph.Frame{}, err
	}
	c.data, c.full, c.visible = data, full, nil

	root, err := full.Node(data.Start)
	if err != nil {
		return graph.Frame{}, err
	}

	restored := 0
	for _, id := range restore {
		if n, err := full.Node(id); err == nil && !full.State(n).Visible {
			full.State(n).Visible = true
			restored++
		}
	}
	full.State(root).Visible = true

	if len(restore) <= 1 || restored <= 1 {
		c.logger.Debug("nothing to restore, using default view", "saved", len(restore), "restored", restored)
		c.showDefault(root)
	} else {
		c.connect()
	}

	focus := c.focus
	if _, err := full.Node(focus); err != nil {
		focus = data.Start
	}
	return c.draw(false, focus)
}

// connect makes unions visible that join two visible parts of the tree.
func (c *Controller) connect() {
	for _, n := range c.full.Nodes() {
		if !c.full.State(n).Visible {
			continue
		}
		for _, u := range n.Children() {
			if c.anyVisible(u.Children()) {
				c.full.State(u).Visible = true
			}
		}
		for _, u := range c.full.Parents(n) {
			if c.anyVisible(c.full.Parents(u)) {
				c.full.State(u).Visible = true
			}
		}
	}
}

func (c *Controller) anyVisible(nodes []*dag.Node) bool {
	for _, n := range nodes {
		if c.full.State(n).Visible {
			return true
		}
	}
	return false
}

func (c *Controller) hideAll() {
	for _, n := range c.full.Nodes() {
		c.full.State(n).Visible = false
	}
}

// showDefault makes root, its partners and children visible. A root
// without children shows its parents instead so the view keeps a link.
func (c *Controller) showDefault(root *dag.Node) {
	c.full.State(root).Visible = true
	for _, u := range root.Children() {
		c.full.State(u).Visible = true
		for _, p := range c.full.Parents(u) {
			c.full.State(p).Visible = true
		}
		for _, k := range u.Children() {
			c.full.State(k).Visible = true
		}
	}
	if len(root.Children()) > 0 {
		return
	}
	for _, u := range c.full.Parents(root) {
		c.full.State(u).Visible = true
		for _, p := range c.full.Parents(u) {
			c.full.State(p).Visible = true
		}
	}
}

// hideDescendants hides every child union of n, the other partners in it
// and, recursively, its children. For a union n the children are members
// and are hidden together with their own descendants.
func (c *Controller) hideDescendants(n *dag.Node) {
	if n.IsUnion() {
		for _, k := range n.Children() {
			c.full.State(k).Visible = false
			c.hideDescendants(k)
		}
		return
	}
	for _, u := range n.Children() {
		c.full.State(u).Visible = false
		for _, p := range c.full.Parents(u) {
			if p != n {
				c.full.State(p).Visible = false
			}
		}
		for _, k := range u.Children() {
			c.full.State(k).Visible = false
			c.hideDescendants(k)
		}
	}
}

// relationship is what a click on n reveals: the second-level neighbours
// of a member, the first-level neighbours of a union.
func (c *Controller) relationship(n *dag.Node) []*dag.Node {
	if n.IsMember() {
		return c.full.SecondLevel(n)
	}
	return c.full.FirstLevel(n)
}
