package view

import (
	"github.com/matzehuels/familytree/pkg/dag"
	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/layout"
	"github.com/matzehuels/familytree/pkg/lineage"
	"github.com/matzehuels/familytree/pkg/observability"
)

func (c *Controller) draw(recenter bool, focus string) (graph.Frame, error) {
	if n, err := c.full.Node(focus); err == nil {
		c.full.State(n).Visible = true
		for _, u := range c.full.Parents(n) {
			if c.anyVisible(c.full.Parents(u)) {
				c.full.State(u).Visible = true
			}
		}
	}

	links := c.full.VisibleLinks()
	if len(links) == 0 {
		c.logger.Warn("no visible links, resetting to default view", "focus", focus)
		observability.View().OnFallback("no visible links", focus)

		root, err := c.full.Node(focus)
		if err != nil {
			root, err = c.full.Node(c.data.Start)
		}
		if err != nil {
			return graph.Frame{}, err
		}
		c.hideAll()
		c.showDefault(root)
		links = c.full.VisibleLinks()
		if len(links) == 0 {
			return graph.Frame{}, errors.New(errors.ErrCodeEmptyGraph, "no visible links around %s", root.ID())
		}
	}

	c.full.TransferFrom(c.visible)
	visible, err := c.full.Subgraph(links)
	if err != nil {
		return graph.Frame{}, err
	}
	visible.TransferFrom(c.full)
	c.visible = visible

	for _, n := range visible.Nodes() {
		full, _ := c.full.Node(n.ID())
		visible.State(n).Highlighted = !c.allVisible(c.relationship(full))
	}

	res := layout.Run(visible, c.opts.Layout)

	current, err := visible.Node(focus)
	if err != nil {
		current = visible.Nodes()[0]
		c.logger.Warn("focus node not visible, using first node", "focus", focus, "fallback", current.ID())
		observability.View().OnFallback("focus not visible", focus)
	}
	c.focus = current.ID()

	if st := visible.State(current); !recenter && st.HasPrev {
		p := visible.Pos(current)
		if dx, dy := st.X0-p.X, st.Y0-p.Y; dx != 0 || dy != 0 {
			visible.Shift(dx, dy)
		}
	}

	opts := c.layoutOptions()
	f := visible.Frame(c.focus, recenter)
	f.DX, f.DY = opts.DX, opts.DY
	f.Crossings = res.Crossings
	f.Patrilineal = c.mode == lineage.Patrilineal

	for _, n := range visible.Nodes() {
		p, st := visible.Pos(n), visible.State(n)
		st.X0, st.Y0, st.HasPrev = p.X, p.Y, true
	}
	c.frame = f
	return f, nil
}

func (c *Controller) allVisible(nodes []*dag.Node) bool {
	for _, n := range nodes {
		if !c.full.State(n).Visible {
			return false
		}
	}
	return true
}

func (c *Controller) layoutOptions() layout.Options {
	o := c.opts.Layout
	if o.DX <= 0 {
		o.DX = layout.DefaultDX
	}
	if o.DY <= 0 {
		o.DY = layout.DefaultDY
	}
	return o
}
