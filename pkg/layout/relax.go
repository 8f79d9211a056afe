package layout

import (
	"math"

	"github.com/matzehuels/familytree/pkg/dag"
	"github.com/matzehuels/familytree/pkg/graph"
)

// relaxer removes residual overlap within one generation. Each node is
// pushed away from list neighbours closer than dx and weakly pulled toward
// its parents and children. Forces of one pass are computed from a snapshot
// so mirror-symmetric rows stay symmetric.
type relaxer struct {
	g  *graph.FamilyGraph
	dx float64
}

func (r relaxer) run(nodes []*dag.Node) {
	n := len(nodes)
	if n == 0 {
		return
	}
	passes := 10 * n
	gravity := 0.1 / float64(passes)

	xs := make([]float64, n)
	forces := make([]float64, n)
	for pass := 0; pass < passes; pass++ {
		for i, node := range nodes {
			xs[i] = r.g.Pos(node).X
		}
		for i, node := range nodes {
			force := 0.0
			if i < n-1 {
				force += r.pressure(xs[i+1], xs[i])
			}
			if i > 0 {
				force += r.pressure(xs[i-1], xs[i])
			}
			for _, p := range r.g.Parents(node) {
				force += gravity * (r.g.Pos(p).X - xs[i])
			}
			for _, c := range node.Children() {
				force += gravity * (r.g.Pos(c).X - xs[i])
			}
			forces[i] = force
		}
		for i, node := range nodes {
			r.g.SetPos(node, xs[i]+forces[i], r.g.Pos(node).Y)
		}
	}
	r.enforce(nodes)
}

// pressure pushes x away from a neighbour closer than dx.
func (r relaxer) pressure(neighbour, x float64) float64 {
	diff := x - neighbour
	overlap := r.dx - math.Abs(diff)
	if overlap < 0 {
		return 0
	}
	if diff < 0 {
		return -overlap
	}
	return overlap
}

// enforce guarantees a gap of at least dx between list neighbours with a
// left-to-right sweep, then translates the row back to its previous mean.
func (r relaxer) enforce(nodes []*dag.Node) {
	before, after := 0.0, 0.0
	pos := math.Inf(-1)
	for _, node := range nodes {
		p := r.g.Pos(node)
		before += p.X
		pos += r.dx
		if p.X < pos {
			r.g.SetPos(node, pos, p.Y)
		} else {
			pos = p.X
		}
		after += pos
	}
	shift := (before - after) / float64(len(nodes))
	if shift == 0 {
		return
	}
	for _, node := range nodes {
		p := r.g.Pos(node)
		r.g.SetPos(node, p.X+shift, p.Y)
	}
}
