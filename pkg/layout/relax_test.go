package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/familytree/pkg/dag"
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
)

func TestPressure(t *testing.T) {
	r := relaxer{dx: 80}
	tests := []struct {
		neighbour, x, want float64
	}{
		{0, 100, 0},
		{0, 80, 0},
		{0, 50, 30},
		{50, 0, -30},
		{10, 10, 80},
	}
	for _, tt := range tests {
		if got := r.pressure(tt.neighbour, tt.x); got != tt.want {
			t.Errorf("pressure(%v, %v) = %v, want %v", tt.neighbour, tt.x, got, tt.want)
		}
	}
}

func TestRelaxSeparatesOverlap(t *testing.T) {
	u := family.UnionID("mem_0", "")
	g, err := graph.New([]family.Link{
		{"mem_0", u},
		{u, "mem_1"},
		{u, "mem_2"},
		{u, "mem_3"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var row []*dag.Node
	for i, id := range []string{"mem_1", "mem_2", "mem_3"} {
		n, _ := g.Node(id)
		g.SetPos(n, float64(i)*10, 140)
		row = append(row, n)
	}
	root, _ := g.Node("mem_0")
	g.SetPos(root, 10, 0)
	un, _ := g.Node(u)
	g.SetPos(un, 10, 70)

	relaxer{g: g, dx: 80}.run(row)

	for i := 1; i < len(row); i++ {
		if gap := g.Pos(row[i]).X - g.Pos(row[i-1]).X; gap < 80-1e-9 {
			t.Errorf("gap %d = %v, want >= 80", i, gap)
		}
	}
	for _, n := range row {
		if g.Pos(n).Y != 140 {
			t.Errorf("%s: y changed to %v", n, g.Pos(n).Y)
		}
	}
	mid := (g.Pos(row[0]).X + g.Pos(row[2]).X) / 2
	if math.Abs(mid-g.Pos(row[1]).X) > 1e-6 {
		t.Errorf("row not evenly spread: %v %v %v", g.Pos(row[0]).X, g.Pos(row[1]).X, g.Pos(row[2]).X)
	}
}

func TestEnforceKeepsMean(t *testing.T) {
	g, _ := graph.New([]family.Link{{"mem_0", "u_mem_0_unknown"}, {"u_mem_0_unknown", "mem_1"}}, nil)
	a, _ := g.Node("mem_0")
	b, _ := g.Node("mem_1")
	g.SetPos(a, -10, 0)
	g.SetPos(b, 10, 0)

	relaxer{g: g, dx: 80}.enforce([]*dag.Node{a, b})

	if x := g.Pos(a).X; math.Abs(x+40) > 1e-9 {
		t.Errorf("a.x = %v, want -40", x)
	}
	if x := g.Pos(b).X; math.Abs(x-40) > 1e-9 {
		t.Errorf("b.x = %v, want 40", x)
	}
}
