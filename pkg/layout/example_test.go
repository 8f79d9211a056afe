package layout_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/layout"
	"github.com/matzehuels/familytree/pkg/sheet"
)

func ExampleRun() {
	data, _ := sheet.Build(context.Background(), [][]string{
		{"1", "Ahmet", "Yılmaz"},
		{"2", "Mehmet", "Yılmaz"},
		{"3", "Ayşe", "Yılmaz"},
	}, sheet.Options{})
	g, _ := graph.FromData(data)

	res := layout.Run(g, layout.Options{DX: 80, DY: 140})
	for _, row := range res.Rows {
		for _, n := range row {
			if n.IsMember() {
				p := g.Pos(n)
				fmt.Printf("%s %.0f %.0f\n", g.Name(n), p.X, p.Y)
			}
		}
	}
	fmt.Println("crossings:", res.Crossings)
	// Output:
	// Ahmet Yılmaz 0 0
	// Mehmet Yılmaz 0 140
	// Ayşe Yılmaz 0 280
	// crossings: 0
}
