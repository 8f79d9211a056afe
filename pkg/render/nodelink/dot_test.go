package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
)

func testFrame() graph.Frame {
	return graph.Frame{
		Focus: "mem_0",
		Nodes: []graph.FrameNode{
			{ID: "mem_0", Kind: graph.KindMember, X: 0, Y: 0, Name: "Ali Yılmaz", BirthDate: "1900", DeathDate: "1970", Gender: family.Male},
			{ID: "mem_1", Kind: graph.KindMember, X: 80, Y: 0, Name: "Fatma", Gender: family.Female, Spouse: true},
			{ID: "u_mem_0_mem_1", Kind: graph.KindUnion, X: 40, Y: 70},
			{ID: "mem_2", Kind: graph.KindMember, X: 40, Y: 140, Name: "Kemal", BirthDate: "1925", Highlighted: true},
		},
		Links: []graph.FrameLink{
			{Source: "mem_0", Target: "u_mem_0_mem_1"},
			{Source: "mem_1", Target: "u_mem_0_mem_1"},
			{Source: "u_mem_0_mem_1", Target: "mem_2"},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testFrame(), Options{})

	checks := []struct {
		name string
		want string
	}{
		{"pinned position", `"mem_2" [pos="40.0,-140.0!"`},
		{"union point", `"u_mem_0_mem_1" [pos="40.0,-70.0!", shape=point`},
		{"label with dates", `label="Ali Yılmaz\n1900 - 1970"`},
		{"birth only", `label="Kemal\n* 1925"`},
		{"focus bold", `style="rounded,filled,bold"`},
		{"spouse dashed", `style="rounded,filled,dashed"`},
		{"highlight", `penwidth=3`},
		{"link", `"u_mem_0_mem_1" -> "mem_2";`},
	}
	for _, c := range checks {
		if !strings.Contains(dot, c.want) {
			t.Errorf("%s: DOT missing %q\n%s", c.name, c.want, dot)
		}
	}
	if strings.Contains(dot, `\nmem_`) {
		t.Error("ids should only appear in labels with Detailed")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testFrame(), Options{Detailed: true})
	if !strings.Contains(dot, `label="Fatma\nmem_1"`) {
		t.Errorf("detailed label missing id:\n%s", dot)
	}
}

func TestLifeDates(t *testing.T) {
	tests := []struct {
		birth, death, want string
	}{
		{"1900", "1970", "1900 - 1970"},
		{"1900", "", "* 1900"},
		{"", "1970", "† 1970"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := lifeDates(tt.birth, tt.death); got != tt.want {
			t.Errorf("lifeDates(%q, %q) = %q, want %q", tt.birth, tt.death, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox should pass through, got %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testFrame(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("output is not SVG: %.200s", svg)
	}
	if !strings.Contains(string(svg), "Kemal") {
		t.Error("SVG should contain member labels")
	}
}
