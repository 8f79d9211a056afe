package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node id below each member label.
	Detailed bool
}

const (
	colorMale      = "#dbe9f6"
	colorFemale    = "#f6dbe6"
	colorUnknown   = "white"
	colorHighlight = "#d08c00"
)

// ToDOT converts a frame to Graphviz DOT with fixed node positions.
func ToDOT(f graph.Frame, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, fontname=\"Helvetica\", margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#888888\"];\n")
	buf.WriteString("\n")

	for _, n := range f.Nodes {
		attrs := []string{fmt.Sprintf("pos=%q", fmtPos(n.X, n.Y))}
		if n.IsUnion() {
			attrs = append(attrs, "shape=point", "width=0.08")
		} else {
			attrs = append(attrs, memberAttrs(n, n.ID == f.Focus, opts.Detailed)...)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range f.Links {
		fmt.Fprintf(&buf, "  %q -> %q;\n", l.Source, l.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtPos(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64) + "," + strconv.FormatFloat(0-y, 'f', 1, 64) + "!"
}

func fmtLabel(n graph.FrameNode, detailed bool) string {
	lines := []string{n.Name}
	if dates := lifeDates(n.BirthDate, n.DeathDate); dates != "" {
		lines = append(lines, dates)
	}
	if detailed {
		lines = append(lines, n.ID)
	}
	return strings.Join(lines, "\n")
}

// lifeDates formats "1900 - 1970", "* 1900" or "† 1970".
func lifeDates(birth, death string) string {
	switch {
	case birth != "" && death != "":
		return birth + " - " + death
	case birth != "":
		return "* " + birth
	case death != "":
		return "† " + death
	}
	return ""
}

func memberAttrs(n graph.FrameNode, focus, detailed bool) []string {
	fill := colorUnknown
	switch n.Gender {
	case family.Male:
		fill = colorMale
	case family.Female:
		fill = colorFemale
	}

	style := []string{"rounded", "filled"}
	if n.Spouse {
		style = append(style, "dashed")
	}
	if focus {
		style = append(style, "bold")
	}

	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("fillcolor=%q", fill),
		fmt.Sprintf("style=%q", strings.Join(style, ",")),
	}
	if n.Highlighted {
		attrs = append(attrs, fmt.Sprintf("color=%q", colorHighlight), "penwidth=3")
	}
	if focus {
		attrs = append(attrs, "fontname=\"Helvetica-Bold\"")
	}
	return attrs
}

// RenderSVG renders DOT produced by [ToDOT] to SVG with the neato engine,
// keeping pinned positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
