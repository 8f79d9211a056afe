// Package render turns laid-out family frames into images.
//
// The [nodelink] subpackage draws a frame as a Graphviz diagram with the
// layout engine's positions pinned. [ToPDF] and [ToPNG] convert the
// resulting SVG with the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(frame, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2)
//
// [nodelink]: github.com/matzehuels/familytree/pkg/render/nodelink
package render
