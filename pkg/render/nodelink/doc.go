// Package nodelink renders family frames as node-link diagrams.
//
// # Overview
//
// A frame produced by the view controller already carries final x/y
// coordinates, so [ToDOT] pins every node with pos="x,y!" and [RenderSVG]
// runs Graphviz's neato engine, which keeps pinned positions instead of
// computing its own layout.
//
// # Appearance
//
//   - Members are rounded boxes labelled with the name and life dates,
//     tinted by gender. Spouse rows have a dashed outline.
//   - Unions are small points joining parents to children.
//   - The focus node is drawn bold.
//   - Highlighted nodes (those with hidden relatives) get a thick amber
//     border marking them as expandable.
//
// Frame y grows downward while Graphviz y grows upward, so y is negated.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion lives in package render and requires
// librsvg (rsvg-convert).
package nodelink
