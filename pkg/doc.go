// Package pkg provides the core libraries for familytree.
//
// # Overview
//
// Familytree turns a family spreadsheet into an interactive tree. Every row
// is a member; spouse rows hang off the member above them and couples meet
// in union nodes that their children descend from. Only part of a large
// family is shown at a time: the view starts at one member and grows as
// members are expanded.
//
// # Architecture
//
// The typical data flow:
//
//	Spreadsheet (CSV export or local file)
//	         ↓
//	    [sheet] package (rows → members, unions, links)
//	         ↓
//	    [dag] / [graph] packages (full graph, visibility flags)
//	         ↓
//	    [view] package (expand, collapse, focus, lineage)
//	         ↓
//	    [layout] package (generations, ordering, coordinates)
//	         ↓
//	    JSON frame, DOT, SVG, PNG, PDF
//
// # Quick Start
//
// Load a sheet, open the first generation and lay it out:
//
//	loader := sheet.NewLoader(nil, nil)
//	data, _ := loader.Load(ctx, "family.csv", false)
//
//	c, _ := view.New(data, view.Options{})
//	c.Draw(true, data.Start)
//	frame, _ := c.Expand("mem_2")
//
//	svg, _ := nodelink.RenderSVG(ctx, nodelink.ToDOT(frame, nodelink.Options{}))
//
// # Main Packages
//
// [family] - Members, unions, links and the persistent member fields.
//
// [sheet] - Spreadsheet rows to family data, including spouse rows and the
// download of published CSV exports.
//
// [dag] - The member/union graph with visibility state and crossing counts.
//
// [graph] - Graph views over family data and the serialized [graph.Frame].
//
// [layout] - Generation-based layout with relaxation of sibling groups.
//
// [lineage] - Full and patrilineal views.
//
// [view] - The view controller: expand, collapse to ancestors, connect to a
// member, shortest path, reload with restored visibility.
//
// [state] - Shareable view states keyed by persistent member ids.
//
// [editor] - Edits written back to the sheet, with a SQLite journal.
//
// [render] and [render/nodelink] - Graphviz output and SVG conversion.
//
// ## Infrastructure
//
// [pipeline] - Load, layout and render shared by the CLI and the server.
//
// [cache] - File, Redis and null caches for sheets, data and frames.
//
// [session] - View sessions in memory, files or Redis.
//
// [storage] - Archived view snapshots in memory or MongoDB.
//
// [httputil] - Cached, retrying HTTP client.
//
// [io] - JSON and YAML import and export of family data.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// [observability] - Hooks for load, layout, render and HTTP events.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/view/...     # Specific package
//	go test -run Example       # Examples only
//
// [family]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/family
// [sheet]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/sheet
// [dag]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/dag
// [graph]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/graph
// [graph.Frame]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/graph#Frame
// [layout]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/layout
// [lineage]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/lineage
// [view]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/view
// [state]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/state
// [editor]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/editor
// [render]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/session
// [storage]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/storage
// [httputil]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/httputil
// [io]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/io
// [errors]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/familytree/pkg/observability
package pkg
