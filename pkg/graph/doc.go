// Package graph attaches family data and view state to a [dag.Dag] and
// defines the Frame serialization format.
//
// # FamilyGraph
//
// A [FamilyGraph] pairs each node with:
//
//   - the [family.Member] payload (member nodes only)
//   - a [State] overlay: visibility, highlight, previous coordinates, age
//   - a [Position] written by the layout engine
//
// The full graph of a family and every visible subgraph derived from it are
// separate FamilyGraphs. [FamilyGraph.TransferFrom] moves positions across
// and makes matching nodes share one State, so a freshly rebuilt visible
// graph inherits visibility and coordinates without recomputing them.
//
// # Field Access
//
// Member attributes are read through [family.Field] aliases so English and
// German exports work alike:
//
//	g.Name(n)      // "?" when missing
//	g.BirthDate(n) // "?" when missing
//	g.DeathDate(n) // "" when missing
//
// # Frames
//
// [Frame] is the wire format of a laid-out graph, used for JSON output,
// API responses and the snapshot archive (bson tags):
//
//	frame := g.Frame("mem_0", true)
//	graph.WriteFrame(frame, os.Stdout)
package graph
