// Package view keeps the visible part of a family graph coherent across
// interactions.
//
// A [Controller] owns two graphs: the full graph built from the family
// data, which is never filtered, and the visible graph rebuilt from the
// links whose endpoints are both visible. Both share per-node
// [graph.State] values, so visibility flags, highlight flags and previous
// positions survive every rebuild.
//
// # Interactions
//
//   - [Controller.Expand] reveals a node's relationship set, or hides the
//     subtree below an already expanded node.
//   - [Controller.CollapseToAncestors] shows one node with its ancestors and
//     descendants only.
//   - [Controller.ConnectToNode] reveals a node and the ancestor chain up to
//     the visible part of the tree.
//   - [Controller.FindPath] reveals the shortest path between two members.
//   - [Controller.SetLineage] switches between the full tree and the
//     patrilineal filter, remembering what was open in the full tree.
//
// Every interaction ends in [Controller.Draw], which lays out the visible
// graph and returns a [graph.Frame].
//
// # Safety nets
//
// The view never goes blank: when no visible link remains, the controller
// falls back to the default view around the focus node. When the focus
// node itself is missing from the visible graph, the first visible node
// takes its place. Both cases are logged and reported to
// [observability.ViewHooks].
//
// # Concurrency
//
// A Controller serializes its operations with a mutex, so the HTTP server
// and the file watcher may share one. Frames returned to callers are
// snapshots and are safe to use after the lock is released.
package view
