// Package dag provides the bipartite directed graph underlying a family
// tree.
//
// # Overview
//
// A family tree is stored as two kinds of vertices: members (people) and
// unions (couples). Parents link to their union and the union links to each
// child, so every edge joins a member and a union:
//
//	mem_0 ─┐
//	       ├─> u_mem_0_mem_1 ─> mem_2
//	mem_1 ─┘
//
// [New] rejects empty link lists ([ErrNoLinks]) and member-member or
// union-union links ([ErrInvalidLink]). The node kind is a type-level
// property ([Kind]) fixed at construction.
//
// # Relations
//
// [Dag.Parents], [Dag.FirstLevel] and [Dag.SecondLevel] are computed once
// per Dag on first use. Second-level adjacency implements "reveal one more
// ring": for a member it reaches partners and siblings through the union
// between them.
//
// # Edge Crossings
//
// [CountCrossings] reports how many links cross between consecutive rows of
// a laid-out graph. The layout engine exposes it as a quality statistic.
//
// # Concurrency
//
// A Dag is structurally immutable, but relation caches are filled lazily,
// so concurrent readers must synchronize.
package dag
