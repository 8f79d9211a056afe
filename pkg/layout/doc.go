// Package layout assigns coordinates to a family graph.
//
// # Algorithm
//
// [Run] works in four phases:
//
//  1. Generations: a frontier expansion from every root gives each node a
//     level (parents one up, children one down). Partners without parents
//     are spliced next to the partner they married.
//  2. Groups: every union contributes a partners group (its parents) and a
//     siblings group (its children).
//  3. Ages: members take the year of their birth date; unions the oldest
//     parent, else the mean of their children. Ages only break ties.
//  4. Coordinates: each generation is sorted and spaced three times
//     (align to parents, pull partners together, final spacing), centered
//     on x = 0, and finally relaxed.
//
// Members sit on even levels and unions between them, so member
// generations are DY apart:
//
//	y = level * DY / 2
//
// # Relaxation
//
// The relaxer pushes apart neighbours closer than DX and pulls nodes
// weakly toward their parents and children, then sweeps each row so that
// no two nodes end closer than DX.
//
// # Determinism
//
// All sorts use total orders (placed before unplaced, x, known age, age,
// id), so the same visible graph with the same prior positions always
// yields the same coordinates.
package layout
