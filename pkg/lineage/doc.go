// Package lineage filters family data down to a single line of descent.
//
// The only filter today is [Patrilineal]: the father-to-son line from the
// oldest non-spouse member, their children (daughters included) and the
// spouses of everyone shown. Filtered data shares member pointers with its
// input, so edits made on either are visible in both.
//
// [Mode] names the active filter and is what the view controller, the URL
// state and the CLI flags carry around.
package lineage
