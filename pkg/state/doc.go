// Package state encodes a view (focus node, camera, lineage filter and
// visible members) into a short URL-safe string and back.
//
// Member ids like "mem_12" depend on sheet row order and change whenever a
// row is inserted, so encoded states refer to members by persistent ids
// built from their names and birth year (see [BuildIDMap]). Unions are not
// encoded: the view controller reconnects visible members when the state
// is restored.
//
// A [ShareStore] keeps encoded states under short-lived uuid share ids so
// long states can be passed around as links.
package state
