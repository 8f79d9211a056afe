// Package storage archives laid-out family snapshots.
//
// A [Snapshot] bundles the family data, the frame computed from it and the
// encoded view state that produced the frame. Snapshots are immutable once
// saved; the HTTP server archives one whenever a view is shared so that a
// link keeps rendering the tree as it looked at the time.
//
// Two backends implement [Archive]:
//
//   - [MongoArchive]: a MongoDB collection, for deployments
//   - [MemoryArchive]: an in-process map, for tests and single-user servers
package storage
