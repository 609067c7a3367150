// Package persist houses snapshot persistence for the stores. The Snapshotter
// contract is deliberately tiny (load a full snapshot, save a full snapshot)
// so an implementation can later swap in an embedded key-value log without
// changing any store logic. The JSONFile implementation writes the whole
// snapshot as one JSON object, replacing the file atomically so a crash never
// corrupts previously persisted state.
package persist
