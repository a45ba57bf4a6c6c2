// Package tracker implements the progress synchronization core.
//
// Three writers feed one per-tab [store.Store]: direct user edits (applied
// through [Tracker.UpdateProgress]), sibling tabs (applied by
// [CrossTabAdapter] from broadcast messages), and the remote store (applied
// by [Reconciler.LoadAll] bulk loads). The remote store is authoritative
// between sessions; within a session optimistic local state wins and is
// reconciled on the next bulk load.
//
// [BookFeed] handles the parallel, simpler reconciliation of book metadata
// from the realtime change feed.
package tracker
