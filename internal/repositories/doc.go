// Package repositories provides the SQLite-backed local cache.
//
// The cache mirrors the remote store's tables (books, reading_progress,
// progress_history) so the CLI can work offline and tests can exercise the
// reconciliation core without a network. [ProgressRepository] implements the
// same operations the remote record-store client exposes for progress,
// including the one-row-per-day history constraint.
package repositories
