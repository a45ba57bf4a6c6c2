// Package tasks implements long-running shelf operations.
//
// The core type is ExportEngine, which walks a user's shelf and writes each
// book's reading history to disk concurrently. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks
