// Package models defines domain entities for the BookMark reading tracker.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs shared between the
// remote record store, the local cache and the UI layers
//   - [Book] : A book on the user's shelf, owned by the remote store
//   - [CatalogResult] : A bibliographic candidate returned by catalog search
//   - [Profile] : User profile metadata (display name, avatar)
//
// 2. Progress records backing the synchronization core:
//   - [ProgressEntry] : Current pages-read for a (book, user) pair
//   - [ProgressHistoryRecord] : Day-maximum pages-read, one row per calendar day
//
// The remote record store is authoritative for all of these; local copies are
// transient caches refreshed by bulk loads and push notifications.
package models
