// Package remote implements clients for the hosted backend platform.
//
// Two surfaces are consumed:
//
//   - [Client] : a record-oriented REST store (filtered select, insert,
//     update, upsert by composite key, delete), one HTTP round trip per
//     operation. The store's semantics are last-write-wins per key.
//   - [RealtimeClient] : a websocket change feed delivering INSERT, UPDATE
//     and DELETE notifications for rows matching a table + filter, with an
//     explicit subscription-status acknowledgment.
//
// Neither client retries or caches; callers treat the store as eventually
// consistent and reconcile via bulk loads.
package remote
