// Package web implements an HTMX-based web application mirroring the TUI shelf.
//
// # HTMX Web Application Implementation Plan
//
// # Architecture
//
// The web app replicates the shelf and detail views of the TUI using
// server-side rendering with HTMX for dynamic updates. Each view corresponds
// to a template and handler:
//
//  1. Shelf: Server-rendered table of books with per-row progress bars
//  2. Book Detail: HTMX partial swap showing history chart + edit controls
//  3. Progress Edit: hx-post incrementing/decrementing pages read
//  4. Live Updates: SSE (Server-Sent Events) pushing progress changed by
//     other sessions, fed from the cross-tab broadcast channel
//
// Core Components
//
//   - HTTP Server: reuses server.BasicRouter and LoggingMiddleware
//   - Catalog Search: reuses server.CatalogProxy for /api/openlibrary/*
//   - Progress Integration: same store.Store and tracker.Reconciler as the TUI
//   - Session Management: cookie holding the auth access token
//   - SSE Handler: one broadcast.Handle per connected client
//
// Routes
//
//	GET  /                       → Shelf view (requires auth)
//	GET  /auth/login             → Sign-in form
//	POST /auth/login             → Password grant via services.AuthClient
//	GET  /books/{id}             → HTMX partial: detail view with chart
//	POST /books/{id}/progress    → Set pages read through the reconciler
//	GET  /events                 → SSE stream of progress updates
//	GET  /api/openlibrary/*      → Catalog rewrite proxy
//
// Templates
//
//   - base.html: Layout with navigation, auth status
//   - shelf.html: Table with hx-get on rows
//   - detail.html: Partial template for book detail
//   - chart.html: History bars rendered from formatter output
//
// # State Management
//
// Unlike the TUI's in-memory state, the web app persists state in:
//   - Session cookies: Access token, user ID
//   - The record store: progress and history rows as elsewhere
//   - In-memory handles: open SSE connections per client
//
// # Live Update Streaming
//
// Progress changes reach other clients over Server-Sent Events:
//  1. Client opens SSE connection to /events
//  2. Handler opens a broadcast.Handle on the sync channel
//  3. Incoming ProgressUpdate messages stream as SSE events
//  4. The client patches the matching row's progress bar in place
//
// Dependencies
//
//   - html/template: Server-side rendering
//   - net/http: HTTP server and SSE
//   - internal/server, internal/broadcast, internal/tracker: existing plumbing
//
// Implementation Tasks
//
//  1. HTTP server setup reusing the existing router
//  2. Template structure with HTMX integration
//  3. Cookie middleware for auth state
//  4. Shelf handler with backend integration
//  5. Detail handler (HTMX partial)
//  6. Progress handler writing through the reconciler
//  7. SSE handler bridging the broadcast channel
//  8. Error handling and validation
//
// # Testing Strategy
//
// Use httptest:
//   - Fake the book and progress backends
//   - Validate HTMX headers and response structure
//   - Test SSE stream formatting against broadcast messages
package web
