// Package server provides HTTP routing, middleware, and the catalog rewrite proxy.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Catalog Proxy
//
// [CatalogProxy] forwards /api/openlibrary/* requests to the Open Library
// origin, stripping the local prefix. Browsing clients can then query the
// catalog without violating same-origin restrictions, and other consumers get
// a single local endpoint to rate limit and log.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
