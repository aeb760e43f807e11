// Package server provides HTTP routing, middleware, and request handlers for the analysis web service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally, relying on its
// method patterns for method filtering.
//
// # Endpoints
//
// [SearchHandler] serves GET /search, proxying track search to the configured
// catalog provider and returning a list of tracks.
//
// [AnalyzeHandler] serves POST /analyze, running the cache-first analysis
// pipeline through [tasks.AnalysisEngine]. Generation and video lookup
// failures degrade the response body rather than failing the request.
//
// [HealthHandler] serves GET /health for liveness checks.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Lifecycle
//
// [Server] wraps [net/http.Server] with context-driven graceful shutdown so the
// serve command can tie the listener's lifetime to SIGINT/SIGTERM.
package server
