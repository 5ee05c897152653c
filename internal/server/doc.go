// Package server provides HTTP routing, middleware, and the dashboard API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally, so route
// patterns may carry method prefixes and path wildcards.
//
// # Dashboard API
//
// [APIHandler] serves the JSON API consumed by the embedded web dashboard:
// portfolio valuation, the agent's thought feed, trade history, watchlist,
// market overview, settings, and agent control (trigger/reset).
//
// Real-time updates use Server-Sent Events: /api/stream polls the thought
// feed and pushes new entries as they appear, using each thought's sequence
// number as the event id so clients can resume.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
