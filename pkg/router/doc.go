// Package router implements hash-fragment routing.
//
// The router provides:
//   - Route patterns with literal, :param and * segments, or a regexp
//   - First-match resolution in registration order with a default route
//   - A start-once engine driven by a Location's hash change notifications
//   - Dispatch middleware and typed parameter decoding
//
// # Patterns
//
// Patterns are normalized at registration (one leading "#" and one leading
// "/" are dropped) and split on "/":
//
//	quickstart        → matches "quickstart" only
//	api/:section      → matches "api/docs", Params{"section": "docs"}
//	files/*/raw       → matches "files/a/raw", "files/b/raw"
//	*                 → matches everything
//
// A path matches a segment pattern only when both have the same number of
// segments.
//
// # Usage
//
//	r := router.New(router.WithLocation(loc))
//	r.Register("/", home).
//	    Register("api/:section", docs).
//	    Default(notFound).
//	    Error(func(err error) { log.Println(err) })
//	r.Start(ctx)
//
// Handlers block until their content is committed. Errors returned by a
// handler propagate out of Serve; dispatches triggered by the Location are
// logged and forwarded to the error callback instead.
package router
