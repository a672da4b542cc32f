// Package middleware provides observability middleware for the router.
//
// This package includes:
//   - OpenTelemetry tracing of every dispatch
//   - Prometheus dispatch and session metrics
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware opens one span per dispatch, named after the
// selected route pattern:
//
//	engine := router.New(router.WithMiddleware(
//	    middleware.OpenTelemetry(
//	        middleware.WithTracerName("my-site"),
//	        middleware.WithDispatchFilter(func(d *router.Dispatch) bool {
//	            return !d.Default
//	        }),
//	    ),
//	))
//
// The span context is passed down to the handler, so outgoing fetches made
// with the handler's context join the trace.
//
// # Prometheus Metrics
//
//   - erebus_dispatches_total: dispatches by pattern and status
//   - erebus_dispatch_duration_seconds: dispatch duration histogram
//   - erebus_dispatch_errors_total: failures by pattern and error code
//   - erebus_active_sessions: connected live sessions
//
// Wire a collector into the engine:
//
//	metrics := middleware.NewCollector(middleware.WithRegistry(reg))
//	engine := router.New(router.WithMiddleware(metrics.Middleware()))
//
// Expose the registry with promhttp.HandlerFor.
package middleware
