package router

import "context"

// Handler serves a matched route. A handler that needs to wait for content
// blocks until it is done; its error settles the dispatch.
type Handler func(ctx context.Context, params Params) error

// HandlerFunc adapts a handler that ignores the context and cannot fail.
func HandlerFunc(fn func(params Params)) Handler {
	return func(_ context.Context, params Params) error {
		fn(params)
		return nil
	}
}

// Dispatch describes a single navigation being served.
type Dispatch struct {
	// Path is the normalized path being served.
	Path string

	// Pattern is the pattern of the selected route ("*" for the default).
	Pattern string

	// Params are the parameters extracted for the selected route.
	Params Params

	// Default is set when no registered route matched.
	Default bool
}

// Middleware wraps the execution of a selected route.
type Middleware interface {
	// Handle runs around next. Returning without calling next skips the
	// route handler; the returned error settles the dispatch.
	Handle(ctx context.Context, d *Dispatch, next func(context.Context) error) error
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(ctx context.Context, d *Dispatch, next func(context.Context) error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx context.Context, d *Dispatch, next func(context.Context) error) error {
	return f(ctx, d, next)
}

// Location is the source of navigation: the current hash fragment and the
// notifications fired when it changes.
type Location interface {
	// Hash returns the current fragment, with or without a leading "#".
	Hash() string

	// Subscribe registers fn to run with the new hash on every change. The
	// returned function removes the subscription.
	Subscribe(fn func(hash string)) (unsubscribe func())
}
