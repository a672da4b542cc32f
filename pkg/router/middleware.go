package router

import "context"

// ComposeMiddleware builds a handler chain from middleware and a final handler.
// Middleware is executed in order (first to last), with the handler at the end.
func ComposeMiddleware(ctx context.Context, d *Dispatch, mw []Middleware, handler func(context.Context) error) error {
	if len(mw) == 0 {
		return handler(ctx)
	}

	chain := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func(ctx context.Context) error {
			return m.Handle(ctx, d, next)
		}
	}

	return chain(ctx)
}

// Chain creates a middleware that combines multiple middleware in order.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, d *Dispatch, next func(context.Context) error) error {
		return ComposeMiddleware(ctx, d, middleware, next)
	})
}

// Before runs fn ahead of the route handler. An error from fn skips the
// handler and settles the dispatch.
func Before(fn func(ctx context.Context, d *Dispatch) error) Middleware {
	return MiddlewareFunc(func(ctx context.Context, d *Dispatch, next func(context.Context) error) error {
		if err := fn(ctx, d); err != nil {
			return err
		}
		return next(ctx)
	})
}

// After runs fn once the route handler has settled, with its result.
func After(fn func(ctx context.Context, d *Dispatch, err error)) Middleware {
	return MiddlewareFunc(func(ctx context.Context, d *Dispatch, next func(context.Context) error) error {
		err := next(ctx)
		fn(ctx, d, err)
		return err
	})
}

// Only runs mw when condition holds for the dispatch.
func Only(condition func(d *Dispatch) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, d *Dispatch, next func(context.Context) error) error {
		if !condition(d) {
			return next(ctx)
		}
		return mw.Handle(ctx, d, next)
	})
}
