package router

import (
	"context"
	"log/slog"
	"regexp"
	"runtime/debug"
	"strconv"

	errs "github.com/erebus-go/erebus/internal/errors"
	"github.com/erebus-go/erebus/pkg/routepath"
	"github.com/erebus-go/erebus/pkg/trigger"
)

// Route binds a pattern to a handler. Routes are immutable.
type Route struct {
	pattern Pattern
	handler Handler
	logger  *slog.Logger
}

// NewRoute creates a route for a segment pattern.
func NewRoute(pattern string, handler Handler) *Route {
	return newRoute(Compile(pattern), handler, nil)
}

// NewRegexpRoute creates a route for a regular expression.
func NewRegexpRoute(re *regexp.Regexp, handler Handler) *Route {
	return newRoute(CompileRegexp(re), handler, nil)
}

func newRoute(p Pattern, handler Handler, logger *slog.Logger) *Route {
	if logger == nil {
		logger = slog.Default()
	}
	return &Route{pattern: p, handler: handler, logger: logger}
}

// Pattern returns the compiled pattern.
func (r *Route) Pattern() Pattern {
	return r.pattern
}

// Match reports whether the route serves path.
func (r *Route) Match(path string) bool {
	return r.pattern.Match(routepath.Normalize(path))
}

// Handle runs the handler for path.
//
// A route without a handler fails with ErrNoHandler. A panicking handler is
// recovered and its failure returned as *trigger.PanicError; a returned
// error is passed through unchanged.
func (r *Route) Handle(ctx context.Context, path string) (err error) {
	path = routepath.Normalize(path)
	if r.handler == nil {
		r.logger.Error(errs.CodeNoHandler, "pattern", r.pattern.String(), "path", path)
		return errs.New(errs.CodeNoHandler).WithDetail("pattern " + strconv.Quote(r.pattern.String()))
	}

	params := r.pattern.Params(path)

	defer func() {
		if rec := recover(); rec != nil {
			pe := &trigger.PanicError{Value: rec, Stack: debug.Stack()}
			r.logger.Error(errs.CodeHandlerFailed,
				"pattern", r.pattern.String(),
				"path", path,
				"error", pe,
				"stack", string(pe.Stack))
			err = pe
		}
	}()

	return r.handler(ctx, params)
}
