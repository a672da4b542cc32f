package router

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"sync"

	errs "github.com/erebus-go/erebus/internal/errors"
	"github.com/erebus-go/erebus/pkg/routepath"
	"github.com/erebus-go/erebus/pkg/trigger"
)

// Routing errors. Compare with errors.Is.
var (
	ErrNoHandler       = errs.New(errs.CodeNoHandler)
	ErrNoMatchingRoute = errs.New(errs.CodeNoMatch)
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLocation sets the navigation source. Default: a MemoryLocation at "".
func WithLocation(loc Location) Option {
	return func(e *Engine) {
		e.location = loc
	}
}

// WithMiddleware adds dispatch middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(e *Engine) {
		e.middleware = append(e.middleware, mw...)
	}
}

// WithSerializedDispatch makes every navigation cancel the context of the
// dispatch still in flight. Without it overlapping dispatches run to
// completion and the last write wins.
func WithSerializedDispatch() Option {
	return func(e *Engine) {
		e.serialize = true
	}
}

// Engine holds the ordered routes, the default route and the error
// callback, and drives dispatch from its Location once started.
type Engine struct {
	mu           sync.Mutex
	routes       []*Route
	defaultRoute *Route
	onError      func(error)
	middleware   []Middleware
	started      bool

	location  Location
	logger    *slog.Logger
	invoker   *trigger.Invoker
	serialize bool

	// navigation generation, used when serialize is set
	generation uint64
	cancel     context.CancelFunc

	inflight sync.WaitGroup
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.location == nil {
		e.location = NewMemoryLocation("")
	}
	e.invoker = trigger.New(e.logger)
	return e
}

// Location returns the engine's navigation source.
func (e *Engine) Location() Location {
	return e.location
}

// Register appends a route. Registration order is match priority.
func (e *Engine) Register(pattern string, handler Handler) *Engine {
	return e.add(Compile(pattern), handler)
}

// RegisterRegexp appends a route matched by a regular expression.
func (e *Engine) RegisterRegexp(re *regexp.Regexp, handler Handler) *Engine {
	if re == nil {
		e.logger.Warn(errs.CodeInvalidPattern, "detail", "nil regexp")
	}
	return e.add(CompileRegexp(re), handler)
}

// Handle appends a route for an already compiled pattern.
func (e *Engine) Handle(p Pattern, handler Handler) *Engine {
	return e.add(p, handler)
}

func (e *Engine) add(p Pattern, handler Handler) *Engine {
	route := newRoute(p, handler, e.logger)
	e.mu.Lock()
	e.routes = append(e.routes, route)
	e.mu.Unlock()
	return e
}

// Default sets the route served when nothing else matches.
func (e *Engine) Default(handler Handler) *Engine {
	route := newRoute(Compile(Wildcard), handler, e.logger)
	e.mu.Lock()
	e.defaultRoute = route
	e.mu.Unlock()
	return e
}

// Error sets the callback receiving failed navigations.
func (e *Engine) Error(fn func(err error)) *Engine {
	e.mu.Lock()
	e.onError = fn
	e.mu.Unlock()
	return e
}

// Use appends dispatch middleware.
func (e *Engine) Use(mw ...Middleware) *Engine {
	e.mu.Lock()
	e.middleware = append(e.middleware, mw...)
	e.mu.Unlock()
	return e
}

// Routes returns the registered patterns in priority order.
func (e *Engine) Routes() []Pattern {
	e.mu.Lock()
	defer e.mu.Unlock()
	patterns := make([]Pattern, len(e.routes))
	for i, r := range e.routes {
		patterns[i] = r.pattern
	}
	return patterns
}

// Resolve returns the route serving path: the first registered match, else
// the default route. The boolean reports whether the default was used.
func (e *Engine) Resolve(path string) (*Route, bool) {
	path = routepath.Normalize(path)

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range e.routes {
		if r.pattern.Match(path) {
			return r, false
		}
	}
	if e.defaultRoute != nil {
		return e.defaultRoute, true
	}
	return nil, false
}

// Serve dispatches path and blocks until its handler settles. It returns
// true on success. When no route and no default exist the error is
// ErrNoMatchingRoute; handler errors are returned as is.
func (e *Engine) Serve(ctx context.Context, path string) (bool, error) {
	path = routepath.Normalize(path)

	route, isDefault := e.Resolve(path)
	if route == nil {
		return false, errs.New(errs.CodeNoMatch).WithDetail("path " + strconv.Quote(path))
	}

	e.mu.Lock()
	mw := append([]Middleware(nil), e.middleware...)
	e.mu.Unlock()

	d := &Dispatch{
		Path:    path,
		Pattern: route.pattern.String(),
		Params:  route.pattern.Params(routepath.Normalize(path)),
		Default: isDefault,
	}
	err := ComposeMiddleware(ctx, d, mw, func(ctx context.Context) error {
		return route.Handle(ctx, path)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Started reports whether Start has run.
func (e *Engine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// Start subscribes to the Location and dispatches its current hash. A second
// call logs a warning and does nothing. ctx bounds the subscription and is
// the parent of every dispatch context.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		e.logger.Warn(errs.CodeAlreadyStarted)
		return
	}
	e.started = true
	e.mu.Unlock()

	unsubscribe := e.location.Subscribe(func(hash string) {
		e.goDispatch(ctx, hash)
	})
	context.AfterFunc(ctx, unsubscribe)

	e.goDispatch(ctx, e.location.Hash())
}

// Wait blocks until every dispatch started by the Location has settled.
func (e *Engine) Wait() {
	e.inflight.Wait()
}

func (e *Engine) goDispatch(ctx context.Context, hash string) {
	if ctx.Err() != nil {
		return
	}
	navCtx, done := e.navigationContext(ctx)
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		defer done()
		e.dispatch(navCtx, hash)
	}()
}

// navigationContext derives the context of one navigation. In serialized
// mode it cancels the previous navigation.
func (e *Engine) navigationContext(ctx context.Context) (context.Context, func()) {
	navCtx, cancel := context.WithCancel(ctx)
	if !e.serialize {
		return navCtx, cancel
	}

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.generation++
	gen := e.generation
	e.cancel = cancel
	e.mu.Unlock()

	return navCtx, func() {
		e.mu.Lock()
		if e.generation == gen {
			e.cancel = nil
		}
		e.mu.Unlock()
		cancel()
	}
}

// dispatch serves hash and contains every failure.
func (e *Engine) dispatch(ctx context.Context, hash string) {
	_, err := e.Serve(ctx, hash)
	if err == nil {
		return
	}
	if e.serialize && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		e.logger.Debug("navigation superseded", "path", routepath.Normalize(hash))
		return
	}

	e.logger.Error(errs.CodeRouterError, "path", routepath.Normalize(hash), "error", err)

	e.mu.Lock()
	onError := e.onError
	e.mu.Unlock()
	if onError != nil {
		_ = e.invoker.Protect(func() error {
			onError(err)
			return nil
		})
	}
}
