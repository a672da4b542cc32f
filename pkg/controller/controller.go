// Package controller binds declarative fragment specs to route handlers.
//
// A controller loads a fragment into a target of the document and then runs
// an optional handler:
//
//	f := controller.New(controller.Config{Document: doc, DefaultTarget: "#main"})
//	engine.Register("/users/:id", f.Controller(controller.Spec{
//	    Fragment: controller.URL("/fragments/user.html"),
//	    Handler:  bindUserForm,
//	}))
//
// Configuration and transport failures never escape a controller: they are
// rendered as an inline badge in the target. Only handler failures are
// returned, as ErrHandler.
package controller

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	errs "github.com/erebus-go/erebus/internal/errors"
	"github.com/erebus-go/erebus/pkg/dom"
	"github.com/erebus-go/erebus/pkg/fetch"
	"github.com/erebus-go/erebus/pkg/router"
	"github.com/erebus-go/erebus/pkg/trigger"
)

var (
	// ErrHandler is returned when a fragment resolver or post-load handler
	// fails. The original failure is only logged, with the correlation code
	// carried in the error detail.
	ErrHandler = errs.New(errs.CodeControllerHandler)

	// ErrNoDocument is returned by controllers of a Factory with no Document.
	ErrNoDocument = errs.New(errs.CodeDetached)
)

// Spec declares a controller.
type Spec struct {
	// Fragment is the content source. A nil Fragment renders a badge.
	Fragment Fragment

	// Target is the selector receiving the content. Empty uses the
	// factory's default target.
	Target string

	// Handler runs after the content is committed.
	Handler router.Handler
}

// Config configures a Factory.
type Config struct {
	// DefaultTarget is used by specs without a target. Empty means "body".
	DefaultTarget string

	// Document resolves targets.
	Document dom.Document

	// Loader loads URL fragments. Defaults to a FetchLoader over a plain
	// fetch client.
	Loader dom.Loader

	Logger *slog.Logger
}

// Factory builds controllers sharing one configuration.
type Factory struct {
	mu            sync.RWMutex
	defaultTarget string

	doc     dom.Document
	loader  dom.Loader
	logger  *slog.Logger
	invoker *trigger.Invoker
}

// New creates a Factory.
func New(cfg Config) *Factory {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loader := cfg.Loader
	if loader == nil {
		loader = dom.NewFetchLoader(fetch.New(fetch.WithLogger(logger)))
	}
	return &Factory{
		defaultTarget: cfg.DefaultTarget,
		doc:           cfg.Document,
		loader:        loader,
		logger:        logger,
		invoker:       trigger.New(logger),
	}
}

// SetTarget changes the default target of controllers built by f. It
// applies to invocations that start after the call.
func (f *Factory) SetTarget(selector string) {
	f.mu.Lock()
	f.defaultTarget = selector
	f.mu.Unlock()
}

// DefaultTarget returns the current default target.
func (f *Factory) DefaultTarget() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.defaultTarget
}

func (f *Factory) target(spec string) string {
	if s := strings.TrimSpace(spec); s != "" {
		return s
	}
	if s := strings.TrimSpace(f.DefaultTarget()); s != "" {
		return s
	}
	return dom.Body
}

// Controller returns a route handler serving spec.
func (f *Factory) Controller(spec Spec) router.Handler {
	return func(ctx context.Context, params router.Params) error {
		if f.doc == nil {
			return ErrNoDocument
		}
		selector := f.target(spec.Target)
		target, err := f.doc.Target(selector)
		if err != nil {
			f.logger.Error("target not found", "target", selector, "error", err)
			return err
		}

		if spec.Fragment == nil {
			f.logger.Error(errs.CodeMissingFragment, "target", selector)
			return f.badge(ctx, target, errs.CodeMissingFragment)
		}

		frag := spec.Fragment
		if r, ok := frag.(Resolver); ok {
			if r == nil {
				return f.badge(ctx, target, errs.CodeInvalidFragment)
			}
			var resolved Fragment
			err := f.invoker.Protect(func() error {
				var err error
				resolved, err = r(ctx, params)
				return err
			})
			if err != nil {
				f.badge(ctx, target, errs.CodeControllerHandler)
				return f.handlerError(err)
			}
			frag = resolved
		}

		if err := f.commit(ctx, target, frag); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Error(errs.CodeFragmentLoad, "target", selector, "error", err)
			return f.badge(ctx, target, badgeCode(err))
		}

		if spec.Handler == nil {
			return nil
		}
		if err := f.invoker.Protect(func() error { return spec.Handler(ctx, params) }); err != nil {
			return f.handlerError(err)
		}
		return nil
	}
}

// commit writes frag into target.
func (f *Factory) commit(ctx context.Context, target dom.Target, frag Fragment) error {
	switch fr := frag.(type) {
	case URL:
		if strings.TrimSpace(string(fr)) == "" {
			return fetch.ErrNullURL
		}
		return f.loader.Load(ctx, target, string(fr))
	case Inline:
		return target.Content(ctx, string(fr))
	case Content:
		if fr == nil {
			return errs.New(errs.CodeInvalidFragment)
		}
		var html string
		err := f.invoker.Protect(func() error {
			var err error
			html, err = fr(ctx)
			return err
		})
		if err != nil {
			return err
		}
		return target.Content(ctx, html)
	default:
		return errs.New(errs.CodeInvalidFragment).WithDetail(fmt.Sprintf("%T", frag))
	}
}

// badge renders the error badge for code. Failing to render it is only
// logged.
func (f *Factory) badge(ctx context.Context, target dom.Target, code string) error {
	if err := target.Content(ctx, dom.Badge(code)); err != nil {
		f.logger.Warn("error badge not rendered", "code", code, "error", err)
	}
	return nil
}

func (f *Factory) handlerError(err error) error {
	correlation := newCorrelation()
	f.logger.Error(errs.CodeControllerHandler, "correlation", correlation, "error", err)
	return errs.New(errs.CodeControllerHandler).WithDetail("correlation " + correlation)
}

func badgeCode(err error) string {
	var status *fetch.StatusError
	if errors.As(err, &status) {
		return status.Error()
	}
	if code := errs.CodeOf(err); code != "" {
		return code
	}
	return errs.CodeFragmentLoad
}

func newCorrelation() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

var (
	stdMu sync.RWMutex
	std   = New(Config{})
)

// Default returns the package-level Factory.
func Default() *Factory {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std
}

// SetDefault replaces the package-level Factory.
func SetDefault(f *Factory) {
	stdMu.Lock()
	std = f
	stdMu.Unlock()
}

// SetTarget sets the default target of the package-level Factory.
func SetTarget(selector string) {
	Default().SetTarget(selector)
}

// Controller builds a controller on the package-level Factory.
func Controller(spec Spec) router.Handler {
	return Default().Controller(spec)
}
