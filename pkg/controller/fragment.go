package controller

import (
	"context"

	"github.com/erebus-go/erebus/pkg/router"
)

// Fragment is the content source of a controller. It is one of URL,
// Inline, Content or Resolver.
type Fragment interface {
	fragment()
}

// URL is fetched and injected through the configured Loader.
type URL string

// Inline is injected as is.
type Inline string

// Content produces the content to inject. It is waited on; no fetch is
// made.
type Content func(ctx context.Context) (string, error)

// Resolver picks the fragment from the route parameters. It may return
// a URL, Inline or Content; a nil or nested Resolver is invalid.
type Resolver func(ctx context.Context, params router.Params) (Fragment, error)

func (URL) fragment()      {}
func (Inline) fragment()   {}
func (Content) fragment()  {}
func (Resolver) fragment() {}
