package dom

import (
	"context"
	"html"

	errs "github.com/erebus-go/erebus/internal/errors"
)

// Body is the selector of the document body.
const Body = "body"

var (
	// ErrUnknownElementID is matched by errors for "#id" selectors with no element.
	ErrUnknownElementID = errs.New(errs.CodeUnknownElementID)

	// ErrUnknownSelector is matched by errors for selectors with no elements.
	ErrUnknownSelector = errs.New(errs.CodeUnknownSelector)

	// ErrDetached is returned once a document can no longer be written to.
	ErrDetached = errs.New(errs.CodeDetached)
)

// Target is a region of the document that receives content.
type Target interface {
	// Content replaces the children of the target with html.
	Content(ctx context.Context, html string) error
}

// TargetFunc is a function adapter for Target.
type TargetFunc func(ctx context.Context, html string) error

// Content implements Target.
func (f TargetFunc) Content(ctx context.Context, html string) error {
	return f(ctx, html)
}

// Document resolves selectors to targets.
type Document interface {
	Target(selector string) (Target, error)
}

// Loader fetches the fragment at url and commits it to target.
type Loader interface {
	Load(ctx context.Context, target Target, url string) error
}

// Fetcher retrieves the body of a URL as text.
type Fetcher interface {
	Text(ctx context.Context, url string) (string, error)
}

// SelectorError reports a selector that resolved to nothing. Its message
// is the code followed by the selector in brackets.
type SelectorError struct {
	Code     string
	Selector string
}

func (e *SelectorError) Error() string {
	return e.Code + "[" + e.Selector + "]"
}

// Unwrap returns the coded error so errors.Is matches the package sentinels.
func (e *SelectorError) Unwrap() error {
	return errs.New(e.Code).WithDetail(e.Selector)
}

// UnknownSelector returns the error for a selector that matched nothing.
func UnknownSelector(selector string) error {
	if len(selector) > 1 && selector[0] == '#' {
		return &SelectorError{Code: errs.CodeUnknownElementID, Selector: selector}
	}
	return &SelectorError{Code: errs.CodeUnknownSelector, Selector: selector}
}

// Badge returns the inline markup shown in place of content that failed to
// load or render.
func Badge(code string) string {
	return `<span class="erebus-error">` + html.EscapeString(code) + `</span>`
}

// FetchLoader loads fragments through a Fetcher.
type FetchLoader struct {
	fetcher Fetcher
}

// NewFetchLoader creates a Loader that reads fragments with f.
func NewFetchLoader(f Fetcher) *FetchLoader {
	return &FetchLoader{fetcher: f}
}

// Load fetches url and writes the response text into target. Nothing is
// written when the fetch fails.
func (l *FetchLoader) Load(ctx context.Context, target Target, url string) error {
	text, err := l.fetcher.Text(ctx, url)
	if err != nil {
		return err
	}
	return target.Content(ctx, text)
}
