package errors

import (
	stderrors "errors"
	"strings"
)

// Category groups codes by the subsystem that raises them.
type Category string

const (
	CategoryConfig    Category = "config"
	CategoryRouting   Category = "routing"
	CategoryCallback  Category = "callback"
	CategoryTransport Category = "transport"
	CategoryElement   Category = "element"
	CategoryCLI       Category = "cli"
)

// Error is a failure identified by a stable dotted code such as
// "erebus.route.no_handler". Message comes from the registered template;
// Detail, Suggestion and Wrapped describe the particular occurrence.
type Error struct {
	Code       string
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	Wrapped    error
}

// Error renders "code: message: detail", omitting empty parts.
func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{e.Code, e.Message, e.Detail} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is matches any *Error carrying the same non-empty code, so a fresh error
// satisfies errors.Is against a package sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t != nil && e.Code != "" && t.Code == e.Code
}

// WithDetail sets Detail and returns e.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithSuggestion sets Suggestion and returns e.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap records cause as the underlying error and returns e.
func (e *Error) Wrap(cause error) *Error {
	e.Wrapped = cause
	return e
}

// New returns a fresh Error for code, filled from its registered template.
// Unregistered codes get the message "Unknown error".
func New(code string) *Error {
	t, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "Unknown error"}
	}
	return &Error{
		Code:     code,
		Category: t.Category,
		Message:  t.Message,
		Detail:   t.Detail,
	}
}

// FromError returns the first coded *Error in err's chain. Errors without
// one are wrapped in a new Error for code. A nil err yields nil.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) && e.Code != "" {
		return e
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first coded *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return ""
		}
		if e.Code != "" {
			return e.Code
		}
		err = e.Wrapped
	}
	return ""
}
