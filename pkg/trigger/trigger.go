// Package trigger invokes user supplied callbacks with failure containment.
//
// It is the single place where panics raised by route handlers, fragment
// resolvers and post-load handlers are intercepted. A failing callback is
// always logged before its failure is handed back to the caller, so nothing
// fails silently and nothing takes the host process down.
package trigger

import (
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"

	errs "github.com/erebus-go/erebus/internal/errors"
)

// ErrInvalidFunction is returned when the value to invoke is not a function
// or cannot accept the supplied arguments.
var ErrInvalidFunction = errs.New(errs.CodeInvalidFunction)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// PanicError carries a recovered panic value and the stack at the time of
// the panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (p *PanicError) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}

// Result is the outcome of an asynchronous invocation.
type Result struct {
	Value any
	Err   error
}

// Invoker calls functions and logs their failures to a logger.
type Invoker struct {
	logger *slog.Logger
}

// New creates an Invoker. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Invoker {
	return &Invoker{logger: logger}
}

func (i *Invoker) log() *slog.Logger {
	if i == nil || i.logger == nil {
		return slog.Default()
	}
	return i.logger
}

// Call invokes fn with args.
//
// A nil fn is a no-op returning (nil, nil). A value that is not a function,
// or whose parameters cannot take args, yields ErrInvalidFunction. A panic
// is recovered and returned as *PanicError; when fn's last result is a
// non-nil error it is returned unchanged. Both failures are logged first.
// The value returned is fn's first non-error result, if any.
func (i *Invoker) Call(fn any, args ...any) (result any, err error) {
	if fn == nil {
		return nil, nil
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, errs.New(errs.CodeInvalidFunction).WithDetail(v.Type().String())
	}
	if v.IsNil() {
		return nil, nil
	}

	in, err := buildArgs(v.Type(), args)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
			result = nil
			i.log().Error(errs.CodeFunctionError, "error", err, "stack", string(err.(*PanicError).Stack))
		}
	}()

	out := v.Call(in)
	result, err = splitResults(v.Type(), out)
	if err != nil {
		i.log().Error(errs.CodeFunctionError, "error", err)
	}
	return result, err
}

// Go is the asynchronous variant of Call. The returned channel receives
// exactly one Result and is then closed.
func (i *Invoker) Go(fn any, args ...any) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		v, err := i.Call(fn, args...)
		ch <- Result{Value: v, Err: err}
	}()
	return ch
}

// Protect runs fn, converting a panic into a *PanicError. Errors returned by
// fn are logged and passed through.
func (i *Invoker) Protect(fn func() error) (err error) {
	if fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			pe := &PanicError{Value: r, Stack: debug.Stack()}
			i.log().Error(errs.CodeFunctionError, "error", pe, "stack", string(pe.Stack))
			err = pe
		}
	}()
	if err = fn(); err != nil {
		i.log().Error(errs.CodeFunctionError, "error", err)
	}
	return err
}

func buildArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, errs.New(errs.CodeInvalidFunction).
				WithDetail(fmt.Sprintf("want at least %d arguments, got %d", n-1, len(args)))
		}
	} else if len(args) != n {
		return nil, errs.New(errs.CodeInvalidFunction).
			WithDetail(fmt.Sprintf("want %d arguments, got %d", n, len(args)))
	}

	in := make([]reflect.Value, len(args))
	for idx, arg := range args {
		var pt reflect.Type
		if ft.IsVariadic() && idx >= n-1 {
			pt = ft.In(n - 1).Elem()
		} else {
			pt = ft.In(idx)
		}
		if arg == nil {
			in[idx] = reflect.Zero(pt)
			continue
		}
		av := reflect.ValueOf(arg)
		switch {
		case av.Type().AssignableTo(pt):
		case av.Type().ConvertibleTo(pt):
			av = av.Convert(pt)
		default:
			return nil, errs.New(errs.CodeInvalidFunction).
				WithDetail(fmt.Sprintf("argument %d: %s is not assignable to %s", idx, av.Type(), pt))
		}
		in[idx] = av
	}
	return in, nil
}

func splitResults(ft reflect.Type, out []reflect.Value) (any, error) {
	var (
		result any
		found  bool
		err    error
	)
	for idx, o := range out {
		if idx == len(out)-1 && ft.Out(idx).Implements(errorType) {
			if !o.IsNil() {
				err = o.Interface().(error)
			}
			continue
		}
		if !found {
			result = o.Interface()
			found = true
		}
	}
	return result, err
}

var std = New(nil)

// Call invokes fn with the default invoker. See Invoker.Call.
func Call(fn any, args ...any) (any, error) {
	return std.Call(fn, args...)
}

// Go invokes fn asynchronously with the default invoker. See Invoker.Go.
func Go(fn any, args ...any) <-chan Result {
	return std.Go(fn, args...)
}

// Protect runs fn with the default invoker. See Invoker.Protect.
func Protect(fn func() error) error {
	return std.Protect(fn)
}
