package router

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestComposeMiddlewareOrder(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return MiddlewareFunc(func(ctx context.Context, d *Dispatch, next func(context.Context) error) error {
			order = append(order, name+">")
			err := next(ctx)
			order = append(order, "<"+name)
			return err
		})
	}

	err := ComposeMiddleware(context.Background(), &Dispatch{}, []Middleware{mk("a"), mk("b")}, func(ctx context.Context) error {
		order = append(order, "h")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(order, " "); got != "a> b> h <b <a" {
		t.Errorf("order = %q", got)
	}
}

func TestComposeMiddlewareEmpty(t *testing.T) {
	called := false
	_ = ComposeMiddleware(context.Background(), &Dispatch{}, nil, func(ctx context.Context) error {
		called = true
		return nil
	})
	if !called {
		t.Error("handler not called")
	}
}

func TestBeforeStopsChain(t *testing.T) {
	stop := errors.New("blocked")
	called := false

	err := ComposeMiddleware(context.Background(), &Dispatch{},
		[]Middleware{Before(func(ctx context.Context, d *Dispatch) error { return stop })},
		func(ctx context.Context) error {
			called = true
			return nil
		})

	if err != stop || called {
		t.Errorf("err = %v, called = %v", err, called)
	}
}

func TestAfterSeesResult(t *testing.T) {
	want := errors.New("failed")
	var got error

	err := ComposeMiddleware(context.Background(), &Dispatch{},
		[]Middleware{After(func(ctx context.Context, d *Dispatch, err error) { got = err })},
		func(ctx context.Context) error { return want })

	if err != want || got != want {
		t.Errorf("err = %v, after saw %v", err, got)
	}
}

func TestChainAndOnly(t *testing.T) {
	var hits []string
	tag := func(name string) Middleware {
		return Before(func(ctx context.Context, d *Dispatch) error {
			hits = append(hits, name)
			return nil
		})
	}

	mw := Chain(tag("a"), Only(func(d *Dispatch) bool { return d.Default }, tag("default-only")))

	_ = ComposeMiddleware(context.Background(), &Dispatch{}, []Middleware{mw}, func(ctx context.Context) error { return nil })
	_ = ComposeMiddleware(context.Background(), &Dispatch{Default: true}, []Middleware{mw}, func(ctx context.Context) error { return nil })

	if got := strings.Join(hits, ","); got != "a,a,default-only" {
		t.Errorf("hits = %q", got)
	}
}
