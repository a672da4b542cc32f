package dom

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryDocumentTarget(t *testing.T) {
	doc := NewMemoryDocument([]string{"main", "#side"})
	ctx := context.Background()

	tests := []struct {
		selector string
		wantErr  error
		wantMsg  string
	}{
		{selector: "body"},
		{selector: " body "},
		{selector: "#main"},
		{selector: "#side"},
		{selector: "#missing", wantErr: ErrUnknownElementID, wantMsg: "erebus.element.unknown_element_id[#missing]"},
		{selector: ".card", wantErr: ErrUnknownSelector, wantMsg: "erebus.element.unknown_selector[.card]"},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			target, err := doc.Target(tt.selector)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if err.Error() != tt.wantMsg {
					t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Target(%q): %v", tt.selector, err)
			}
			if err := target.Content(ctx, "<p>"+tt.selector+"</p>"); err != nil {
				t.Fatalf("Content: %v", err)
			}
		})
	}

	main, _ := doc.Element("main")
	if main.HTML() != "<p>#main</p>" {
		t.Errorf("main = %q", main.HTML())
	}
	if doc.Body().HTML() != "<p> body </p>" || doc.Body().Writes() != 2 {
		t.Errorf("body = %q (%d writes)", doc.Body().HTML(), doc.Body().Writes())
	}
}

func TestMemoryDocumentRegisteredSelector(t *testing.T) {
	doc := NewMemoryDocument(nil)
	a, b := doc.Add("a"), doc.Add("b")
	doc.Register(".card", a, b)

	target, err := doc.Target(".card")
	if err != nil {
		t.Fatal(err)
	}
	if err := target.Content(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if a.HTML() != "x" || b.HTML() != "x" {
		t.Errorf("a=%q b=%q", a.HTML(), b.HTML())
	}

	if doc.Add("#a") != a {
		t.Error("Add should return the existing element")
	}
}

func TestMemoryElementCanceledContext(t *testing.T) {
	doc := NewMemoryDocument([]string{"main"})
	el, _ := doc.Element("main")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := el.Content(ctx, "late"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if el.Writes() != 0 {
		t.Error("canceled write should not commit")
	}
}

func TestMemoryDocumentDetach(t *testing.T) {
	doc := NewMemoryDocument(nil)
	doc.Detach()
	if err := doc.Body().Content(context.Background(), "x"); !errors.Is(err, ErrDetached) {
		t.Errorf("err = %v, want ErrDetached", err)
	}
}

func TestOnContent(t *testing.T) {
	var seen []string
	doc := NewMemoryDocument([]string{"main"}, OnContent(func(el *MemoryElement, html string) {
		seen = append(seen, el.ID()+"="+html)
	}))
	target, _ := doc.Target("#main")
	target.Content(context.Background(), "one")
	doc.Body().Content(context.Background(), "two")

	if len(seen) != 2 || seen[0] != "main=one" || seen[1] != "=two" {
		t.Errorf("seen = %q", seen)
	}
}

func TestBadge(t *testing.T) {
	if got := Badge("erebus.http.connection_refused"); got != `<span class="erebus-error">erebus.http.connection_refused</span>` {
		t.Errorf("Badge = %q", got)
	}
	if got := Badge(`<x>`); got != `<span class="erebus-error">&lt;x&gt;</span>` {
		t.Errorf("Badge escapes = %q", got)
	}
}

type fakeFetcher struct {
	text string
	err  error
	urls []string
}

func (f *fakeFetcher) Text(ctx context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.text, f.err
}

func TestFetchLoader(t *testing.T) {
	doc := NewMemoryDocument(nil)
	f := &fakeFetcher{text: "<h1>home</h1>"}

	if err := NewFetchLoader(f).Load(context.Background(), doc.Body(), "./home.html"); err != nil {
		t.Fatal(err)
	}
	if doc.Body().HTML() != "<h1>home</h1>" || f.urls[0] != "./home.html" {
		t.Errorf("body = %q, urls = %q", doc.Body().HTML(), f.urls)
	}

	boom := errors.New("boom")
	f.err = boom
	if err := NewFetchLoader(f).Load(context.Background(), doc.Body(), "./x.html"); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if doc.Body().Writes() != 1 {
		t.Error("failed load should not write")
	}
}

func TestTargetFunc(t *testing.T) {
	var got string
	var target Target = TargetFunc(func(ctx context.Context, html string) error {
		got = html
		return nil
	})
	target.Content(context.Background(), "x")
	if got != "x" {
		t.Errorf("got %q", got)
	}
}
