package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/text", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<p>hello</p>")
	})
	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		io.WriteString(w, `{"name":"erebus","tags":["a","b"]}`)
	})
	mux.HandleFunc("/badjson", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"name":`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Token", r.Header.Get("X-Token"))
		w.Header().Set("X-Request", r.Header.Get("X-Request"))
		w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
		w.Write(body)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetText(t *testing.T) {
	srv := newTestServer(t)
	c := New()

	resp, err := c.Get(context.Background(), srv.URL+"/text")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("Status = %d", resp.Status)
	}
	if resp.Value != "<p>hello</p>" || resp.Text() != "<p>hello</p>" {
		t.Errorf("Value = %v", resp.Value)
	}
}

func TestGetJSONIsDecoded(t *testing.T) {
	srv := newTestServer(t)
	c := New()

	resp, err := c.Get(context.Background(), srv.URL+"/json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := map[string]any{"name": "erebus", "tags": []any{"a", "b"}}
	if diff := cmp.Diff(want, resp.Value); diff != "" {
		t.Errorf("Value mismatch (-want +got):\n%s", diff)
	}
}

func TestGetInvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	_, err := New().Get(context.Background(), srv.URL+"/badjson")
	if !errors.Is(err, ErrJSONParse) {
		t.Errorf("err = %v, want ErrJSONParse", err)
	}
}

func TestGetStatusError(t *testing.T) {
	srv := newTestServer(t)

	_, err := New().Get(context.Background(), srv.URL+"/missing")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Status != http.StatusNotFound || !strings.Contains(se.Body, "not here") {
		t.Errorf("StatusError = %+v", se)
	}
	if !errors.Is(err, ErrHTTPStatus) {
		t.Error("errors.Is(err, ErrHTTPStatus) = false")
	}
	if err.Error() != "erebus.http.error.404" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestGetNullURL(t *testing.T) {
	for _, u := range []string{"", "   "} {
		if _, err := New().Get(context.Background(), u); !errors.Is(err, ErrNullURL) {
			t.Errorf("Get(%q) err = %v, want ErrNullURL", u, err)
		}
	}
}

func TestGetConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New().Get(context.Background(), addr+"/x")
	if !errors.Is(err, ErrConnectionRefused) {
		t.Errorf("err = %v, want ErrConnectionRefused", err)
	}
}

func TestGetUnsupportedScheme(t *testing.T) {
	_, err := New().Get(context.Background(), "ftp://example.com/x")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("err = %v, want ErrUnsupportedScheme", err)
	}
	_, err = New().Get(context.Background(), "file:///x.html")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("file without root err = %v, want ErrUnsupportedScheme", err)
	}
}

func TestBaseURLResolvesRelative(t *testing.T) {
	srv := newTestServer(t)
	c := New(WithBaseURL(srv.URL + "/site/"))

	u, err := c.Resolve("../text")
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != srv.URL+"/text" {
		t.Errorf("Resolve = %s", u)
	}

	text, err := c.Text(context.Background(), "../text")
	if err != nil || text != "<p>hello</p>" {
		t.Errorf("Text = %q, %v", text, err)
	}
}

func TestHeadersAndMethods(t *testing.T) {
	srv := newTestServer(t)
	c := New(WithHeader("X-Token", "secret"))
	ctx := context.Background()

	resp, err := c.Post(ctx, srv.URL+"/echo", strings.NewReader("payload"), Header("X-Request", "1"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Header.Get("X-Method") != "POST" || resp.Header.Get("X-Token") != "secret" ||
		resp.Header.Get("X-Request") != "1" || resp.Text() != "payload" {
		t.Errorf("echo = %v %q", resp.Header, resp.Text())
	}

	resp, err = c.Put(ctx, srv.URL+"/echo", strings.NewReader("x"))
	if err != nil || resp.Header.Get("X-Method") != "PUT" {
		t.Errorf("Put = %v, %v", resp, err)
	}
	resp, err = c.Delete(ctx, srv.URL+"/echo")
	if err != nil || resp.Header.Get("X-Method") != "DELETE" {
		t.Errorf("Delete = %v, %v", resp, err)
	}

	resp, err = c.PostJSON(ctx, srv.URL+"/echo", map[string]int{"n": 1})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Header.Get("X-Content-Type") != "application/json" || resp.Text() != `{"n":1}` {
		t.Errorf("PostJSON echo = %q %q", resp.Header.Get("X-Content-Type"), resp.Text())
	}
}

func TestInterceptor(t *testing.T) {
	srv := newTestServer(t)
	c := New(WithInterceptor(func(v any, h http.Header) any {
		return strings.ToUpper(v.(string))
	}))

	resp, err := c.Get(context.Background(), srv.URL+"/text")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Value != "<P>HELLO</P>" {
		t.Errorf("Value = %v", resp.Value)
	}

	resp, err = c.Get(context.Background(), srv.URL+"/text", Intercept(func(v any, h http.Header) any { return nil }))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Value != "<p>hello</p>" {
		t.Errorf("nil interceptor result should keep value, got %v", resp.Value)
	}
}

func TestTimeout(t *testing.T) {
	srv := newTestServer(t)
	c := New(WithTimeout(20 * time.Millisecond))

	_, err := c.Get(context.Background(), srv.URL+"/slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestMaxBodySize(t *testing.T) {
	srv := newTestServer(t)
	resp, err := New(WithMaxBodySize(3)).Get(context.Background(), srv.URL+"/text")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text() != "<p>" {
		t.Errorf("Text = %q", resp.Text())
	}
}

func TestFileRoot(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "fragments"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fragments", "home.html"), []byte("<h1>home</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(WithFileRoot(dir), WithBaseURL("file:///"))

	text, err := c.Text(context.Background(), "./fragments/home.html")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "<h1>home</h1>" {
		t.Errorf("Text = %q", text)
	}

	_, err = c.Get(context.Background(), "fragments/none.html")
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusNotFound {
		t.Errorf("missing file err = %v", err)
	}
}
