package router

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"equal literal", "quickstart", "quickstart", true},
		{"empty root", "", "", true},
		{"wildcard pattern", "*", "any/thing/here", true},
		{"wildcard pattern empty path", "*", "", true},
		{"param segment", "api/:section", "api/docs", true},
		{"param any value", "api/:section", "api/123", true},
		{"wildcard segment", "files/*/raw", "files/a/raw", true},
		{"literal mismatch", "api/:section", "docs/intro", false},
		{"case sensitive", "Quickstart", "quickstart", false},
		{"path longer", "api/:section", "api/docs/extra", false},
		{"path shorter", "api/:section", "api", false},
		{"root vs other", "", "unknown/path", false},
		{"trailing empty segment", "api/:section", "api/", true},
		{"only params", ":a/:b", "x/y", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.pattern, tt.path); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

// Every literal segment of a matching pattern equals the path segment at
// the same index.
func TestMatchesLiteralSegmentsAgree(t *testing.T) {
	patterns := []string{"a/:x/c", "a/*/c", ":x/b/:y", "a/b/c"}
	paths := []string{"a/b/c", "a/z/c", "q/b/r", "a/b", "a/b/c/d", "x/y/z"}

	for _, p := range patterns {
		for _, path := range paths {
			if !Matches(p, path) {
				continue
			}
			ps, xs := splitForTest(p), splitForTest(path)
			if len(ps) != len(xs) {
				t.Fatalf("Matches(%q, %q) with different segment counts", p, path)
			}
			for i, seg := range ps {
				if seg == "*" || seg[0] == ':' {
					continue
				}
				if seg != xs[i] {
					t.Errorf("Matches(%q, %q) but segment %d differs", p, path, i)
				}
			}
		}
	}
}

func splitForTest(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func TestExtractParams(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    Params
	}{
		{"api/:section", "api/docs", Params{"section": "docs"}},
		{"samples/:section", "samples/intro", Params{"section": "intro"}},
		{":a/*/:b", "x/y/z", Params{"a": "x", "b": "z"}},
		{"quickstart", "quickstart", Params{}},
		{"api/:section/:page", "api/docs", Params{"section": "docs"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := ExtractParams(tt.pattern, tt.path)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractParams mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileNormalizes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", ""},
		{"#/api/:x", "api/:x"},
		{"quickstart", "quickstart"},
		{"*", "*"},
	}
	for _, tt := range tests {
		if got := Compile(tt.in).String(); got != tt.want {
			t.Errorf("Compile(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPatternRegexp(t *testing.T) {
	p := CompileRegexp(regexp.MustCompile(`^docs/(?P<topic>[a-z]+)$`))
	if !p.IsRegexp() {
		t.Fatal("expected regexp pattern")
	}
	if !p.Match("docs/router") {
		t.Error("expected match for docs/router")
	}
	if p.Match("docs/Router1") {
		t.Error("unexpected match for docs/Router1")
	}
	if diff := cmp.Diff(Params{"topic": "router"}, p.Params("docs/router")); diff != "" {
		t.Errorf("Params mismatch (-want +got):\n%s", diff)
	}
	if got := p.Params("other"); len(got) != 0 {
		t.Errorf("Params on non-match = %v, want empty", got)
	}
}

func TestZeroPatternNeverMatches(t *testing.T) {
	var p Pattern
	if p.Match("") || p.Match("x") {
		t.Error("zero Pattern matched")
	}
	if CompileRegexp(nil).Match("") {
		t.Error("nil regexp pattern matched")
	}
	if len(p.Params("x")) != 0 {
		t.Error("zero Pattern produced params")
	}
}
