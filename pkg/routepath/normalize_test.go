package routepath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"#", ""},
		{"/", ""},
		{"#/", ""},
		{"#/api/docs", "api/docs"},
		{"#api", "api"},
		{"/quickstart", "quickstart"},
		{"##/x", "#/x"},
		{"//x", "/x"},
		{"#//x", "/x"},
		{"samples/intro", "samples/intro"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotentOnCleanPaths(t *testing.T) {
	for _, p := range []string{"", "a", "a/b", "api/:section"} {
		if got := Normalize(Normalize(p)); got != p {
			t.Errorf("Normalize twice on %q = %q", p, got)
		}
	}
}

func TestSplit(t *testing.T) {
	if diff := cmp.Diff([]string{""}, Split("")); diff != "" {
		t.Errorf("Split(\"\") mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"api", "docs"}, Split("api/docs")); diff != "" {
		t.Errorf("Split mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", ""}, Split("a/")); diff != "" {
		t.Errorf("Split trailing slash mismatch (-want +got):\n%s", diff)
	}
}

func TestFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/#/api/docs", "api/docs"},
		{"https://example.com/index.html#quickstart", "quickstart"},
		{"https://example.com/", ""},
		{"/page#/a/b", "a/b"},
	}
	for _, tt := range tests {
		got, err := FromURL(tt.in)
		if err != nil {
			t.Fatalf("FromURL(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("FromURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFromURLInvalid(t *testing.T) {
	if _, err := FromURL("http://[::1"); err == nil {
		t.Error("expected error for malformed URL")
	}
}

func TestJoin(t *testing.T) {
	if got := Join("api", "docs"); got != "#/api/docs" {
		t.Errorf("Join = %q", got)
	}
	if got := Normalize(Join("samples", "intro")); got != "samples/intro" {
		t.Errorf("Normalize(Join) = %q", got)
	}
}
