package templates

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erebus-go/erebus/internal/config"
	errs "github.com/erebus-go/erebus/internal/errors"
)

func TestGet(t *testing.T) {
	for _, name := range []string{"minimal", "docs"} {
		tmpl, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if tmpl.Name != name {
			t.Errorf("Name = %q, want %q", tmpl.Name, name)
		}
	}

	_, err := Get("nonexistent")
	if !errors.Is(err, errs.New(errs.CodeTemplateNotFound)) {
		t.Errorf("err = %v", err)
	}
}

func TestList(t *testing.T) {
	if diff := cmp.Diff([]string{"docs", "minimal"}, List()); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

// Every template must produce a site that loads and validates.
func TestCreateProducesValidSite(t *testing.T) {
	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tmpl, _ := Get(name)
			if err := tmpl.Create(dir, Config{Name: "Handbook"}); err != nil {
				t.Fatalf("Create: %v", err)
			}

			cfg, err := config.Load(dir)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if cfg.Name != "Handbook" || cfg.Target != "#main" {
				t.Errorf("name, target = %q, %q", cfg.Name, cfg.Target)
			}

			home, err := os.ReadFile(filepath.Join(cfg.FragmentsPath(), "home.html"))
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(home), "<h1>Handbook</h1>") {
				t.Errorf("home.html = %q", home)
			}
		})
	}
}

func TestDocsTemplateRoutes(t *testing.T) {
	dir := t.TempDir()
	tmpl, _ := Get("docs")
	if err := tmpl.Create(dir, Config{Name: "Docs", Target: "#content"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	versioned, err := cfg.Routes[2].Compile()
	if err != nil {
		t.Fatal(err)
	}
	if !versioned.Match("v2/changes") {
		t.Error("versioned route does not match v2/changes")
	}
	if got := versioned.Params("v2/changes"); got["version"] != "2" || got["page"] != "changes" {
		t.Errorf("params = %v", got)
	}

	shell, err := os.ReadFile(cfg.ShellPath())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(shell), `<main id="content">`) {
		t.Errorf("shell = %s", shell)
	}
}
