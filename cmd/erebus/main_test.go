package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erebus-go/erebus/internal/config"
	errs "github.com/erebus-go/erebus/internal/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMatchCommand(t *testing.T) {
	out, err := run(t, "match", "/users/:id", "#/users/42")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !strings.Contains(out, `match: "users/42" matches "users/:id"`) || !strings.Contains(out, `id = "42"`) {
		t.Errorf("output = %q", out)
	}
}

func TestMatchCommandRegexp(t *testing.T) {
	out, err := run(t, "match", "--regexp", `^v(?P<version>\d+)/`, "v2/intro")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !strings.Contains(out, `version = "2"`) {
		t.Errorf("output = %q", out)
	}
}

func TestMatchCommandNoMatch(t *testing.T) {
	out, err := run(t, "match", "/users/:id", "/users/42/edit")
	if !errors.Is(err, errs.New(errs.CodeNoMatch)) {
		t.Errorf("err = %v", err)
	}
	if !strings.HasPrefix(out, "no match") {
		t.Errorf("output = %q", out)
	}
}

func TestMatchCommandInvalidRegexp(t *testing.T) {
	_, err := run(t, "match", "--regexp", "(", "x")
	if !errors.Is(err, errs.New(errs.CodeInvalidPattern)) {
		t.Errorf("err = %v", err)
	}
}

func TestInitAndRoutes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "handbook")

	out, err := run(t, "init", dir, "--template", "docs", "--name", "Handbook")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Created docs site") {
		t.Errorf("init output = %q", out)
	}
	if !config.Exists(dir) {
		t.Fatal("no config written")
	}

	_, err = run(t, "init", dir)
	if !errors.Is(err, errs.New(errs.CodeDirExists)) {
		t.Errorf("second init err = %v", err)
	}

	out, err = run(t, "routes", "--dir", dir)
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	for _, want := range []string{"/docs/:page", "docs/{page}.html", "inline"} {
		if !strings.Contains(out, want) {
			t.Errorf("routes output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "routes", "--dir", dir, "--path", "#/docs/intro")
	if err != nil {
		t.Fatalf("routes --path: %v", err)
	}
	if !strings.HasPrefix(out, "/docs/:page") || !strings.Contains(out, `page = "intro"`) {
		t.Errorf("resolve output = %q", out)
	}

	out, err = run(t, "routes", "--dir", dir, "--path", "#/no/such/page")
	if err != nil {
		t.Fatalf("routes --path default: %v", err)
	}
	if !strings.HasPrefix(out, "*") {
		t.Errorf("default output = %q", out)
	}
}

func TestInitUnknownTemplate(t *testing.T) {
	_, err := run(t, "init", t.TempDir(), "--template", "blog")
	if !errors.Is(err, errs.New(errs.CodeTemplateNotFound)) {
		t.Errorf("err = %v", err)
	}
}

func TestLoadServeConfigFlags(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(`{"dev": {"port": 4000}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := serveCmd()
	if err := cmd.ParseFlags([]string{"--dir", dir, "--host", "0.0.0.0", "--hot-reload=false", "--metrics"}); err != nil {
		t.Fatal(err)
	}
	opts := serveOptions{dir: dir, host: "0.0.0.0", hotReload: false, metrics: true}
	cfg, err := loadServeConfig(cmd, opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dev.Port != 4000 {
		t.Errorf("port = %d, want value from config", cfg.Dev.Port)
	}
	if cfg.Dev.Host != "0.0.0.0" || cfg.Dev.HotReload || !cfg.Metrics.Enabled {
		t.Errorf("flags not applied: %+v %+v", cfg.Dev, cfg.Metrics)
	}
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("output = %q", out)
	}
}
