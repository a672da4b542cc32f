package templates

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/erebus-go/erebus/internal/errors"
)

// Config holds the values substituted into scaffold files.
type Config struct {
	// Name is the site name. Default: the base name of the target dir.
	Name string

	// Target is the default target selector. Default: "#main".
	Target string
}

// TargetID strips the "#" of an id selector target.
func (c Config) TargetID() string {
	return strings.TrimPrefix(c.Target, "#")
}

// Template is a site scaffold. Files maps slash separated paths to
// text/template sources executed with a Config.
type Template struct {
	Name        string
	Description string
	Files       map[string]string
}

// builtin is ordered by name.
var builtin = []*Template{
	docsTemplate(),
	minimalTemplate(),
}

// Get looks up a built-in template.
func Get(name string) (*Template, error) {
	i := slices.IndexFunc(builtin, func(t *Template) bool { return t.Name == name })
	if i < 0 {
		return nil, errors.New(errors.CodeTemplateNotFound).
			WithDetail(fmt.Sprintf("no template named %q", name)).
			WithSuggestion("Choose one of: " + strings.Join(List(), ", "))
	}
	return builtin[i], nil
}

// List returns the built-in template names in order.
func List() []string {
	names := make([]string, len(builtin))
	for i, t := range builtin {
		names[i] = t.Name
	}
	return names
}

// Create renders every file of t below dir, replacing existing files.
func (t *Template) Create(dir string, cfg Config) error {
	if cfg.Name == "" {
		cfg.Name = filepath.Base(dir)
	}
	if cfg.Target == "" {
		cfg.Target = "#main"
	}

	paths := make([]string, 0, len(t.Files))
	for rel := range t.Files {
		paths = append(paths, rel)
	}
	slices.Sort(paths)

	for _, rel := range paths {
		out, err := render(rel, t.Files[rel], cfg)
		if err != nil {
			return errors.New(errors.CodeTemplateInvalid).WithDetail(t.Name + ": " + rel).Wrap(err)
		}
		dst := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, out, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func render(name, src string, cfg Config) ([]byte, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, cfg)
	return buf.Bytes(), err
}

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "One route and one fragment",
		Files: map[string]string{
			"erebus.yaml": `name: {{.Name}}
target: "{{.Target}}"
routes:
  - pattern: /
    fragment: home.html
default:
  fragment: home.html
`,
			"fragments/home.html": `<h1>{{.Name}}</h1>
<p>Edit fragments/home.html and the page updates.</p>
`,
		},
	}
}

func docsTemplate() *Template {
	return &Template{
		Name:        "docs",
		Description: "Parameterized routes, a not found page, a custom shell and styles",
		Files: map[string]string{
			"erebus.yaml": `name: {{.Name}}
target: "{{.Target}}"
shell: index.html
routes:
  - pattern: /
    fragment: home.html
  - pattern: /docs/:page
    fragment: docs/{page}.html
  - pattern: ^v(?P<version>\d+)/(?P<page>[a-z-]+)$
    regexp: true
    fragment: v{version}/{page}.html
  - pattern: /menu
    fragment: menu.html
    target: nav
default:
  inline: <h1>Not found</h1>
fragments:
  dir: fragments
  timeout: 5s
router:
  serialize: true
dev:
  hotReload: true
`,
			"index.html": `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<link rel="stylesheet" href="/static/site.css">
</head>
<body>
<nav><a href="#/">Home</a> <a href="#/docs/intro">Intro</a> <a href="#/v2/changes">v2</a></nav>
<main id="{{.TargetID}}"></main>
</body>
</html>
`,
			"fragments/home.html": `<h1>{{.Name}}</h1>
<p>Start with the <a href="#/docs/intro">introduction</a>.</p>
`,
			"fragments/docs/intro.html": `<h1>Introduction</h1>
<p>Every page of this site is a fragment loaded into the main element.</p>
`,
			"fragments/v2/changes.html": `<h1>Changes in v2</h1>
`,
			"fragments/menu.html": `<a href="#/">Home</a> <a href="#/docs/intro">Intro</a>
`,
			"public/site.css": `body { font-family: system-ui, sans-serif; max-width: 800px; margin: 0 auto; padding: 2rem; }
nav a { margin-right: 1rem; }
.erebus-error { color: #b91c1c; font-family: monospace; }
`,
		},
	}
}
