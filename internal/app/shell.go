package app

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"strings"

	"github.com/erebus-go/erebus/pkg/live"
)

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main id="{{.MainID}}"></main>
<script src="{{.Client}}" data-endpoint="{{.Socket}}" defer></script>
</body>
</html>
`))

type shellData struct {
	Title  string
	MainID string
	Client string
	Socket string
}

// clientTag is injected into custom shells that do not load the client.
const clientTag = `<script src="` + live.ClientPath + `" data-endpoint="` + live.SocketPath + `" defer></script>`

// renderShell returns the page served at "/". A configured shell file is
// read on every request so edits show up without a restart.
func renderShell(title, target, shellPath string) ([]byte, error) {
	if shellPath != "" {
		data, err := os.ReadFile(shellPath)
		if err != nil {
			return nil, err
		}
		return injectClient(data), nil
	}

	if title == "" {
		title = "erebus"
	}
	var buf bytes.Buffer
	err := shellTemplate.Execute(&buf, shellData{
		Title:  title,
		MainID: mainID(target),
		Client: live.ClientPath,
		Socket: live.SocketPath,
	})
	return buf.Bytes(), err
}

// mainID is the id of the built-in content element: the default target
// when it is an id selector, else "main".
func mainID(target string) string {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "#") && len(target) > 1 && !strings.ContainsAny(target, " .[>:") {
		return target[1:]
	}
	return "main"
}

func injectClient(page []byte) []byte {
	if bytes.Contains(page, []byte(live.ClientPath)) {
		return page
	}
	if i := bytes.LastIndex(page, []byte("</body>")); i >= 0 {
		out := make([]byte, 0, len(page)+len(clientTag)+1)
		out = append(out, page[:i]...)
		out = append(out, clientTag...)
		out = append(out, '\n')
		return append(out, page[i:]...)
	}
	return append(append(page, '\n'), clientTag...)
}

func (a *App) serveShell(w http.ResponseWriter, r *http.Request) {
	cfg := a.config()
	page, err := renderShell(cfg.Name, cfg.Target, cfg.ShellPath())
	if err != nil {
		a.logger.Error("shell unavailable", "path", cfg.ShellPath(), "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(page)
}
