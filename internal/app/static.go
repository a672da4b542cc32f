package app

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const (
	cacheDev       = "no-store, no-cache, must-revalidate"
	cacheImmutable = "public, max-age=31536000, immutable"
	cacheDefault   = "public, max-age=3600, must-revalidate"
)

// staticRelPath maps a request path below prefix to a slash separated path
// inside the static directory. Empty, absolute, dotted and backslash paths
// are rejected.
func staticRelPath(prefix, urlPath string) (string, bool) {
	rel, found := strings.CutPrefix(urlPath, strings.TrimSuffix(prefix, "/")+"/")
	if !found || strings.ContainsAny(rel, "\\\x00") || !fs.ValidPath(rel) || rel == "." {
		return "", false
	}
	return rel, true
}

// staticHandler serves the files of a directory below a URL prefix.
type staticHandler struct {
	prefix string
	files  http.FileSystem
	dev    bool
}

func newStaticHandler(dir, prefix string, dev bool) *staticHandler {
	return &staticHandler{prefix: prefix, files: http.FS(os.DirFS(dir)), dev: dev}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel, ok := staticRelPath(h.prefix, r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	f, err := h.files.Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", h.cacheControl(rel))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *staticHandler) cacheControl(rel string) string {
	if h.dev {
		return cacheDev
	}
	if isFingerprinted(rel) {
		return cacheImmutable
	}
	return cacheDefault
}

// isFingerprinted reports whether the name carries a hex content hash of at
// least 8 digits before its extension, as in "site.a1b2c3d4.css".
func isFingerprinted(rel string) bool {
	base := path.Base(rel)
	stem := strings.TrimSuffix(base, path.Ext(base))
	dot := strings.LastIndexByte(stem, '.')
	if dot < 0 {
		return false
	}
	hash := stem[dot+1:]
	return len(hash) >= 8 && strings.Trim(hash, "0123456789abcdefABCDEF") == ""
}
