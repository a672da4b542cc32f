package dev

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeType tells the reloader how a changed file affects open pages.
type ChangeType int

const (
	ChangeFragment ChangeType = iota
	ChangeStyle
	ChangeConfig
	ChangeAsset
)

var changeNames = [...]string{
	ChangeFragment: "fragment",
	ChangeStyle:    "style",
	ChangeConfig:   "config",
	ChangeAsset:    "asset",
}

func (t ChangeType) String() string {
	if t >= 0 && int(t) < len(changeNames) {
		return changeNames[t]
	}
	return "asset"
}

// Change is one file that appeared, changed or disappeared between scans.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// Paths are the files and directories to poll.
	Paths []string

	// Ignore holds base names, path segments or globs to skip.
	Ignore []string

	// Interval between two scans. Defaults to 200ms.
	Interval time.Duration
}

// DefaultIgnore is used when WatcherConfig.Ignore is empty.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

const defaultInterval = 200 * time.Millisecond

// stamp identifies one version of a file.
type stamp struct {
	mod  time.Time
	size int64
}

func (s stamp) same(o stamp) bool { return s.size == o.size && s.mod.Equal(o.mod) }

// snapshot maps watched file paths to their last seen stamp.
type snapshot map[string]stamp

// Watcher polls the site tree and reports changed files. Each tick walks
// every watched path.
type Watcher struct {
	paths    []string
	rules    []ignoreRule
	interval time.Duration

	mu       sync.Mutex
	onChange func(Change)
	last     snapshot
	stop     chan struct{}
}

// NewWatcher creates a Watcher. It does nothing until Start is called.
func NewWatcher(cfg WatcherConfig) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	ignore := cfg.Ignore
	if len(ignore) == 0 {
		ignore = DefaultIgnore
	}
	return &Watcher{
		paths:    cfg.Paths,
		rules:    compileIgnore(ignore),
		interval: cfg.Interval,
	}
}

// OnChange sets the function called for reported changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// Start polls until ctx is done or Stop is called; both return nil.
// Files present at the first scan form the baseline and are not reported.
// Calling Start on a running watcher returns immediately.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stop != nil {
		w.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	w.stop = stop
	w.last = w.walk()
	w.mu.Unlock()

	timer := time.NewTimer(w.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.release(stop)
			return nil
		case <-stop:
			return nil
		case <-timer.C:
			w.poll()
			timer.Reset(w.interval)
		}
	}
}

// Stop ends a running Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
	}
}

// release clears the running state if stop is still the active channel.
func (w *Watcher) release(stop chan struct{}) {
	w.mu.Lock()
	if w.stop == stop {
		w.stop = nil
	}
	w.mu.Unlock()
}

// IsRunning reports whether Start is polling.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stop != nil
}

func (w *Watcher) poll() {
	next := w.walk()

	w.mu.Lock()
	changes := diff(w.last, next)
	w.last = next
	fn := w.onChange
	w.mu.Unlock()

	if fn == nil {
		return
	}
	// A burst of edits of one kind triggers one reload.
	var sent [len(changeNames)]bool
	for _, c := range changes {
		if !sent[c.Type] {
			sent[c.Type] = true
			fn(c)
		}
	}
}

func (w *Watcher) walk() snapshot {
	snap := make(snapshot)
	for _, root := range w.paths {
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if p != root && w.shouldIgnore(p) {
					return fs.SkipDir
				}
				return nil
			}
			if w.shouldIgnore(p) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			snap[p] = stamp{mod: info.ModTime(), size: info.Size()}
			return nil
		})
	}
	return snap
}

// diff lists files added, modified or removed from prev to next.
func diff(prev, next snapshot) []Change {
	var changes []Change
	for p, s := range next {
		if old, ok := prev[p]; !ok || !old.same(s) {
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
	}
	for p := range prev {
		if _, ok := next[p]; !ok {
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
	}
	return changes
}

type ruleKind int

const (
	ruleSegment  ruleKind = iota // matches any path segment
	ruleNameGlob                 // glob against the base name
	rulePathGlob                 // glob against the slash path
	ruleSubpath                  // consecutive segments anywhere in the path
)

type ignoreRule struct {
	kind    ruleKind
	pattern string
}

func compileIgnore(patterns []string) []ignoreRule {
	rules := make([]ignoreRule, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		glob := strings.ContainsAny(p, "*?[")
		nested := strings.Contains(p, "/")
		switch {
		case glob && nested:
			rules = append(rules, ignoreRule{rulePathGlob, p})
		case glob:
			rules = append(rules, ignoreRule{ruleNameGlob, p})
		case nested:
			rules = append(rules, ignoreRule{ruleSubpath, "/" + strings.Trim(p, "/") + "/"})
		default:
			rules = append(rules, ignoreRule{ruleSegment, p})
		}
	}
	return rules
}

func (r ignoreRule) match(slashed, name string) bool {
	switch r.kind {
	case rulePathGlob:
		ok, _ := path.Match(r.pattern, slashed)
		return ok
	case ruleNameGlob:
		ok, _ := path.Match(r.pattern, name)
		return ok
	case ruleSubpath:
		return strings.Contains("/"+slashed+"/", r.pattern)
	default:
		for _, seg := range strings.Split(slashed, "/") {
			if seg == r.pattern {
				return true
			}
		}
		return false
	}
}

func (w *Watcher) shouldIgnore(p string) bool {
	slashed := filepath.ToSlash(p)
	name := path.Base(slashed)
	for _, r := range w.rules {
		if r.match(slashed, name) {
			return true
		}
	}
	return false
}

// classifyChange maps a file to the kind of browser update it needs.
func classifyChange(p string) ChangeType {
	name := strings.ToLower(filepath.Base(p))
	switch name {
	case "erebus.json", "erebus.yaml", "erebus.yml":
		return ChangeConfig
	}
	switch path.Ext(name) {
	case ".html", ".htm", ".md", ".txt", ".json":
		return ChangeFragment
	case ".css":
		return ChangeStyle
	}
	return ChangeAsset
}
