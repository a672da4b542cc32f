package dev

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/erebus-go/erebus/pkg/live"
)

func TestWatcherReportsNewFiles(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "home.html"), []byte("<p>home</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Interval: 20 * time.Millisecond,
	})

	changes := make(chan Change, 10)
	watcher.OnChange(func(c Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)

	// Wait for the initial scan, which reports nothing.
	time.Sleep(60 * time.Millisecond)
	select {
	case c := <-changes:
		t.Fatalf("initial scan reported %+v", c)
	default:
	}

	styleFile := filepath.Join(tmpDir, "site.css")
	if err := os.WriteFile(styleFile, []byte("body{}"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case change := <-changes:
		if change.Type != ChangeStyle || change.Path != styleFile {
			t.Errorf("change = %+v", change)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}

	if err := os.Remove(styleFile); err != nil {
		t.Fatal(err)
	}
	select {
	case change := <-changes:
		if change.Path != styleFile {
			t.Errorf("delete change = %+v", change)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for delete")
	}
}

func TestWatcherStop(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{Paths: []string{t.TempDir()}, Interval: 10 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- watcher.Start(context.Background()) }()

	deadline := time.Now().Add(time.Second)
	for !watcher.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	watcher.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	if watcher.IsRunning() {
		t.Error("IsRunning should be false after Stop")
	}
}

func TestShouldIgnore(t *testing.T) {
	w := NewWatcher(WatcherConfig{Ignore: []string{".git", "*.swp", "drafts/old", "build/*.html"}})

	tests := []struct {
		path string
		want bool
	}{
		{"/site/.git/config", true},
		{"/site/fragments/home.html.swp", true},
		{"/site/drafts/old/a.html", true},
		{"build/a.html", true},
		{"/site/drafts/new/a.html", false},
		{"/site/fragments/home.html", false},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		path string
		want ChangeType
	}{
		{"fragments/home.html", ChangeFragment},
		{"fragments/menu.json", ChangeFragment},
		{"public/site.css", ChangeStyle},
		{"erebus.json", ChangeConfig},
		{"site/erebus.yaml", ChangeConfig},
		{"public/logo.png", ChangeAsset},
	}
	for _, tt := range tests {
		if got := classifyChange(tt.path); got != tt.want {
			t.Errorf("classifyChange(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

type fakeTarget struct {
	mu        sync.Mutex
	refreshes int
	messages  []live.Message
}

func (f *fakeTarget) Refresh() {
	f.mu.Lock()
	f.refreshes++
	f.mu.Unlock()
}

func (f *fakeTarget) Broadcast(msg live.Message) {
	f.mu.Lock()
	f.messages = append(f.messages, msg)
	f.mu.Unlock()
}

func TestReloader(t *testing.T) {
	target := &fakeTarget{}
	r := NewReloader(target, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var configPath string
	r.OnConfig = func(p string) { configPath = p }

	r.Handle(Change{Path: "fragments/a.html", Type: ChangeFragment})
	r.Handle(Change{Path: "public/site.css", Type: ChangeStyle})
	r.Handle(Change{Path: "erebus.json", Type: ChangeConfig})
	r.Handle(Change{Path: "public/logo.png", Type: ChangeAsset})

	if target.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", target.refreshes)
	}
	want := []live.MessageType{live.TypeCSS, live.TypeReload, live.TypeReload}
	if len(target.messages) != len(want) {
		t.Fatalf("messages = %+v", target.messages)
	}
	for i, typ := range want {
		if target.messages[i].Type != typ {
			t.Errorf("message %d = %q, want %q", i, target.messages[i].Type, typ)
		}
	}
	if target.messages[0].File != "public/site.css" {
		t.Errorf("css file = %q", target.messages[0].File)
	}
	if configPath != "erebus.json" {
		t.Errorf("OnConfig path = %q", configPath)
	}
}

func TestDiff(t *testing.T) {
	base := time.Unix(1700000000, 0)
	prev := snapshot{
		"a.html":   {mod: base, size: 10},
		"b.css":    {mod: base, size: 4},
		"gone.png": {mod: base, size: 1},
	}
	next := snapshot{
		"a.html":  {mod: base, size: 10},
		"b.css":   {mod: base.Add(time.Second), size: 4},
		"new.txt": {mod: base, size: 2},
	}

	got := make(map[string]ChangeType)
	for _, c := range diff(prev, next) {
		got[c.Path] = c.Type
	}
	want := map[string]ChangeType{
		"b.css":    ChangeStyle,
		"new.txt":  ChangeFragment,
		"gone.png": ChangeAsset,
	}
	if len(got) != len(want) {
		t.Fatalf("diff = %v, want %v", got, want)
	}
	for p, typ := range want {
		if got[p] != typ {
			t.Errorf("diff[%q] = %v, want %v", p, got[p], typ)
		}
	}
}

func TestChangeTypeString(t *testing.T) {
	if ChangeStyle.String() != "style" || ChangeType(42).String() != "asset" {
		t.Errorf("String() = %q, %q", ChangeStyle.String(), ChangeType(42).String())
	}
}
