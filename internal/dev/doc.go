// Package dev provides hot reload for the live server.
//
// This package implements:
//   - Polling file watching for fragments, styles and the site config
//   - Reloading of connected browsers when watched files change
//
// # Architecture
//
//   - Watcher: Monitors the file system for changes
//   - Reloader: Maps each change to the cheapest browser update
//
// A changed fragment re-dispatches the current hash of every session, so
// only the affected targets are re-rendered. A changed stylesheet reloads
// stylesheets in place. Anything else reloads the page.
//
// # Usage
//
//	w := dev.NewWatcher(dev.WatcherConfig{Paths: cfg.WatchPaths()})
//	w.OnChange(dev.NewReloader(liveServer, logger).Handle)
//	go w.Start(ctx)
//
// Hot reload can be disabled via erebus.json (dev.hotReload=false).
package dev
