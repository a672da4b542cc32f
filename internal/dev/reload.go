package dev

import (
	"log/slog"

	"github.com/erebus-go/erebus/pkg/live"
)

// Target is what a Reloader updates; *live.Server implements it.
type Target interface {
	Refresh()
	Broadcast(msg live.Message)
}

// Reloader turns file changes into browser updates.
type Reloader struct {
	target Target
	logger *slog.Logger

	// OnConfig runs when the site config changes, before pages reload.
	OnConfig func(path string)
}

// NewReloader creates a Reloader for target.
func NewReloader(target Target, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader{target: target, logger: logger}
}

// Handle applies one change.
func (r *Reloader) Handle(c Change) {
	r.logger.Info("file changed", "path", c.Path, "type", c.Type.String())

	switch c.Type {
	case ChangeFragment:
		r.target.Refresh()
	case ChangeStyle:
		r.target.Broadcast(live.Message{Type: live.TypeCSS, File: c.Path})
	case ChangeConfig:
		if r.OnConfig != nil {
			r.OnConfig(c.Path)
		}
		r.target.Broadcast(live.Message{Type: live.TypeReload})
	default:
		r.target.Broadcast(live.Message{Type: live.TypeReload})
	}
}
