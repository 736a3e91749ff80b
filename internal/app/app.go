// Package app assembles the application: configuration in, a wired
// question-answering service and its dependencies out.
package app

import (
	"log/slog"

	"github.com/docuchat/docuchat/internal/config"
	"github.com/docuchat/docuchat/internal/embedding"
	"github.com/docuchat/docuchat/internal/qa"
	"github.com/docuchat/docuchat/internal/session"
	"github.com/docuchat/docuchat/internal/vectorindex"
)

// App holds the wired application components.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Embedder embedding.Embedder
	Index    *vectorindex.Index
	Sessions *session.Store
	Service  *qa.Service

	otelShutdown func()
}

// Close releases resources held by the application. Safe to call on a
// partially initialized App.
func (a *App) Close() error {
	if a.otelShutdown != nil {
		a.otelShutdown()
		a.otelShutdown = nil
	}
	return nil
}
