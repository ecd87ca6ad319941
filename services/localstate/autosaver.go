package localstate

import (
	"context"
	"log/slog"
	"time"

	"nodeflow/services/editor"
)

// DocInfo supplies the current document name and id at save time, since both
// can change while the autosaver runs.
type DocInfo func() (name, id string)

// Autosaver periodically persists the live graph when the adapter reports
// unsaved changes. The adapter's dirty flag is its only trigger: the
// autosaver decides when to persist, never whether there is something worth
// persisting.
type Autosaver struct {
	adapter  *editor.Adapter
	store    *Store
	interval time.Duration
	info     DocInfo
	onError  func(error)
}

// NewAutosaver creates an autosaver. onError receives write failures, which
// are reported but never block editing; nil means log-only.
func NewAutosaver(adapter *editor.Adapter, store *Store, interval time.Duration, info DocInfo, onError func(error)) *Autosaver {
	if onError == nil {
		onError = func(err error) {}
	}
	return &Autosaver{adapter: adapter, store: store, interval: interval, info: info, onError: onError}
}

// Run ticks until the context is cancelled, writing an autosave record on
// every tick that finds the adapter dirty.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Tick()
		}
	}
}

// Tick performs one autosave pass. Exposed for tests and for forced saves.
func (a *Autosaver) Tick() {
	if !a.adapter.Dirty() {
		return
	}

	name, id := a.info()
	doc := a.adapter.Serialize(name, id)
	if err := a.store.SaveAutosave(doc, name); err != nil {
		slog.Error("Autosave failed", "error", err)
		a.onError(err)
		return
	}
	a.adapter.ClearDirty()
	slog.Debug("Autosaved document", "id", id, "nodes", len(doc.Nodes), "edges", len(doc.Edges))
}
