// Package testutil provides shared test helpers for building loaded widgets
// and host loops.
package testutil

import (
	"testing"

	"github.com/starford/tickoff/internal/host"
	"github.com/starford/tickoff/internal/persist"
	"github.com/starford/tickoff/internal/storage"
	"github.com/starford/tickoff/internal/widget"
)

// TestWidget creates a widget over an in-memory store, loaded and seeded with
// items in order.
func TestWidget(t *testing.T, items ...string) (*widget.Widget, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	w := widget.New(persist.New(store, nil), nil)
	if err := w.Load(); err != nil {
		t.Fatal(err)
	}
	for _, s := range items {
		if err := w.Add(s); err != nil {
			t.Fatal(err)
		}
	}
	return w, store
}

// TestLoop starts a host loop owning w that is closed when the test ends.
func TestLoop(t *testing.T, w *widget.Widget) *host.Loop {
	t.Helper()
	loop := host.NewLoop(w)
	t.Cleanup(loop.Close)
	return loop
}
