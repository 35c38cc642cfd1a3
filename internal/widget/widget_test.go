package widget

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/tickoff/internal/apperr"
	"github.com/starford/tickoff/internal/drag"
	"github.com/starford/tickoff/internal/persist"
	"github.com/starford/tickoff/internal/storage"
	"github.com/starford/tickoff/internal/tasklist"
	"github.com/starford/tickoff/internal/view"
)

func newWidget(t *testing.T, store storage.Provider, labels ...string) *Widget {
	t.Helper()
	w := New(persist.New(store, nil), nil)
	if err := w.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, l := range labels {
		if err := w.Add(l); err != nil {
			t.Fatalf("Add(%q): %v", l, err)
		}
	}
	return w
}

func labels(w *Widget) string {
	var parts []string
	for _, it := range w.List().Items() {
		parts = append(parts, it.Label)
	}
	return strings.Join(parts, ",")
}

func TestAddControlEnablement(t *testing.T) {
	w := newWidget(t, storage.NewMemory())
	for _, in := range []string{"", "   ", "\t\n"} {
		w.SetInput(in)
		if w.AddEnabled() {
			t.Errorf("input %q should disable add", in)
		}
		if added, err := w.Submit(); added || err != nil {
			t.Errorf("submit %q = %v, %v", in, added, err)
		}
	}
	w.SetInput(" milk ")
	if !w.AddEnabled() {
		t.Fatal("non-blank input should enable add")
	}
	added, err := w.Submit()
	if !added || err != nil {
		t.Fatalf("submit = %v, %v", added, err)
	}
	if w.Input() != "" || w.AddEnabled() {
		t.Error("submit should clear and disable the control")
	}
	if got := w.Tasks()[0].Text; got != " milk " {
		t.Errorf("text = %q, stored verbatim expected", got)
	}
}

func TestAddBlankRejected(t *testing.T) {
	w := newWidget(t, storage.NewMemory())
	if err := w.Add("  "); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if w.Len() != 0 {
		t.Errorf("len = %d", w.Len())
	}
}

func TestAddInvalidUTF8Rejected(t *testing.T) {
	w := newWidget(t, storage.NewMemory())
	for _, in := range []string{"\xff", "milk \xc3"} {
		if err := w.Add(in); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("Add(%q) err = %v, want ErrInvalidInput", in, err)
		}
		w.SetInput(in)
		if w.AddEnabled() {
			t.Errorf("input %q should disable add", in)
		}
	}
	if w.Len() != 0 {
		t.Errorf("len = %d", w.Len())
	}
	if err := w.Add("café"); err != nil {
		t.Errorf("valid UTF-8 rejected: %v", err)
	}
}

func TestControlsRouteToController(t *testing.T) {
	w := newWidget(t, storage.NewMemory(), "A", "B", "C")

	if err := w.Check(1); err != nil {
		t.Fatal(err)
	}
	if !w.List().At(1).Checked || !w.Tasks()[1].Done {
		t.Error("check should reach both task and node")
	}
	if err := w.Move(2, tasklist.Up); err != nil {
		t.Fatal(err)
	}
	if got := labels(w); got != "A,C,B" {
		t.Errorf("after up = %s", got)
	}
	if !w.List().At(2).Checked {
		t.Error("checked state should travel with the node")
	}
	if err := w.Delete(0); err != nil {
		t.Fatal(err)
	}
	if got := labels(w); got != "C,B" {
		t.Errorf("after delete = %s", got)
	}
}

func TestOutOfRangeIsNotFound(t *testing.T) {
	w := newWidget(t, storage.NewMemory(), "A")
	for name, err := range map[string]error{
		"check":   w.Check(3),
		"delete":  w.Delete(-1),
		"move":    w.Move(1, tasklist.Down),
		"reorder": w.Reorder(0, 9),
		"fire":    w.Fire(2, view.EventDragStart),
	} {
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", name, err)
		}
	}
}

func TestReorderGesture(t *testing.T) {
	w := newWidget(t, storage.NewMemory(), "A", "B", "C", "D")
	if err := w.Reorder(0, 2); err != nil {
		t.Fatal(err)
	}
	if got := labels(w); got != "B,C,A,D" {
		t.Errorf("nodes = %s", got)
	}
	if w.Drag().State() != drag.Idle {
		t.Error("gesture should leave the machine idle")
	}
	for _, it := range w.List().Items() {
		if len(it.Classes()) != 0 {
			t.Errorf("leftover classes %v", it.Classes())
		}
	}
}

func TestControlsInertDuringDrag(t *testing.T) {
	w := newWidget(t, storage.NewMemory(), "A", "B")
	if err := w.Fire(0, view.EventDragStart); err != nil {
		t.Fatal(err)
	}
	if err := w.Delete(1); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("Delete during drag: err = %v, want ErrConflict", err)
	}
	if err := w.Check(0); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("Check during drag: err = %v, want ErrConflict", err)
	}
	if w.Len() != 2 || w.Tasks()[0].Done {
		t.Error("clicks should not reach an inert control")
	}
	w.EndDrag()
	if err := w.Delete(1); err != nil {
		t.Fatal(err)
	}
	if w.Len() != 1 {
		t.Error("delete should work after dragend")
	}
}

func TestLoadRehydratesAndAttaches(t *testing.T) {
	store := storage.NewMemory()
	_ = store.Set(persist.Key, `[{"text":"one","class":"task"},{"text":"two","class":"task done"},{"text":"three","class":"task"}]`)
	w := newWidget(t, store)
	if w.Len() != 3 || labels(w) != "one,two,three" {
		t.Fatalf("loaded %s", labels(w))
	}
	for i, it := range w.List().Items() {
		if it.Checked != (i == 1) {
			t.Errorf("item %d checked = %v", i, it.Checked)
		}
		if !it.Draggable || !it.Handles(view.EventDragStart) || !it.Handles(view.ClickEvent(view.ControlDelete)) {
			t.Errorf("item %d not wired", i)
		}
	}
	raw, _, _ := store.Get(persist.Key)
	if !strings.Contains(raw, `"two","class":"task done"`) {
		t.Errorf("load rewrote storage: %s", raw)
	}
}

func TestOnChangeListeners(t *testing.T) {
	w := newWidget(t, storage.NewMemory(), "A", "B")
	var ops []string
	w.OnChange(func(ch tasklist.Change) { ops = append(ops, ch.Op) })
	_ = w.Reorder(1, 0)
	_ = w.Check(0)
	if strings.Join(ops, ",") != "relocate,check" {
		t.Errorf("ops = %v", ops)
	}
}
