// Package view is the node tree the task list is rendered into. Hosts (the
// terminal UI, the HTTP drag endpoints) draw from it and deliver input events
// to it; handlers registered on items run synchronously inside Dispatch.
package view

import (
	"sort"

	"github.com/starford/tickoff/internal/models"
)

// Event names an input event delivered to an item.
type Event string

const (
	EventDragStart Event = "dragstart"
	EventDragEnter Event = "dragenter"
	EventDragLeave Event = "dragleave"
	EventDrop      Event = "drop"
	EventDragEnd   Event = "dragend"
)

// Control is one of the interactive children of an item.
type Control string

const (
	ControlCheckbox Control = "checkbox"
	ControlLabel    Control = "label"
	ControlUp       Control = "up"
	ControlDown     Control = "down"
	ControlDelete   Control = "delete"
)

// Controls lists an item's children in display order.
var Controls = []Control{ControlCheckbox, ControlLabel, ControlUp, ControlDown, ControlDelete}

// ClickEvent is the event fired when control is clicked.
func ClickEvent(c Control) Event {
	return Event("click:" + string(c))
}

// Item classes set by the drag machine.
const (
	ClassOption    = "option"
	ClassHighlight = "highlight"
)

// Handler reacts to an event on an item.
type Handler func(it *Item) error

// Item is the node for one task.
type Item struct {
	Label     string
	Checked   bool
	Draggable bool

	classes  map[string]struct{}
	inert    map[Control]struct{} // children not receiving pointer events
	handlers map[Event]Handler
}

func newItem(t models.Task) *Item {
	return &Item{
		Label:    t.Text,
		Checked:  t.Done,
		classes:  make(map[string]struct{}),
		inert:    make(map[Control]struct{}),
		handlers: make(map[Event]Handler),
	}
}

// On registers h for ev, replacing any previous handler.
func (it *Item) On(ev Event, h Handler) {
	it.handlers[ev] = h
}

// Handles reports whether a handler is registered for ev.
func (it *Item) Handles(ev Event) bool {
	_, ok := it.handlers[ev]
	return ok
}

// AddClass adds a class to the item.
func (it *Item) AddClass(c string) { it.classes[c] = struct{}{} }

// RemoveClass removes classes from the item.
func (it *Item) RemoveClass(cs ...string) {
	for _, c := range cs {
		delete(it.classes, c)
	}
}

// HasClass reports whether the item carries c.
func (it *Item) HasClass(c string) bool {
	_, ok := it.classes[c]
	return ok
}

// Classes returns the item's classes sorted.
func (it *Item) Classes() []string {
	out := make([]string, 0, len(it.classes))
	for c := range it.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// SetPointerEvents turns pointer interaction on every child on or off. While
// off, clicks land on the item itself.
func (it *Item) SetPointerEvents(enabled bool) {
	for _, c := range Controls {
		if enabled {
			delete(it.inert, c)
		} else {
			it.inert[c] = struct{}{}
		}
	}
}

// PointerEvents reports whether control c receives pointer events.
func (it *Item) PointerEvents(c Control) bool {
	_, off := it.inert[c]
	return !off
}
