// Package drag implements drag-and-drop reordering of list items.
//
// The machine holds one piece of state, the item being dragged. Positions are
// resolved by scanning the live node order when the drop arrives; nothing is
// cached between events.
package drag

import (
	"log/slog"

	"github.com/starford/tickoff/internal/view"
)

// Reorderer moves a task so that it ends at position to.
type Reorderer interface {
	Relocate(from, to int) (bool, error)
}

// State is the machine state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Machine tracks one drag gesture at a time over a view.List.
type Machine struct {
	list   *view.List
	tasks  Reorderer
	logger *slog.Logger
	source *view.Item
}

// New returns an idle machine. Call Attach once the list has been rendered.
func New(list *view.List, tasks Reorderer, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{list: list, tasks: tasks, logger: logger}
}

// Attach registers drag handlers on every item currently in the list. It must
// run again whenever the list is re-rendered. A drag whose source item is no
// longer in the list is abandoned.
func (m *Machine) Attach() {
	if m.source != nil && m.list.IndexOf(m.source) < 0 {
		m.source = nil
	}
	for _, it := range m.list.Items() {
		it.Draggable = true
		it.On(view.EventDragStart, m.dragStart)
		it.On(view.EventDragEnter, m.dragEnter)
		it.On(view.EventDragLeave, m.dragLeave)
		it.On(view.EventDrop, m.drop)
		it.On(view.EventDragEnd, m.dragEnd)
	}
}

// State returns the current state.
func (m *Machine) State() State {
	if m.source == nil {
		return Idle
	}
	return Dragging
}

// Source returns the live position of the dragged item, or -1 when idle.
func (m *Machine) Source() int {
	if m.source == nil {
		return -1
	}
	return m.list.IndexOf(m.source)
}

func (m *Machine) dragStart(it *view.Item) error {
	m.source = it
	for _, other := range m.list.Items() {
		if other != it {
			other.AddClass(view.ClassOption)
		}
		other.SetPointerEvents(false)
	}
	m.logger.Debug("drag: start", slog.Int("source", m.list.IndexOf(it)))
	return nil
}

func (m *Machine) dragEnter(it *view.Item) error {
	if m.source != nil && it != m.source {
		it.AddClass(view.ClassHighlight)
	}
	return nil
}

func (m *Machine) dragLeave(it *view.Item) error {
	it.RemoveClass(view.ClassHighlight)
	return nil
}

// drop lands the dragged item next to it: before it when moving up, after it
// when moving down. Either way the item ends at the target's former position.
func (m *Machine) drop(it *view.Item) error {
	src := m.source
	m.source = nil
	if src == nil {
		return nil
	}
	currentPos, dropPos := -1, -1
	for i, x := range m.list.Items() {
		if x == src {
			currentPos = i
		}
		if x == it {
			dropPos = i
		}
	}
	if currentPos < 0 || dropPos < 0 {
		m.logger.Debug("drag: drop on detached item ignored")
		return nil
	}
	moved, err := m.tasks.Relocate(currentPos, dropPos)
	if err != nil {
		return err
	}
	if moved {
		m.logger.Debug("drag: dropped",
			slog.Int("from", currentPos),
			slog.Int("to", dropPos))
	}
	return nil
}

func (m *Machine) dragEnd(_ *view.Item) error {
	m.Reset()
	return nil
}

// Reset ends any gesture: clears drag classes from every item, restores
// pointer events on their children and returns to Idle.
func (m *Machine) Reset() {
	for _, it := range m.list.Items() {
		it.RemoveClass(view.ClassOption, view.ClassHighlight)
		it.SetPointerEvents(true)
	}
	m.source = nil
}
