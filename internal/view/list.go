package view

import (
	"fmt"

	"github.com/starford/tickoff/internal/models"
	"github.com/starford/tickoff/internal/tasklist"
)

// List is the ordered set of item nodes.
type List struct {
	items []*Item
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

// Len returns the number of items.
func (l *List) Len() int { return len(l.items) }

// At returns the item at position i, or nil.
func (l *List) At(i int) *Item {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Items returns the items in display order.
func (l *List) Items() []*Item {
	out := make([]*Item, len(l.items))
	copy(out, l.items)
	return out
}

// IndexOf scans the live order for it and returns its position, or -1.
func (l *List) IndexOf(it *Item) int {
	for i, x := range l.items {
		if x == it {
			return i
		}
	}
	return -1
}

// Render discards every node and builds fresh ones for tasks. Handlers
// registered on the old nodes are gone.
func (l *List) Render(tasks []models.Task) {
	l.items = make([]*Item, len(tasks))
	for i, t := range tasks {
		l.items[i] = newItem(t)
	}
}

// Move takes the node at from out and reinserts it at to.
func (l *List) Move(from, to int) {
	it := l.items[from]
	if from < to {
		copy(l.items[from:to], l.items[from+1:to+1])
	} else {
		copy(l.items[to+1:from+1], l.items[to:from])
	}
	l.items[to] = it
}

// Sync refreshes labels and checkbox state in place.
func (l *List) Sync(tasks []models.Task) error {
	if len(tasks) != len(l.items) {
		return fmt.Errorf("view: sync: %d tasks for %d items", len(tasks), len(l.items))
	}
	for i, t := range tasks {
		l.items[i].Label = t.Text
		l.items[i].Checked = t.Done
	}
	return nil
}

// Apply mirrors a controller change onto the nodes. It reports true when the
// nodes were rebuilt, after which handlers must be attached again.
func (l *List) Apply(ch tasklist.Change, tasks []models.Task) bool {
	switch ch.Kind {
	case tasklist.Reorder:
		l.Move(ch.From, ch.To)
	case tasklist.Structural:
		l.Render(tasks)
		return true
	}
	if err := l.Sync(tasks); err != nil {
		l.Render(tasks)
		return true
	}
	return false
}

// Dispatch delivers ev to it. Events without a handler are ignored.
func (l *List) Dispatch(it *Item, ev Event) error {
	if it == nil {
		return nil
	}
	h, ok := it.handlers[ev]
	if !ok {
		return nil
	}
	return h(it)
}

// Click delivers a click on control of it. When the control is not receiving
// pointer events the click is not routed to it and false is returned.
func (l *List) Click(it *Item, c Control) (bool, error) {
	if it == nil || !it.PointerEvents(c) {
		return false, nil
	}
	return true, l.Dispatch(it, ClickEvent(c))
}
