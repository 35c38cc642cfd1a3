// Package widget assembles the task list: controller, node tree, drag machine
// and the add control. It is the one object hosts talk to.
package widget

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tickoff/internal/apperr"
	"github.com/starford/tickoff/internal/drag"
	"github.com/starford/tickoff/internal/models"
	"github.com/starford/tickoff/internal/tasklist"
	"github.com/starford/tickoff/internal/view"
)

// Widget is a task list bound to its view.
type Widget struct {
	tasks  *tasklist.Controller
	list   *view.List
	drag   *drag.Machine
	logger *slog.Logger
	input  string

	listeners []func(tasklist.Change)
}

// New builds a widget persisting through store. Call Load before use.
func New(store tasklist.Store, logger *slog.Logger) *Widget {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Widget{
		tasks:  tasklist.New(store),
		list:   view.NewList(),
		logger: logger,
	}
	w.drag = drag.New(w.list, w.tasks, logger)
	w.tasks.Observe(w.mirror)
	return w
}

// OnChange registers fn to run after every change has been mirrored.
func (w *Widget) OnChange(fn func(tasklist.Change)) {
	w.listeners = append(w.listeners, fn)
}

func (w *Widget) mirror(ch tasklist.Change) {
	if w.list.Apply(ch, w.tasks.Tasks()) {
		w.attach()
	}
	w.logger.Debug("widget: change", slog.String("op", ch.Op), slog.Int("len", w.tasks.Len()))
	for _, fn := range w.listeners {
		fn(ch)
	}
}

// attach wires item controls and drag handlers onto freshly rendered nodes.
func (w *Widget) attach() {
	for _, it := range w.list.Items() {
		it.On(view.ClickEvent(view.ControlCheckbox), w.onCheck)
		it.On(view.ClickEvent(view.ControlUp), w.onMove(tasklist.Up))
		it.On(view.ClickEvent(view.ControlDown), w.onMove(tasklist.Down))
		it.On(view.ClickEvent(view.ControlDelete), w.onDelete)
	}
	w.drag.Attach()
}

func (w *Widget) position(it *view.Item) (int, error) {
	i := w.list.IndexOf(it)
	if i < 0 {
		return -1, fmt.Errorf("widget: item not in list: %w", apperr.ErrNotFound)
	}
	return i, nil
}

func (w *Widget) onCheck(it *view.Item) error {
	i, err := w.position(it)
	if err != nil {
		return err
	}
	return w.tasks.Check(i)
}

func (w *Widget) onMove(dir tasklist.Direction) view.Handler {
	return func(it *view.Item) error {
		i, err := w.position(it)
		if err != nil {
			return err
		}
		_, err = w.tasks.Move(i, dir)
		return err
	}
}

func (w *Widget) onDelete(it *view.Item) error {
	i, err := w.position(it)
	if err != nil {
		return err
	}
	return w.tasks.Delete(i)
}

// Load rehydrates the list from storage and renders it.
func (w *Widget) Load() error {
	return w.tasks.Rehydrate()
}

// List returns the node tree.
func (w *Widget) List() *view.List { return w.list }

// Drag returns the drag machine.
func (w *Widget) Drag() *drag.Machine { return w.drag }

// Tasks returns a copy of the current list.
func (w *Widget) Tasks() []models.Task { return w.tasks.Tasks() }

// Len returns the number of tasks.
func (w *Widget) Len() int { return w.tasks.Len() }

// Input returns the add control's current text.
func (w *Widget) Input() string { return w.input }

// SetInput replaces the add control's text.
func (w *Widget) SetInput(s string) { w.input = s }

// AddEnabled reports whether the add control accepts its current text.
func (w *Widget) AddEnabled() bool {
	return validateText(w.input) == nil
}

// Submit adds the add control's text as a task and clears the control. It is a
// no-op while the control is disabled.
func (w *Widget) Submit() (bool, error) {
	if !w.AddEnabled() {
		return false, nil
	}
	text := w.input
	w.input = ""
	return true, w.tasks.Add(text)
}

// Add sets the add control to text and submits it. Blank text is rejected
// with apperr.ErrInvalidInput, as is text that is not valid UTF-8.
func (w *Widget) Add(text string) error {
	if err := validateText(text); err != nil {
		return fmt.Errorf("widget: add: %w: %v", apperr.ErrInvalidInput, err)
	}
	w.input = text
	_, err := w.Submit()
	return err
}

// validUTF8 rejects text the stored JSON could not carry unchanged.
var validUTF8 = validation.By(func(v interface{}) error {
	if s, _ := v.(string); !utf8.ValidString(s) {
		return errors.New("must be valid UTF-8")
	}
	return nil
})

func validateText(s string) error {
	return validation.Validate(strings.TrimSpace(s), validation.Required, validUTF8)
}

func (w *Widget) item(i int) (*view.Item, error) {
	it := w.list.At(i)
	if it == nil {
		return nil, fmt.Errorf("widget: index %d: %w", i, apperr.ErrNotFound)
	}
	return it, nil
}

// Click delivers a click on control of item i. A click on a control that is
// not receiving pointer events is dropped and reported as apperr.ErrConflict.
func (w *Widget) Click(i int, c view.Control) error {
	it, err := w.item(i)
	if err != nil {
		return err
	}
	ok, err := w.list.Click(it, c)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("widget: %s on item %d ignored during drag: %w", c, i, apperr.ErrConflict)
	}
	return nil
}

// Check toggles task i.
func (w *Widget) Check(i int) error { return w.Click(i, view.ControlCheckbox) }

// Delete removes task i.
func (w *Widget) Delete(i int) error { return w.Click(i, view.ControlDelete) }

// Move swaps task i with its neighbour in dir.
func (w *Widget) Move(i int, dir tasklist.Direction) error {
	if dir == tasklist.Up {
		return w.Click(i, view.ControlUp)
	}
	return w.Click(i, view.ControlDown)
}

// Fire delivers a drag event to item i.
func (w *Widget) Fire(i int, ev view.Event) error {
	it, err := w.item(i)
	if err != nil {
		return err
	}
	return w.list.Dispatch(it, ev)
}

// EndDrag delivers dragend. It needs no target: a drag aborted outside the
// list still ends here.
func (w *Widget) EndDrag() {
	w.drag.Reset()
}

// Reorder runs a full drag gesture from item from onto item to.
func (w *Widget) Reorder(from, to int) error {
	src, err := w.item(from)
	if err != nil {
		return err
	}
	dst, err := w.item(to)
	if err != nil {
		return err
	}
	defer w.EndDrag()
	if err := w.list.Dispatch(src, view.EventDragStart); err != nil {
		return err
	}
	if err := w.list.Dispatch(dst, view.EventDragEnter); err != nil {
		return err
	}
	return w.list.Dispatch(dst, view.EventDrop)
}
