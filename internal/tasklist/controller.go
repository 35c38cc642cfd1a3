// Package tasklist owns the ordered task list and applies every mutation to it.
//
// Each mutating operation persists the complete list before it returns. Indices
// are positions in the current order; passing an index outside [0, Len()) is a
// programming error and panics. Hosts validate user-supplied indices with Valid.
package tasklist

import (
	"fmt"

	"github.com/starford/tickoff/internal/apperr"
	"github.com/starford/tickoff/internal/models"
)

// Store is the persistence the controller writes through.
type Store interface {
	SaveAll(tasks []models.Task) error
	LoadAll() ([]models.Task, error)
}

// Direction is the neighbour a Move swaps with.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// ParseDirection parses "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return Up, fmt.Errorf("direction %q: %w", s, apperr.ErrInvalidInput)
}

// ChangeKind tells observers whether the set of items changed or only their
// content/order.
type ChangeKind int

const (
	// Structural: items were added, removed or replaced wholesale.
	Structural ChangeKind = iota
	// Content: a task's fields changed in place.
	Content
	// Reorder: positions changed, contents did not.
	Reorder
)

// Change describes one completed mutation. From and To are set for Reorder:
// the task formerly at From now sits at To.
type Change struct {
	Kind     ChangeKind
	Op       string
	From, To int
}

// Controller is the single owner of the task list.
type Controller struct {
	tasks     []models.Task
	store     Store
	observers []func(Change)
}

// New returns an empty controller persisting through store.
func New(store Store) *Controller {
	return &Controller{tasks: []models.Task{}, store: store}
}

// Observe registers fn to run after every mutation and after Rehydrate.
func (c *Controller) Observe(fn func(Change)) {
	c.observers = append(c.observers, fn)
}

// Len returns the number of tasks.
func (c *Controller) Len() int { return len(c.tasks) }

// Valid reports whether i addresses a task.
func (c *Controller) Valid(i int) bool { return i >= 0 && i < len(c.tasks) }

// Task returns the task at i.
func (c *Controller) Task(i int) models.Task {
	c.mustIndex(i)
	return c.tasks[i]
}

// Tasks returns a copy of the list in order.
func (c *Controller) Tasks() []models.Task {
	out := make([]models.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Add appends an unchecked task. Callers reject blank text beforehand.
func (c *Controller) Add(text string) error {
	c.tasks = append(c.tasks, models.NewTask(text))
	return c.commit(Change{Kind: Structural, Op: "add"})
}

// Check toggles the done flag of the task at i.
func (c *Controller) Check(i int) error {
	c.mustIndex(i)
	c.tasks[i].Done = !c.tasks[i].Done
	return c.commit(Change{Kind: Content, Op: "check"})
}

// Delete removes the task at i; later tasks shift down by one.
func (c *Controller) Delete(i int) error {
	c.mustIndex(i)
	c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
	return c.commit(Change{Kind: Structural, Op: "delete"})
}

// Move swaps the task at i with its neighbour in dir. It reports false and
// leaves storage untouched when there is no such neighbour.
func (c *Controller) Move(i int, dir Direction) (bool, error) {
	c.mustIndex(i)
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if j < 0 || j >= len(c.tasks) {
		return false, nil
	}
	c.tasks[i], c.tasks[j] = c.tasks[j], c.tasks[i]
	return true, c.commit(Change{Kind: Reorder, Op: "move", From: i, To: j})
}

// Relocate takes the task at from out of the list and reinserts it so that it
// ends at position to. Tasks between the two positions shift by one.
func (c *Controller) Relocate(from, to int) (bool, error) {
	c.mustIndex(from)
	c.mustIndex(to)
	if from == to {
		return false, nil
	}
	t := c.tasks[from]
	if from < to {
		copy(c.tasks[from:to], c.tasks[from+1:to+1])
	} else {
		copy(c.tasks[to+1:from+1], c.tasks[to:from])
	}
	c.tasks[to] = t
	return true, c.commit(Change{Kind: Reorder, Op: "relocate", From: from, To: to})
}

// Rehydrate replaces the in-memory list with the stored snapshot. It never
// writes to storage.
func (c *Controller) Rehydrate() error {
	tasks, err := c.store.LoadAll()
	if err != nil {
		return fmt.Errorf("tasklist: rehydrate: %w", err)
	}
	c.tasks = tasks
	c.notify(Change{Kind: Structural, Op: "load"})
	return nil
}

func (c *Controller) commit(ch Change) error {
	err := c.store.SaveAll(c.tasks)
	c.notify(ch)
	if err != nil {
		return fmt.Errorf("tasklist: %s: %w", ch.Op, err)
	}
	return nil
}

func (c *Controller) notify(ch Change) {
	for _, fn := range c.observers {
		fn(ch)
	}
}

func (c *Controller) mustIndex(i int) {
	if !c.Valid(i) {
		panic(fmt.Sprintf("tasklist: index %d out of range [0,%d)", i, len(c.tasks)))
	}
}
