package internal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/starford/tickoff/internal/models"
	"github.com/starford/tickoff/internal/storage"
	"github.com/starford/tickoff/internal/tasklist"
	"github.com/starford/tickoff/internal/widget"
)

// Exec runs fn once against the stored list and prints the result. Positions
// taken by one-shot commands are 1-based; convert with Pos.
func Exec(ctx context.Context, fn func(w *widget.Widget) error, opts ...Option) error {
	app, err := build(opts)
	if err != nil {
		return err
	}
	logger, _, closeLog, err := newLogger(app.config, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	w, store, err := openWidget(app.config, logger)
	if err != nil {
		return err
	}
	defer storage.Close(store)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(w); err != nil {
		return err
	}
	return PrintTasks(app.out, w.Tasks())
}

// Pos converts a 1-based position typed by a person into an index.
func Pos(n int) int { return n - 1 }

// List prints the list.
func List(*widget.Widget) error { return nil }

// Add appends text.
func Add(text string) func(*widget.Widget) error {
	return func(w *widget.Widget) error { return w.Add(text) }
}

// Check toggles the task at 1-based position n.
func Check(n int) func(*widget.Widget) error {
	return func(w *widget.Widget) error { return w.Check(Pos(n)) }
}

// Delete removes the task at 1-based position n.
func Delete(n int) func(*widget.Widget) error {
	return func(w *widget.Widget) error { return w.Delete(Pos(n)) }
}

// Move steps the task at 1-based position n up or down.
func Move(n int, direction string) func(*widget.Widget) error {
	return func(w *widget.Widget) error {
		dir, err := tasklist.ParseDirection(direction)
		if err != nil {
			return err
		}
		return w.Move(Pos(n), dir)
	}
}

// Reorder drags the task at 1-based position from onto position to.
func Reorder(from, to int) func(*widget.Widget) error {
	return func(w *widget.Widget) error { return w.Reorder(Pos(from), Pos(to)) }
}

// PrintTasks writes one numbered line per task.
func PrintTasks(out io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(out, "no tasks")
		return err
	}
	for i, t := range tasks {
		box := "[ ]"
		if t.Done {
			box = "[x]"
		}
		if _, err := fmt.Fprintf(out, "%d. %s %s\n", i+1, box, t.Text); err != nil {
			return err
		}
	}
	return nil
}
