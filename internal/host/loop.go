// Package host runs widget operations one at a time on a single goroutine.
//
// Concurrency model: the loop goroutine is the only code touching the widget.
// Callers submit closures through Do and wait for them; closures run to
// completion in arrival order, so no mutexes are required.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/starford/tickoff/internal/widget"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("host: closed")

type call struct {
	fn   func(w *widget.Widget) error
	done chan error
}

// Loop owns a widget.
type Loop struct {
	w       *widget.Widget
	calls   chan call
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewLoop starts a loop owning w.
func NewLoop(w *widget.Widget) *Loop {
	l := &Loop{
		w:       w,
		calls:   make(chan call),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		select {
		case <-l.stopCh:
			return
		case c := <-l.calls:
			c.done <- l.invoke(c.fn)
		}
	}
}

// invoke turns a panic inside fn into an error so one bad event cannot take the
// loop down.
func (l *Loop) invoke(fn func(w *widget.Widget) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host: handler panic: %v", r)
		}
	}()
	return fn(l.w)
}

// Do runs fn on the loop and returns its error. The wait is abandoned when ctx
// ends; fn may still run if it was already accepted.
func (l *Loop) Do(ctx context.Context, fn func(w *widget.Widget) error) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c := call{fn: fn, done: make(chan error, 1)}
	select {
	case l.calls <- c:
	case <-l.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop after the closure in progress, if any.
func (l *Loop) Close() {
	if l.closed.CompareAndSwap(false, true) {
		close(l.stopCh)
	}
	<-l.stopped
}
