// Package apperr holds sentinel errors shared by the task list and its hosts.
package apperr

import "errors"

var (
	// ErrNotFound marks a position outside the list.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks a request the list cannot act on, such as blank text.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict marks a control that is not accepting input right now,
	// as the item controls are while a drag is in progress.
	ErrConflict = errors.New("conflict")
)
