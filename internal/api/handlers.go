package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tickoff/internal/apperr"
	"github.com/starford/tickoff/internal/host"
	"github.com/starford/tickoff/internal/persist"
	"github.com/starford/tickoff/internal/tasklist"
	"github.com/starford/tickoff/internal/view"
	"github.com/starford/tickoff/internal/widget"
)

// Handler holds API route handlers. Every handler runs its widget work on the
// host loop.
type Handler struct {
	loop *host.Loop
}

// NewHandler creates a new Handler.
func NewHandler(loop *host.Loop) *Handler {
	return &Handler{loop: loop}
}

func snapshot(w *widget.Widget) (TaskListResponse, error) {
	tasks := w.Tasks()
	sum, err := persist.Checksum(tasks)
	if err != nil {
		return TaskListResponse{}, err
	}
	items := make([]TaskItem, len(tasks))
	for i, t := range tasks {
		items[i] = TaskItem{Index: i, Text: t.Text, Done: t.Done}
	}
	return TaskListResponse{Tasks: items, Checksum: sum}, nil
}

func indexParam(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	return i, err == nil
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// mutate runs fn on the loop and answers with the resulting list.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op string, status int, fn func(w *widget.Widget) error) {
	var resp TaskListResponse
	err := h.loop.Do(r.Context(), func(wd *widget.Widget) error {
		if err := fn(wd); err != nil {
			return err
		}
		var err error
		resp, err = snapshot(wd)
		return err
	})
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, status, resp)
}

// ListTasks handles GET /api/tasks.
//
//	@Summary		List tasks in order
//	@Tags			tasks
//	@Produce		json
//	@Param			If-None-Match	header		string	false	"Checksum from a previous response"
//	@Success		200				{object}	TaskListResponse
//	@Success		304				"Not modified"
//	@Security		BearerAuth
//	@Router			/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var resp TaskListResponse
	err := h.loop.Do(r.Context(), func(wd *widget.Widget) error {
		var err error
		resp, err = snapshot(wd)
		return err
	})
	if err != nil {
		writeError(w, "list tasks", err)
		return
	}
	etag := `"` + resp.Checksum + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddTask handles POST /api/tasks.
//
//	@Summary		Append a task
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddTaskRequest	true	"Task to add"
//	@Success		201		{object}	TaskListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks [post]
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req AddTaskRequest
	if !readJSON(w, r, &req) {
		return
	}
	h.mutate(w, r, "add task", http.StatusCreated, func(wd *widget.Widget) error {
		return wd.Add(req.Text)
	})
}

// CheckTask handles POST /api/tasks/{index}/check.
//
//	@Summary		Toggle a task's done flag
//	@Tags			tasks
//	@Produce		json
//	@Param			index	path		int	true	"Task position"
//	@Success		200		{object}	TaskListResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{index}/check [post]
func (h *Handler) CheckTask(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	h.mutate(w, r, "check task", http.StatusOK, func(wd *widget.Widget) error {
		return wd.Check(i)
	})
}

// MoveTask handles POST /api/tasks/{index}/move.
//
//	@Summary		Swap a task with its neighbour
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			index	path		int				true	"Task position"
//	@Param			body	body		MoveTaskRequest	true	"Direction"
//	@Success		200		{object}	TaskListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{index}/move [post]
func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	var req MoveTaskRequest
	if !readJSON(w, r, &req) {
		return
	}
	dir, err := tasklist.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, "move task", err)
		return
	}
	h.mutate(w, r, "move task", http.StatusOK, func(wd *widget.Widget) error {
		return wd.Move(i, dir)
	})
}

// DeleteTask handles DELETE /api/tasks/{index}.
//
//	@Summary		Delete a task
//	@Tags			tasks
//	@Param			index	path	int	true	"Task position"
//	@Success		204		"Task deleted"
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{index} [delete]
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	err := h.loop.Do(r.Context(), func(wd *widget.Widget) error {
		return wd.Delete(i)
	})
	if err != nil {
		writeError(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var dragEvents = map[string]view.Event{
	"start": view.EventDragStart,
	"enter": view.EventDragEnter,
	"leave": view.EventDragLeave,
	"drop":  view.EventDrop,
}

func dragState(wd *widget.Widget) DragStateResponse {
	m := wd.Drag()
	resp := DragStateResponse{
		State:  m.State().String(),
		Source: m.Source(),
		Items:  make([]DragItem, 0, wd.List().Len()),
	}
	for i, it := range wd.List().Items() {
		resp.Items = append(resp.Items, DragItem{
			Index:     i,
			Classes:   it.Classes(),
			Inert:     !it.PointerEvents(view.ControlCheckbox),
			Draggable: it.Draggable && it.Handles(view.EventDragStart),
		})
	}
	return resp
}

// DragEvent handles POST /api/drag/{event} for start, enter, leave and drop.
//
//	@Summary		Deliver a drag event to an item
//	@Tags			drag
//	@Accept			json
//	@Produce		json
//	@Param			event	path		string				true	"Event"	Enums(start, enter, leave, drop)
//	@Param			body	body		DragEventRequest	true	"Target item"
//	@Success		200		{object}	DragStateResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drag/{event} [post]
func (h *Handler) DragEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := dragEvents[chi.URLParam(r, "event")]
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown drag event"))
		return
	}
	var req DragEventRequest
	if !readJSON(w, r, &req) {
		return
	}
	var resp DragStateResponse
	err := h.loop.Do(r.Context(), func(wd *widget.Widget) error {
		if err := wd.Fire(req.Index, ev); err != nil {
			return err
		}
		resp = dragState(wd)
		return nil
	})
	if err != nil {
		writeError(w, "drag "+string(ev), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DragEnd handles POST /api/drag/end.
//
//	@Summary		End the drag gesture, dropped or aborted
//	@Tags			drag
//	@Produce		json
//	@Success		200	{object}	DragStateResponse
//	@Security		BearerAuth
//	@Router			/drag/end [post]
func (h *Handler) DragEnd(w http.ResponseWriter, r *http.Request) {
	var resp DragStateResponse
	err := h.loop.Do(r.Context(), func(wd *widget.Widget) error {
		wd.EndDrag()
		resp = dragState(wd)
		return nil
	})
	if err != nil {
		writeError(w, "drag end", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DragState handles GET /api/drag.
//
//	@Summary		Report the drag machine state
//	@Tags			drag
//	@Produce		json
//	@Success		200	{object}	DragStateResponse
//	@Security		BearerAuth
//	@Router			/drag [get]
func (h *Handler) DragState(w http.ResponseWriter, r *http.Request) {
	var resp DragStateResponse
	err := h.loop.Do(r.Context(), func(wd *widget.Widget) error {
		resp = dragState(wd)
		return nil
	})
	if err != nil {
		writeError(w, "drag state", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
