package api

// TaskItem is one task in a response. Index is its current position.
type TaskItem struct {
	Index int    `json:"index" example:"0" validate:"required"`
	Text  string `json:"text" example:"buy milk" validate:"required"`
	Done  bool   `json:"done" example:"false"`
}

// TaskListResponse is the whole list in order.
type TaskListResponse struct {
	Tasks    []TaskItem `json:"tasks" validate:"required"`
	Checksum string     `json:"checksum" example:"abc123..." validate:"required"`
}

// AddTaskRequest is the request body for adding a task.
type AddTaskRequest struct {
	Text string `json:"text" example:"buy milk" validate:"required"`
}

// MoveTaskRequest is the request body for a step move.
type MoveTaskRequest struct {
	Direction string `json:"direction" example:"up" enums:"up,down" validate:"required"`
}

// DragEventRequest names the item a drag event targets.
type DragEventRequest struct {
	Index int `json:"index" example:"2"`
}

// DragItem reports the drag affordances on one item.
type DragItem struct {
	Index     int      `json:"index"`
	Classes   []string `json:"classes"`
	Inert     bool     `json:"inert"`
	Draggable bool     `json:"draggable"`
}

// DragStateResponse reports the drag machine.
type DragStateResponse struct {
	State  string     `json:"state" example:"dragging" enums:"idle,dragging"`
	Source int        `json:"source" example:"-1"`
	Items  []DragItem `json:"items"`
}
