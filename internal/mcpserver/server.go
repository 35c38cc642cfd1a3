// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Tickoff tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tickoff/internal/host"
	"github.com/starford/tickoff/internal/models"
	"github.com/starford/tickoff/internal/tasklist"
	"github.com/starford/tickoff/internal/widget"
)

const formatURI = "tickoff://storage-format"

// Server wraps the MCP server with Tickoff tools.
type Server struct {
	mcp  *server.MCPServer
	loop *host.Loop
}

// New creates a new MCP server with all Tickoff tools registered. Every tool
// runs on loop.
func New(loop *host.Loop) *Server {
	s := &Server{loop: loop}

	s.mcp = server.NewMCPServer(
		"Tickoff",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List all tasks in display order with their 0-based index and done flag."),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Append a task to the end of the list."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Task text, must not be blank")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("check_task",
		mcp.WithDescription("Toggle the done flag of the task at index."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based task position")),
	), s.checkTask)

	s.mcp.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete the task at index. Later tasks shift up by one."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based task position")),
	), s.deleteTask)

	s.mcp.AddTool(mcp.NewTool("move_task",
		mcp.WithDescription("Swap the task at index with its neighbour. Moving past either end does nothing."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based task position")),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("up", "down"), mcp.Description("up or down")),
	), s.moveTask)

	s.mcp.AddTool(mcp.NewTool("reorder_task",
		mcp.WithDescription("Drag the task at from and drop it on the task at to. "+
			"The dragged task ends at position to; the tasks between shift by one."),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("0-based position of the dragged task")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("0-based position of the drop target")),
	), s.reorderTask)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Storage Format",
			mcp.WithResourceDescription("How the task list is persisted and how tools address tasks."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type taskView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Done  bool   `json:"done"`
}

func listing(tasks []models.Task) string {
	out := make([]taskView, len(tasks))
	for i, t := range tasks {
		out[i] = taskView{Index: i, Text: t.Text, Done: t.Done}
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	return string(b)
}

// run executes fn on the loop and answers with the resulting list. Domain
// errors become tool errors, not protocol errors.
func (s *Server) run(ctx context.Context, fn func(w *widget.Widget) error) (*mcp.CallToolResult, error) {
	var tasks []models.Task
	err := s.loop.Do(ctx, func(w *widget.Widget) error {
		if err := fn(w); err != nil {
			return err
		}
		tasks = w.Tasks()
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(listing(tasks)), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, func(*widget.Widget) error { return nil })
}

func (s *Server) addTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(ctx, func(w *widget.Widget) error { return w.Add(text) })
}

func (s *Server) checkTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	i, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(ctx, func(w *widget.Widget) error { return w.Check(i) })
}

func (s *Server) deleteTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	i, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(ctx, func(w *widget.Widget) error { return w.Delete(i) })
}

func (s *Server) moveTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	i, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := tasklist.ParseDirection(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(ctx, func(w *widget.Widget) error { return w.Move(i, dir) })
}

func (s *Server) reorderTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireInt("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireInt("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(ctx, func(w *widget.Widget) error {
		if err := w.Reorder(from, to); err != nil {
			return fmt.Errorf("reorder %d to %d: %w", from, to, err)
		}
		return nil
	})
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     StorageFormatContract,
		},
	}, nil
}
