package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/tickoff/internal/persist"
	"github.com/starford/tickoff/internal/storage"
	"github.com/starford/tickoff/internal/testutil"
	"github.com/starford/tickoff/internal/view"
	"github.com/starford/tickoff/internal/widget"
)

func testServer(t *testing.T) (*Server, *storage.Memory) {
	t.Helper()

	w, store := testutil.TestWidget(t)
	return New(testutil.TestLoop(t, w)), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_tasks":
		result, err = srv.listTasks(ctx, req)
	case "add_task":
		result, err = srv.addTask(ctx, req)
	case "check_task":
		result, err = srv.checkTask(ctx, req)
	case "delete_task":
		result, err = srv.deleteTask(ctx, req)
	case "move_task":
		result, err = srv.moveTask(ctx, req)
	case "reorder_task":
		result, err = srv.reorderTask(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func texts(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	var views []taskView
	if err := json.Unmarshal([]byte(resultText(r)), &views); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	var parts []string
	for _, v := range views {
		s := v.Text
		if v.Done {
			s += "*"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ",")
}

func seed(t *testing.T, srv *Server, items ...string) {
	t.Helper()
	for _, s := range items {
		callTool(t, srv, "add_task", map[string]interface{}{"text": s})
	}
}

func TestAddAndList(t *testing.T) {
	srv, store := testServer(t)
	seed(t, srv, "A", "B")

	if got := texts(t, callTool(t, srv, "list_tasks", nil)); got != "A,B" {
		t.Errorf("list = %q", got)
	}
	raw, ok, _ := store.Get(persist.Key)
	if !ok || !strings.Contains(raw, `"class":"task"`) {
		t.Errorf("stored = %q", raw)
	}
}

func TestAddBlankIsToolError(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "add_task", map[string]interface{}{"text": "  "})
	if !r.IsError {
		t.Error("expected error for blank text")
	}
	r = callTool(t, srv, "add_task", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing text")
	}
}

func TestCheckMoveDelete(t *testing.T) {
	srv, _ := testServer(t)
	seed(t, srv, "A", "B", "C")

	// JSON numbers arrive as float64.
	if got := texts(t, callTool(t, srv, "check_task", map[string]interface{}{"index": float64(1)})); got != "A,B*,C" {
		t.Errorf("after check = %q", got)
	}
	if got := texts(t, callTool(t, srv, "move_task", map[string]interface{}{"index": float64(2), "direction": "up"})); got != "A,C,B*" {
		t.Errorf("after move = %q", got)
	}
	if got := texts(t, callTool(t, srv, "move_task", map[string]interface{}{"index": float64(2), "direction": "down"})); got != "A,C,B*" {
		t.Errorf("boundary move = %q", got)
	}
	if got := texts(t, callTool(t, srv, "delete_task", map[string]interface{}{"index": float64(0)})); got != "C,B*" {
		t.Errorf("after delete = %q", got)
	}
}

func TestClicksDuringDragAreToolErrors(t *testing.T) {
	srv, _ := testServer(t)
	seed(t, srv, "A", "B")

	err := srv.loop.Do(context.Background(), func(w *widget.Widget) error {
		return w.Fire(0, view.EventDragStart)
	})
	if err != nil {
		t.Fatal(err)
	}
	r := callTool(t, srv, "check_task", map[string]interface{}{"index": float64(1)})
	if !r.IsError || !strings.Contains(resultText(r), "conflict") {
		t.Errorf("check during drag = %q, want conflict tool error", resultText(r))
	}
	r = callTool(t, srv, "delete_task", map[string]interface{}{"index": float64(0)})
	if !r.IsError {
		t.Error("delete during drag should be a tool error")
	}

	_ = srv.loop.Do(context.Background(), func(w *widget.Widget) error {
		w.EndDrag()
		return nil
	})
	if got := texts(t, callTool(t, srv, "list_tasks", nil)); got != "A,B" {
		t.Errorf("list = %q, want A,B untouched", got)
	}
}

func TestReorderTask(t *testing.T) {
	tests := []struct {
		from, to int
		want     string
	}{
		{0, 2, "B,C,A,D"},
		{3, 1, "A,D,B,C"},
		{1, 1, "A,B,C,D"},
	}
	for _, tt := range tests {
		srv, _ := testServer(t)
		seed(t, srv, "A", "B", "C", "D")
		r := callTool(t, srv, "reorder_task", map[string]interface{}{
			"from": float64(tt.from),
			"to":   float64(tt.to),
		})
		if got := texts(t, r); got != tt.want {
			t.Errorf("reorder %d→%d = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBadArguments(t *testing.T) {
	srv, _ := testServer(t)
	seed(t, srv, "A")

	cases := []struct {
		name string
		args map[string]interface{}
	}{
		{"check_task", map[string]interface{}{"index": float64(3)}},
		{"delete_task", map[string]interface{}{"index": float64(-1)}},
		{"move_task", map[string]interface{}{"index": float64(0), "direction": "sideways"}},
		{"reorder_task", map[string]interface{}{"from": float64(0), "to": float64(9)}},
		{"check_task", map[string]interface{}{}},
	}
	for _, c := range cases {
		if r := callTool(t, srv, c.name, c.args); !r.IsError {
			t.Errorf("%s %v: expected tool error, got %q", c.name, c.args, resultText(r))
		}
	}
}

func TestFormatResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != formatURI || !strings.Contains(tc.Text, "`tasks`") {
		t.Errorf("resource = %+v", contents[0])
	}
}
