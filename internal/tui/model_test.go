package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/tickoff/internal/models"
	"github.com/starford/tickoff/internal/testutil"
	"github.com/starford/tickoff/internal/view"
	"github.com/starford/tickoff/internal/widget"
)

func newModel(t *testing.T, items ...string) (Model, *widget.Widget) {
	t.Helper()
	w, _ := testutil.TestWidget(t, items...)
	return New(w, nil), w
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(x, row int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: headerLines + row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(row int) tea.MouseMsg {
	return tea.MouseMsg{X: colLabel, Y: headerLines + row, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func release(row int) tea.MouseMsg {
	return tea.MouseMsg{X: colLabel, Y: headerLines + row, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone}
}

func order(tasks []models.Task) string {
	var parts []string
	for _, t := range tasks {
		s := t.Text
		if t.Done {
			s += "*"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ",")
}

func TestTypeAndSubmit(t *testing.T) {
	m, w := newModel(t)

	m = send(t, m, key("a"))
	if !m.input.Focused() {
		t.Fatal("input should be focused after 'a'")
	}
	// Empty input does not add.
	m = send(t, m, key("enter"))
	if w.Len() != 0 {
		t.Fatalf("blank submit added %d tasks", w.Len())
	}

	m = send(t, m, key("milk"), key("enter"))
	if got := order(w.Tasks()); got != "milk" {
		t.Errorf("tasks = %q", got)
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	m = send(t, m, key("esc"), key("q"))
	if m.input.Focused() {
		t.Error("esc should blur the input")
	}
}

func TestKeyboardActions(t *testing.T) {
	m, w := newModel(t, "A", "B", "C")

	m = send(t, m, key("j"), key(" "))
	if got := order(w.Tasks()); got != "A,B*,C" {
		t.Errorf("after check = %q", got)
	}

	m = send(t, m, key("K"))
	if got := order(w.Tasks()); got != "B*,A,C" || m.cursor != 0 {
		t.Errorf("after move up = %q cursor %d", got, m.cursor)
	}
	// Boundary.
	m = send(t, m, key("K"))
	if got := order(w.Tasks()); got != "B*,A,C" {
		t.Errorf("boundary move = %q", got)
	}

	m = send(t, m, key("J"), key("J"))
	if got := order(w.Tasks()); got != "A,C,B*" || m.cursor != 2 {
		t.Errorf("after move down = %q cursor %d", got, m.cursor)
	}

	m = send(t, m, key("x"))
	if got := order(w.Tasks()); got != "A,C" || m.cursor != 1 {
		t.Errorf("after delete = %q cursor %d", got, m.cursor)
	}
}

func TestClickControls(t *testing.T) {
	m, w := newModel(t, "A", "B", "C")

	m = send(t, m, press(colCheckbox+1, 0))
	if got := order(w.Tasks()); got != "A*,B,C" {
		t.Errorf("after checkbox click = %q", got)
	}
	m = send(t, m, press(colDown, 0))
	if got := order(w.Tasks()); got != "B,A*,C" {
		t.Errorf("after down click = %q", got)
	}
	m = send(t, m, press(colUp, 2))
	if got := order(w.Tasks()); got != "B,C,A*" {
		t.Errorf("after up click = %q", got)
	}
	send(t, m, press(colDelete, 1))
	if got := order(w.Tasks()); got != "B,A*" {
		t.Errorf("after delete click = %q", got)
	}
}

func TestMouseDragReorder(t *testing.T) {
	m, w := newModel(t, "A", "B", "C", "D")

	m = send(t, m, press(colLabel, 0), motion(1), motion(2))
	if w.Drag().Source() != 0 {
		t.Fatalf("source = %d, want 0", w.Drag().Source())
	}
	items := w.List().Items()
	if items[1].HasClass(view.ClassHighlight) || !items[2].HasClass(view.ClassHighlight) {
		t.Error("highlight should follow the pointer")
	}
	if items[0].HasClass(view.ClassOption) || !items[3].HasClass(view.ClassOption) {
		t.Error("every item except the source should be a candidate")
	}

	m = send(t, m, release(2))
	if got := order(w.Tasks()); got != "B,C,A,D" {
		t.Errorf("order = %q, want B,C,A,D", got)
	}
	if m.dragging || w.Drag().Source() != -1 {
		t.Error("drag should have ended")
	}
	for i, it := range w.List().Items() {
		if len(it.Classes()) != 0 || !it.PointerEvents(view.ControlCheckbox) {
			t.Errorf("item %d not cleared", i)
		}
	}
}

func TestMouseDragReleasedOutside(t *testing.T) {
	m, w := newModel(t, "A", "B")

	m = send(t, m, press(colLabel, 1), motion(0), motion(5), release(5))
	if got := order(w.Tasks()); got != "A,B" {
		t.Errorf("order = %q, want unchanged", got)
	}
	if m.dragging {
		t.Error("drag should have ended")
	}
	if w.List().At(0).HasClass(view.ClassHighlight) {
		t.Error("highlight should be cleared after leaving")
	}
}

func TestViewRendersRows(t *testing.T) {
	m, w := newModel(t, "A", "B")
	if err := w.Check(1); err != nil {
		t.Fatal(err)
	}
	out := m.View()
	for _, want := range []string{"tickoff", "[ ]", "[x]", "A", "B"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	empty, _ := newModel(t)
	if !strings.Contains(empty.View(), "nothing to do") {
		t.Error("empty list should show a hint")
	}
}
