// Package tui is the terminal host: it draws the view node tree with lipgloss
// and turns bubbletea key and mouse messages into item events.
//
// The bubbletea update loop is single-threaded, so the model owns its widget
// directly instead of going through a host loop.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/tickoff/internal/tasklist"
	"github.com/starford/tickoff/internal/view"
	"github.com/starford/tickoff/internal/widget"
)

// headerLines is the number of lines above the first row: title, input, rule.
const headerLines = 3

// Row layout: a two-cell cursor gutter, then "[ ] △ ▽ ✗ label".
const (
	colCheckbox = 2 // through 4
	colUp       = 6
	colDown     = 8
	colDelete   = 10
	colLabel    = 12
)

// Model is the bubbletea model for the task list.
type Model struct {
	w      *widget.Widget
	logger *slog.Logger
	input  textinput.Model

	cursor   int
	dragging bool
	hover    int // row under the pointer while dragging, -1 outside the list
	err      error
}

// New creates a model over a loaded widget.
func New(w *widget.Widget, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	in := textinput.New()
	in.Prompt = "new: "
	in.Placeholder = "what needs doing?"
	in.CharLimit = 256
	return Model{w: w, logger: logger, input: in, hover: -1}
}

// Run starts a full-screen program with cell-motion mouse reporting.
func Run(w *widget.Widget, logger *slog.Logger, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}, opts...)
	_, err := tea.NewProgram(New(w, logger), opts...).Run()
	if err != nil {
		return fmt.Errorf("tui: run: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	case tea.MouseMsg:
		m.updateMouse(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		return m, nil
	case "enter":
		m.w.SetInput(m.input.Value())
		added, err := m.w.Submit()
		m.setErr("add", err)
		if added {
			m.input.SetValue("")
			m.cursor = m.w.Len() - 1
		}
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.w.SetInput(m.input.Value())
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.w.Len()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "a", "i":
		return m, m.input.Focus()
	case "j", "down":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case " ":
		if n > 0 {
			m.setErr("check", m.w.Check(m.cursor))
		}
	case "K":
		if n > 0 && m.cursor > 0 {
			if err := m.w.Move(m.cursor, tasklist.Up); err == nil {
				m.cursor--
			} else {
				m.setErr("move", err)
			}
		}
	case "J":
		if n > 0 && m.cursor < n-1 {
			if err := m.w.Move(m.cursor, tasklist.Down); err == nil {
				m.cursor++
			} else {
				m.setErr("move", err)
			}
		}
	case "x", "d":
		if n > 0 {
			m.setErr("delete", m.w.Delete(m.cursor))
		}
	}
	m.clampCursor()
	return m, nil
}

// rowAt maps a screen line to a list row, -1 when outside the list.
func (m Model) rowAt(y int) int {
	r := y - headerLines
	if r < 0 || r >= m.w.Len() {
		return -1
	}
	return r
}

// controlAt maps a column inside a row to the control drawn there.
func controlAt(x int) (view.Control, bool) {
	switch {
	case x >= colCheckbox && x <= colCheckbox+2:
		return view.ControlCheckbox, true
	case x == colUp:
		return view.ControlUp, true
	case x == colDown:
		return view.ControlDown, true
	case x == colDelete:
		return view.ControlDelete, true
	case x >= colLabel:
		return view.ControlLabel, true
	}
	return "", false
}

func (m *Model) updateMouse(msg tea.MouseMsg) {
	row := m.rowAt(msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || row < 0 {
			return
		}
		m.cursor = row
		c, ok := controlAt(msg.X)
		if ok && c != view.ControlLabel {
			m.setErr("click", m.w.Click(row, c))
			m.clampCursor()
			return
		}
		m.setErr("drag", m.w.Fire(row, view.EventDragStart))
		m.dragging = true
		m.hover = row
	case tea.MouseActionMotion:
		if !m.dragging || row == m.hover {
			return
		}
		if m.hover >= 0 {
			m.setErr("drag", m.w.Fire(m.hover, view.EventDragLeave))
		}
		if row >= 0 {
			m.setErr("drag", m.w.Fire(row, view.EventDragEnter))
		}
		m.hover = row
	case tea.MouseActionRelease:
		if !m.dragging {
			return
		}
		if row >= 0 {
			m.setErr("drop", m.w.Fire(row, view.EventDrop))
			m.cursor = row
		}
		m.w.EndDrag()
		m.dragging = false
		m.hover = -1
	}
}

func (m *Model) clampCursor() {
	if n := m.w.Len(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setErr(op string, err error) {
	m.err = err
	if err != nil {
		m.logger.Warn("tui: "+op+" failed", slog.String("error", err.Error()))
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tickoff"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString(" ")
	if m.w.AddEnabled() {
		b.WriteString(addOnStyle.Render("[add]"))
	} else {
		b.WriteString(addOffStyle.Render("[add]"))
	}
	b.WriteString("\n\n")

	for i, it := range m.w.List().Items() {
		b.WriteString(m.renderRow(i, it))
		b.WriteString("\n")
	}
	if m.w.Len() == 0 {
		b.WriteString(hintStyle.Render("  nothing to do"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("a add · space check · K/J move · x delete · drag to reorder · q quit"))
	return b.String()
}

func (m Model) renderRow(i int, it *view.Item) string {
	gutter := "  "
	if i == m.cursor && !m.input.Focused() {
		gutter = cursorStyle.Render("> ")
	}

	box := "[ ]"
	if it.Checked {
		box = "[x]"
	}
	ctl := controlStyle
	if !it.PointerEvents(view.ControlCheckbox) {
		ctl = inertStyle
	}
	controls := ctl.Render(box + " △ ▽ ✗")

	label := labelStyle.Render(it.Label)
	if it.Checked {
		label = doneStyle.Render(it.Label)
	}
	switch {
	case it.HasClass(view.ClassHighlight):
		label = highlightStyle.Render(it.Label)
	case it.HasClass(view.ClassOption):
		label = optionStyle.Render(label)
	}
	return gutter + controls + " " + label
}
