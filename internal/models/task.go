// Package models defines the domain types for Tickoff.
package models

import (
	"html"
	"strings"
)

// Class tokens used in the persisted form of a task.
const (
	ClassTask = "task"
	ClassDone = "done"
)

// Task is one entry of the list: a label and a completion flag.
// A task has no id; its identity is its position in the list.
type Task struct {
	Text string
	Done bool
}

// NewTask returns an unchecked task with the given label.
func NewTask(text string) Task {
	return Task{Text: text}
}

// Entry is the persisted form of a task.
type Entry struct {
	Text  string `json:"text"`
	Class string `json:"class"`
}

// Class returns "task" or "task done".
func (t Task) Class() string {
	if t.Done {
		return ClassTask + " " + ClassDone
	}
	return ClassTask
}

// Entry serializes the task. Text is stored in escaped markup form so a stored
// label never turns into markup when read back.
func (t Task) Entry() Entry {
	return Entry{Text: escapeText(t.Text), Class: t.Class()}
}

// FromEntry is the inverse of Task.Entry.
func FromEntry(e Entry) Task {
	return Task{
		Text: html.UnescapeString(e.Text),
		Done: hasToken(e.Class, ClassDone),
	}
}

func hasToken(class, token string) bool {
	for _, f := range strings.Fields(class) {
		if f == token {
			return true
		}
	}
	return false
}

// textEscaper mirrors the escaping a browser applies when serializing a text
// node: only &, <, > and the no-break space.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\u00a0", "&nbsp;",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
