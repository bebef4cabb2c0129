package ui

import (
	"fmt"
	"strings"
)

// Entry records a single UI method call for test assertions.
type Entry struct {
	Method string
	Value  string // the formatted string passed to the method
}

// RecordingUI implements UI for tests. All output is captured in an entry
// log that can be inspected with [RecordingUI.Entries] and
// [RecordingUI.HasMessage]; nothing reaches the terminal.
type RecordingUI struct {
	entries []Entry
}

func NewRecordingUI() *RecordingUI {
	return &RecordingUI{}
}

func (r *RecordingUI) record(method, value string) {
	r.entries = append(r.entries, Entry{Method: method, Value: value})
}

// Style returns the plain text of t without any colour markup, so tests
// receive clean, predictable strings.
func (r *RecordingUI) Style(t StyledText) string {
	return t.Text
}

func (r *RecordingUI) Info(format string, args ...any) {
	r.record("Info", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Success(format string, args ...any) {
	r.record("Success", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Warn(format string, args ...any) {
	r.record("Warn", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Error(format string, args ...any) {
	r.record("Error", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Section(title string) {
	r.record("Section", title)
}

func (r *RecordingUI) KeyValue(rows [][2]string) {
	for _, row := range rows {
		r.record("KeyValue", row[0]+": "+row[1])
	}
}

func (r *RecordingUI) Table(headers []string, rows [][]string) {
	r.TableWithGroups(headers, [][][]string{rows})
}

func (r *RecordingUI) TableWithGroups(headers []string, groups [][][]string) {
	if len(headers) > 0 {
		r.record("TableHeader", strings.Join(headers, " | "))
	}
	for _, group := range groups {
		for _, row := range group {
			r.record("TableRow", strings.Join(row, " | "))
		}
	}
}

// Spinner records the message and returns a no-op stop function.
func (r *RecordingUI) Spinner(msg string) func() {
	r.record("Spinner", msg)
	return func() {}
}

// --- Test helpers ---

// Entries returns all recorded UI calls in order.
func (r *RecordingUI) Entries() []Entry {
	return r.entries
}

// ErrorMessages returns only the values recorded by Error calls.
func (r *RecordingUI) ErrorMessages() []string {
	var out []string
	for _, e := range r.entries {
		if e.Method == "Error" {
			out = append(out, e.Value)
		}
	}
	return out
}

// HasMessage reports whether any recorded entry's value contains substr,
// matched case-insensitively.
func (r *RecordingUI) HasMessage(substr string) bool {
	lower := strings.ToLower(substr)
	for _, e := range r.entries {
		if strings.Contains(strings.ToLower(e.Value), lower) {
			return true
		}
	}
	return false
}
