package ui

import (
	"encoding/json"
)

// Severity classifies the visual weight of a piece of inline text. The print
// layer maps each value to a terminal style; data consumers (JSON, tests)
// see plain text.
type Severity uint8

const (
	SeverityInfo     Severity = iota // plain — no colour emphasis
	SeveritySuccess                  // green  — confirmed / positive
	SeverityWarn                     // yellow — uncertain / needs attention
	SeverityError                    // red    — failed / negative
	SeverityCritical                 // bold   — headline values
)

// StyledText pairs a plain string with a Severity annotation.
//
// JSON serialization: the struct marshals as just the plain Text string so
// consumers receive clean output with no ANSI codes and no extra structure.
//
// Terminal rendering: pass the value to [UI.Style] to obtain the coloured
// string for embedding in a format call:
//
//	u.Info("Status: %s", u.Style(status))
type StyledText struct {
	Text     string
	Severity Severity
}

// MarshalJSON serializes StyledText as a plain JSON string (just Text).
func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

// UI provides all terminal output for chainlens commands.
//
// Production code uses TerminalUI (coloured output to os.Stdout); tests use
// RecordingUI, which captures every call for assertions.
type UI interface {
	// Style returns the text from t coloured according to its Severity.
	// When colours are disabled (piped output, RecordingUI) the plain text
	// is returned unchanged.
	Style(t StyledText) string

	// Info writes a neutral status line.
	Info(format string, args ...any)

	// Success writes a positive outcome in green.
	Success(format string, args ...any)

	// Warn writes a non-fatal warning in yellow.
	Warn(format string, args ...any)

	// Error writes a failure in red. It does NOT exit — callers decide what
	// to do next.
	Error(format string, args ...any)

	// Section writes a visual separator centred around a title.
	// Example: "===== Transaction 0xabc... ====="
	Section(title string)

	// KeyValue renders an aligned 2-column block — label on the left, value
	// on the right. Use for compact metadata like Chain/Provider/Status.
	KeyValue(rows [][2]string)

	// Table renders a full bordered table with an optional header row. Pass
	// nil headers for a clean bordered key-value card.
	Table(headers []string, rows [][]string)

	// TableWithGroups renders a bordered table where each group of rows is
	// separated from the next by a horizontal divider. Use when rows belong
	// to distinct logical groups (e.g. one group per transaction).
	TableWithGroups(headers []string, groups [][][]string)

	// Spinner starts an animated spinner with the given message and returns
	// a stop function:
	//
	//	stop := u.Spinner("Searching 15 chains...")
	//	defer stop()
	//
	// In RecordingUI and non-terminal contexts the stop function is a no-op.
	Spinner(msg string) func()
}
