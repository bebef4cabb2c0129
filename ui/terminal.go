package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/logrusorgru/aurora"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// sectionWidth is the total character width of Section separator lines.
const sectionWidth = 50

// TerminalUI is the production UI implementation. It writes coloured output
// to os.Stdout; colours are enabled only when stdout is a real terminal.
type TerminalUI struct {
	out io.Writer
	au  aurora.Aurora
}

func NewTerminalUI() *TerminalUI {
	colorsEnabled := term.IsTerminal(int(os.Stdout.Fd()))
	return &TerminalUI{
		out: os.Stdout,
		au:  aurora.NewAurora(colorsEnabled),
	}
}

func (u *TerminalUI) Style(t StyledText) string {
	switch t.Severity {
	case SeveritySuccess:
		return u.au.Green(t.Text).String()
	case SeverityWarn:
		return u.au.Yellow(t.Text).String()
	case SeverityError:
		return u.au.Red(t.Text).String()
	case SeverityCritical:
		return u.au.Bold(t.Text).String()
	default: // SeverityInfo
		return t.Text
	}
}

func (u *TerminalUI) Info(format string, args ...any) {
	fmt.Fprintf(u.out, format+"\n", args...)
}

func (u *TerminalUI) Success(format string, args ...any) {
	fmt.Fprintln(u.out, u.au.Green(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Warn(format string, args ...any) {
	fmt.Fprintln(u.out, u.au.Yellow(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Error(format string, args ...any) {
	fmt.Fprintln(u.out, u.au.Red(fmt.Sprintf(format, args...)).String())
}

// Section prints a separator line centred around the title, surrounded by
// blank lines so sections are visually distinct in long output.
//
// Example output:
//
//	===== Transaction details =====
func (u *TerminalUI) Section(title string) {
	titled := " " + title + " "
	bars := sectionWidth - len(titled)
	if bars < 6 {
		bars = 6
	}
	left := bars / 2
	right := bars - left
	fmt.Fprintf(u.out, "\n%s%s%s\n\n",
		strings.Repeat("=", left), titled, strings.Repeat("=", right))
}

// KeyValue renders an aligned 2-column block. The label column is
// right-padded to the longest label so all values line up.
func (u *TerminalUI) KeyValue(rows [][2]string) {
	if len(rows) == 0 {
		return
	}
	maxLabel := 0
	for _, r := range rows {
		if len(r[0]) > maxLabel {
			maxLabel = len(r[0])
		}
	}
	for _, r := range rows {
		fmt.Fprintf(u.out, "%-*s  %s\n", maxLabel, r[0], r[1])
	}
}

// Table renders a full bordered table. When headers is nil or empty no
// header row is rendered, producing a clean bordered key-value card.
//
// Delegates to TableWithGroups (single group) so that ANSI colour codes
// embedded in cell values (e.g. from u.Style) are measured correctly.
func (u *TerminalUI) Table(headers []string, rows [][]string) {
	u.TableWithGroups(headers, [][][]string{rows})
}

// TableWithGroups renders a bordered table where each group of rows is
// separated from the next by a horizontal mid-table divider (├─┼─┤).
// Column widths are computed across all groups so every column aligns.
func (u *TerminalUI) TableWithGroups(headers []string, groups [][][]string) {
	if len(groups) == 0 {
		return
	}
	// Infer column count from the widest row when no headers are supplied.
	ncols := len(headers)
	if ncols == 0 {
		for _, g := range groups {
			for _, r := range g {
				if len(r) > ncols {
					ncols = len(r)
				}
			}
		}
	}

	// cellWidth is the visible display width of a string, ANSI stripped.
	cellWidth := func(s string) int {
		return runewidth.StringWidth(ansi.Strip(s))
	}

	widths := make([]int, ncols)
	for i, h := range headers {
		widths[i] = cellWidth(h)
	}
	for _, group := range groups {
		for _, row := range group {
			for i := 0; i < ncols && i < len(row); i++ {
				if w := cellWidth(row[i]); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	pad := func(s string, w int) string {
		visible := cellWidth(s)
		if visible >= w {
			return s
		}
		return s + strings.Repeat(" ", w-visible)
	}

	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	border := func(s string) string { return borderStyle.Render(s) }

	parts := make([]string, ncols)
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w+2)
	}
	topBorder := border("┌" + strings.Join(parts, "┬") + "┐")
	midBorder := border("├" + strings.Join(parts, "┼") + "┤")
	botBorder := border("└" + strings.Join(parts, "┴") + "┘")

	renderRow := func(cells []string) string {
		rendered := make([]string, ncols)
		for i := 0; i < ncols; i++ {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			rendered[i] = " " + pad(val, widths[i]) + " "
		}
		return border("│") + strings.Join(rendered, border("│")) + border("│")
	}

	fmt.Fprintf(u.out, "%s\n", topBorder)
	if len(headers) > 0 {
		fmt.Fprintf(u.out, "%s\n", renderRow(headers))
		fmt.Fprintf(u.out, "%s\n", midBorder)
	}
	for gi, group := range groups {
		if gi > 0 {
			fmt.Fprintf(u.out, "%s\n", midBorder)
		}
		for _, row := range group {
			fmt.Fprintf(u.out, "%s\n", renderRow(row))
		}
	}
	fmt.Fprintf(u.out, "%s\n", botBorder)
}

// Spinner starts an animated spinner with msg and returns a stop function.
// On non-terminal outputs the spinner is a no-op and only the message is
// printed once.
func (u *TerminalUI) Spinner(msg string) func() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintf(u.out, "%s\n", msg)
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(u.out))
	s.Suffix = " " + msg
	s.Start()
	return func() {
		s.Stop()
		// briandowns/spinner clears the line with \r but no trailing \n,
		// so we emit one to ensure the next output starts on a fresh line.
		fmt.Fprintf(u.out, "\n")
	}
}
