// Package controller provides console output adapters for the runic CLI.
package controller

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Display is the console surface consumed by the run pipeline and the watch
// supervisor. Implementations decide coloring and screen-clearing; callers
// only name the event.
type Display interface {
	// ClearScreen wipes the terminal before a watch-mode restart.
	ClearScreen()

	// Status reports a watcher lifecycle event under its job label.
	Status(label, message string)

	// Warn prints an advisory diagnostic. Warnings never alter behavior.
	Warn(message string)

	// Error prints an attempt failure that the caller chose not to propagate.
	Error(err error)
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// ConsoleDisplay writes plain or colored output depending on whether the
// destination is a terminal.
type ConsoleDisplay struct {
	out   io.Writer
	color bool
}

// NewConsoleDisplay constructs a ConsoleDisplay. Pass color=false when the
// output is not a TTY so logs stay free of escape sequences.
func NewConsoleDisplay(out io.Writer, color bool) *ConsoleDisplay {
	return &ConsoleDisplay{out: out, color: color}
}

// ClearScreen wipes the terminal and homes the cursor.
func (d *ConsoleDisplay) ClearScreen() {
	if !d.color {
		return
	}

	fmt.Fprint(d.out, "\x1b[2J\x1b[1;1H")
}

// Status reports a watcher lifecycle event.
func (d *ConsoleDisplay) Status(label, message string) {
	prefix := "Watcher"
	if d.color {
		prefix = statusStyle.Render(prefix)
	}

	fmt.Fprintf(d.out, "%s %s %s\n", prefix, label, message)
}

// Warn prints an advisory diagnostic.
func (d *ConsoleDisplay) Warn(message string) {
	if d.color {
		message = warnStyle.Render(message)
	}

	fmt.Fprintf(d.out, "%s\n", message)
}

// Error prints a non-propagated attempt failure.
func (d *ConsoleDisplay) Error(err error) {
	message := fmt.Sprintf("error: %v", err)
	if d.color {
		message = errorStyle.Render(message)
	}

	fmt.Fprintf(d.out, "%s\n", message)
}

// IsTTY reports whether the file is attached to a terminal.
func IsTTY(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}
