package tui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Output format values for NewOutput.
const (
	FormatAuto = ""
	FormatText = "text"
	FormatJSON = "json"
)

// Output provides methods for structured output to a terminal.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error message with a suggested action when one is known.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Table prints rows under headers.
	Table(headers []string, rows [][]string)
	// JSON outputs a value as formatted JSON.
	JSON(v any) error
}

// NewOutput creates the output for format. FormatAuto picks styled output
// on a terminal and JSON otherwise.
func NewOutput(w io.Writer, format string) Output {
	switch format {
	case FormatJSON:
		return NewJSONOutput(w)
	case FormatText:
		return NewTTYOutput(w)
	default:
		if isTTY(w) {
			return NewTTYOutput(w)
		}
		return NewJSONOutput(w)
	}
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
