package tui

import (
	"os"

	"golang.org/x/term"

	"github.com/mrz1836/pixel/internal/constants"
)

// IsInteractive reports whether pixel may prompt, open reports and allocate
// a TTY for containers: NONINTERACTIVE is unset or empty and stdin is a terminal.
func IsInteractive() bool {
	if os.Getenv(constants.EnvNonInteractive) != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}
