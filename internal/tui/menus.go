package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	pixelerrors "github.com/mrz1836/pixel/internal/errors"
)

// Terminal layout constants.
const (
	// TerminalEdgeMargin is the space kept between prompt content and the terminal edge.
	TerminalEdgeMargin = 4

	// MinMenuWidth is the minimum usable prompt width.
	MinMenuWidth = 40

	// DefaultMenuWidth is used when the terminal size is unknown.
	DefaultMenuWidth = 80
)

// ErrMenuCanceled is returned when the user aborts a prompt or no terminal is attached.
var ErrMenuCanceled = pixelerrors.ErrMenuCanceled

// adaptWidth returns a prompt width that fits the terminal, capped at maxWidth.
func adaptWidth(maxWidth int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		if maxWidth <= 0 {
			return DefaultMenuWidth
		}
		return maxWidth
	}

	available := width - TerminalEdgeMargin
	if maxWidth > 0 && maxWidth < available {
		return maxWidth
	}
	if available < MinMenuWidth {
		return MinMenuWidth
	}
	return available
}

// Theme returns the huh theme using the pixel colors.
func Theme() *huh.Theme {
	CheckNoColor()

	t := huh.ThemeBase()
	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorPrimary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Blurred.Base = t.Blurred.Base.BorderForeground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	return t
}

// Confirm asks a yes/no question. It returns ErrMenuCanceled when stdin is
// not a terminal or the user aborts with Esc or Ctrl+C.
func Confirm(title, description string, defaultYes bool) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, ErrMenuCanceled
	}

	confirmed := defaultYes
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(Theme()).
		WithWidth(adaptWidth(DefaultMenuWidth)).
		WithShowHelp(true)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrMenuCanceled
		}
		return false, fmt.Errorf("confirm prompt failed: %w", err)
	}
	return confirmed, nil
}
