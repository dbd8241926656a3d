package tui

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	pixelerrors "github.com/mrz1836/pixel/internal/errors"
)

func TestAdaptWidth_NoTerminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.Skip("stdout is a terminal")
	}

	assert.Equal(t, 60, adaptWidth(60))
	assert.Equal(t, DefaultMenuWidth, adaptWidth(0))
}

func TestConfirm_NoTerminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("stdin is a terminal")
	}

	ok, err := Confirm("Reset the database?", "", true)

	require.ErrorIs(t, err, pixelerrors.ErrMenuCanceled)
	assert.False(t, ok)
}

func TestTheme(t *testing.T) {
	assert.NotNil(t, Theme())
}

func TestIsInteractive_NonInteractiveEnv(t *testing.T) {
	t.Setenv("NONINTERACTIVE", "1")

	assert.False(t, IsInteractive())
}
