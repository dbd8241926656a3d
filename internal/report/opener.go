package report

import (
	"context"
	"runtime"

	"github.com/mrz1836/pixel/internal/process"
)

// Opener shows a report to the operator.
type Opener interface {
	Open(ctx context.Context, target string) error
}

// CommandOpener opens targets with an external command such as xdg-open.
type CommandOpener struct {
	runner  process.Runner
	command string
}

// NewCommandOpener creates a CommandOpener. An empty command picks the
// platform default.
func NewCommandOpener(runner process.Runner, command string) *CommandOpener {
	if command == "" {
		command = DefaultOpenCommand(runtime.GOOS)
	}
	return &CommandOpener{runner: runner, command: command}
}

// Open runs the opener command with target as its only argument.
func (o *CommandOpener) Open(ctx context.Context, target string) error {
	_, err := o.runner.Run(ctx, process.Command{
		Name:  o.command,
		Args:  []string{target},
		Quiet: true,
	})
	return err
}

// DefaultOpenCommand returns the file opener for goos.
func DefaultOpenCommand(goos string) string {
	if goos == "darwin" {
		return "open"
	}
	return "xdg-open"
}

var _ Opener = (*CommandOpener)(nil)
