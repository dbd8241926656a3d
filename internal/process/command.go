// Package process runs external commands for pixel.
//
// Every docker, git and script invocation goes through a Runner. The default
// ExecRunner streams child output to the terminal while capturing it, turns
// non-zero exits into *ProcessError values, and serializes invocations
// through a weighted semaphore so two docker commands never race.
package process

import (
	"time"

	"github.com/mrz1836/pixel/internal/logging"
)

// Command describes a single external command invocation.
type Command struct {
	// Name is the executable to run.
	Name string

	// Args are passed to the executable verbatim.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra KEY=value pairs added to the inherited environment of
	// the child only. The parent environment is never modified.
	Env []string

	// Stdin attaches the runner's stdin to the child.
	Stdin bool

	// Quiet captures output without streaming it to the terminal.
	Quiet bool
}

// String returns the command line with credentials redacted, suitable for logs.
func (c Command) String() string {
	return logging.SafeCommandLine(c.Name, c.Args)
}

// ShellCommand returns a Command that runs line through sh -c in dir,
// capturing its output only.
func ShellCommand(dir, line string) Command {
	return Command{
		Name:  "sh",
		Args:  []string{"-c", line},
		Dir:   dir,
		Quiet: true,
	}
}

// Result contains the outcome of a finished command.
type Result struct {
	Command     string
	Args        []string
	ExitCode    int
	Stdout      string
	Stderr      string
	Duration    time.Duration
	StartedAt   time.Time
	CompletedAt time.Time
}

// Success reports whether the command exited with code 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}
