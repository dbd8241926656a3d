package process

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mrz1836/pixel/internal/constants"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
)

// ProcessError is returned by a Runner when a command exits unsuccessfully.
// It always matches pixelerrors.ErrProcessFailed via errors.Is.
//
//nolint:revive // process.ProcessError reads better at call sites than process.Error
type ProcessError struct {
	// Command is the redacted command line.
	Command string

	// ExitCode is the child's exit code, or -1 when it was killed by a signal.
	ExitCode int

	// Stderr holds the captured standard error output.
	Stderr string

	// Signal is the signal that terminated the child, if any.
	Signal os.Signal

	// Err is the underlying cause, such as the context cancellation cause.
	Err error
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	if e.Signal != nil {
		return fmt.Sprintf("%s terminated by signal %s", e.Command, e.Signal)
	}
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// Unwrap exposes ErrProcessFailed and the underlying cause to errors.Is/As.
func (e *ProcessError) Unwrap() []error {
	if e.Err == nil {
		return []error{pixelerrors.ErrProcessFailed}
	}
	return []error{pixelerrors.ErrProcessFailed, e.Err}
}

// Interrupted reports whether the child ended because the operator
// interrupted it.
func (e *ProcessError) Interrupted() bool {
	if e.Signal == os.Interrupt || e.ExitCode == constants.InterruptedExitCode {
		return true
	}
	return errors.Is(e.Err, pixelerrors.ErrInterrupted) || errors.Is(e.Err, context.Canceled)
}

// OutcomeKind enumerates the ways a regression run can end.
type OutcomeKind int

// Outcome kinds.
const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeDiffsFound
	OutcomeInterrupted
	OutcomeFailed
)

// String returns the lowercase name of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeDiffsFound:
		return "diffs_found"
	case OutcomeInterrupted:
		return "interrupted"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the typed classification of a command result.
// ExitCode is only meaningful for OutcomeFailed.
type Outcome struct {
	Kind     OutcomeKind
	ExitCode int
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o.Kind == OutcomeFailed {
		return fmt.Sprintf("failed(%d)", o.ExitCode)
	}
	return o.Kind.String()
}

// Classify maps the error returned by Runner.Run to an Outcome.
// It inspects exit codes, signals and cancellation causes, never message text.
// diffExitCode is the code the regression container uses to report visual
// differences.
func Classify(err error, diffExitCode int) Outcome {
	if err == nil {
		return Outcome{Kind: OutcomeSuccess}
	}

	var pe *ProcessError
	if errors.As(err, &pe) {
		switch {
		case pe.Interrupted():
			return Outcome{Kind: OutcomeInterrupted}
		case pe.Signal == nil && pe.ExitCode == diffExitCode:
			return Outcome{Kind: OutcomeDiffsFound}
		default:
			return Outcome{Kind: OutcomeFailed, ExitCode: pe.ExitCode}
		}
	}

	if errors.Is(err, pixelerrors.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return Outcome{Kind: OutcomeInterrupted}
	}

	return Outcome{Kind: OutcomeFailed, ExitCode: 1}
}
