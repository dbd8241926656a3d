package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/mrz1836/pixel/internal/process"
)

// RecordingRunner is a process.Runner that records every command instead of
// executing it. Commands succeed unless a registered failure matches.
type RecordingRunner struct {
	mu        sync.Mutex
	calls     []process.Command
	failures  []response
	responses []response
}

type response struct {
	match    string
	exitCode int
	err      error
	stdout   string
}

// NewRecordingRunner creates an empty RecordingRunner.
func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{}
}

// FailWith makes commands whose line contains match exit with exitCode.
func (r *RecordingRunner) FailWith(match string, exitCode int) *RecordingRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, response{match: match, exitCode: exitCode})
	return r
}

// FailWithError makes commands whose line contains match return err as is.
func (r *RecordingRunner) FailWithError(match string, err error) *RecordingRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, response{match: match, err: err})
	return r
}

// RespondWith makes commands whose line contains match print stdout.
func (r *RecordingRunner) RespondWith(match, stdout string) *RecordingRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, response{match: match, stdout: stdout})
	return r
}

// Run records c and returns the configured response.
func (r *RecordingRunner) Run(_ context.Context, c process.Command) (*process.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, c)
	line := Line(c)
	result := &process.Result{Command: c.Name, Args: c.Args}

	for _, resp := range r.responses {
		if strings.Contains(line, resp.match) {
			result.Stdout = resp.stdout
			break
		}
	}

	for _, f := range r.failures {
		if !strings.Contains(line, f.match) {
			continue
		}
		if f.err != nil {
			return result, f.err
		}
		result.ExitCode = f.exitCode
		return result, &process.ProcessError{Command: line, ExitCode: f.exitCode}
	}

	return result, nil
}

// Calls returns a copy of the recorded commands.
func (r *RecordingRunner) Calls() []process.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]process.Command, len(r.calls))
	copy(out, r.calls)
	return out
}

// Lines returns the recorded commands as unredacted command lines.
func (r *RecordingRunner) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = Line(c)
	}
	return lines
}

// Line joins a command's name and arguments with spaces.
func Line(c process.Command) string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

var _ process.Runner = (*RecordingRunner)(nil)
