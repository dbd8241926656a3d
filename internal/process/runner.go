package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/mrz1836/pixel/internal/clock"
)

// interruptGrace is how long a child gets to exit after it was sent an
// interrupt on context cancellation before it is killed.
const interruptGrace = 10 * time.Second

// Runner executes external commands.
// This allows for testing by injecting mock implementations.
type Runner interface {
	// Run executes the command and returns its result. A non-zero exit is
	// reported as a *ProcessError alongside the (non-nil) result.
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct {
	sem    *semaphore.Weighted
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	clock  clock.Clock
	logger zerolog.Logger
}

// Option is a functional option for configuring ExecRunner.
type Option func(*ExecRunner)

// WithOutput sets the writers child output is streamed to.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *ExecRunner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithStdin sets the reader attached to commands that request stdin.
func WithStdin(stdin io.Reader) Option {
	return func(r *ExecRunner) {
		r.stdin = stdin
	}
}

// WithClock sets the clock used for result timestamps.
func WithClock(c clock.Clock) Option {
	return func(r *ExecRunner) {
		r.clock = c
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *ExecRunner) {
		r.logger = logger
	}
}

// NewExecRunner creates an ExecRunner that allows at most concurrency
// commands to run at once. Values below 1 are treated as 1.
func NewExecRunner(concurrency int64, opts ...Option) *ExecRunner {
	if concurrency < 1 {
		concurrency = 1
	}
	r := &ExecRunner{
		sem:    semaphore.NewWeighted(concurrency),
		stdout: os.Stdout,
		stderr: os.Stderr,
		stdin:  os.Stdin,
		clock:  clock.RealClock{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes c, blocking until a slot in the queue is free or ctx is done.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	logger := r.loggerFor(ctx).With().Str("command", c.String()).Logger()

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting to run %s: %w", c.Name, context.Cause(ctx))
	}
	defer r.sem.Release(1)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...) //#nosec G204 -- commands are built internally from trusted config
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	if c.Stdin {
		cmd.Stdin = r.stdin
	}
	// Let docker forward the interrupt to its containers before killing it.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = interruptGrace

	var outBuf, errBuf bytes.Buffer
	if c.Quiet {
		cmd.Stdout = &outBuf
		cmd.Stderr = &errBuf
	} else {
		cmd.Stdout = io.MultiWriter(&outBuf, r.stdout)
		cmd.Stderr = io.MultiWriter(&errBuf, r.stderr)
	}

	logger.Debug().Str("dir", c.Dir).Msg("starting command")

	started := r.clock.Now()
	runErr := cmd.Run()
	completed := r.clock.Now()

	result := &Result{
		Command:     c.Name,
		Args:        c.Args,
		Stdout:      outBuf.String(),
		Stderr:      errBuf.String(),
		StartedAt:   started,
		CompletedAt: completed,
		Duration:    completed.Sub(started),
	}

	if runErr == nil {
		logger.Info().Dur("duration", result.Duration).Msg("command completed")
		return result, nil
	}

	pe := &ProcessError{
		Command:  c.String(),
		ExitCode: 1,
		Stderr:   result.Stderr,
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		pe.ExitCode = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			pe.Signal = ws.Signal()
		}
	} else {
		pe.Err = runErr
	}
	if ctx.Err() != nil {
		pe.Err = context.Cause(ctx)
	}
	result.ExitCode = pe.ExitCode

	event := logger.Warn().Int("exit_code", pe.ExitCode).Dur("duration", result.Duration)
	if pe.Signal != nil {
		event = event.Str("signal", pe.Signal.String())
	}
	event.Msg("command failed")

	return result, pe
}

func (r *ExecRunner) loggerFor(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l.With().Str("component", "process").Logger()
	}
	return r.logger.With().Str("component", "process").Logger()
}

// Ensure ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)
