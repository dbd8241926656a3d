// Package executor runs one group through the reference or test lifecycle:
// resolve the group and branch, record the run context, prepare the
// environment, run the regression container and surface the report.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors,
//     internal/process, internal/docker, internal/git, internal/group,
//     internal/report, internal/runcontext, internal/ctxutil, internal/clock
//   - MUST NOT import: internal/cli, internal/batch
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/pixel/internal/clock"
	"github.com/mrz1836/pixel/internal/constants"
	"github.com/mrz1836/pixel/internal/ctxutil"
	"github.com/mrz1836/pixel/internal/docker"
	"github.com/mrz1836/pixel/internal/domain"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/git"
	"github.com/mrz1836/pixel/internal/group"
	"github.com/mrz1836/pixel/internal/process"
	"github.com/mrz1836/pixel/internal/report"
	"github.com/mrz1836/pixel/internal/runcontext"
)

// BranchResolver turns command options into the identifier that is tested.
type BranchResolver interface {
	Resolve(ctx context.Context, opts *domain.CommandOptions) (string, error)
}

// EnvironmentPreparer brings the container stack into a runnable state.
type EnvironmentPreparer interface {
	Prepare(ctx context.Context, opts domain.CommandOptions, flags domain.FeatureFlags) error
	ResetDatabase(ctx context.Context) error
}

// ContainerRunner starts one-off containers and copies files out of them.
type ContainerRunner interface {
	Run(ctx context.Context, opts docker.RunOptions) error
	Copy(ctx context.Context, src, dst string) error
}

// ReportAnnotator stamps a finished report.
type ReportAnnotator interface {
	Annotate(ctx context.Context, req report.Request) error
}

// Deps are the collaborators of an Executor.
type Deps struct {
	Registry   *group.Registry
	Resolver   BranchResolver
	Store      runcontext.Store
	Preparer   EnvironmentPreparer
	Containers ContainerRunner
	Annotator  ReportAnnotator
}

// Executor drives single group runs.
type Executor struct {
	deps           Deps
	clock          clock.Clock
	newID          func() string
	diffExitCode   int
	cleanupTimeout time.Duration
	nonInteractive bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock sets the clock used for transition timestamps.
func WithClock(c clock.Clock) Option {
	return func(e *Executor) {
		e.clock = c
	}
}

// WithIDGenerator sets the run ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Executor) {
		e.newID = fn
	}
}

// WithDiffExitCode sets the exit code that means "differences found".
func WithDiffExitCode(code int) Option {
	return func(e *Executor) {
		e.diffExitCode = code
	}
}

// WithCleanupTimeout bounds the database reset that runs after every run.
func WithCleanupTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.cleanupTimeout = d
	}
}

// WithNonInteractive stops reports from being opened.
func WithNonInteractive(nonInteractive bool) Option {
	return func(e *Executor) {
		e.nonInteractive = nonInteractive
	}
}

// New creates an Executor.
func New(deps Deps, opts ...Option) *Executor {
	e := &Executor{
		deps:           deps,
		clock:          clock.RealClock{},
		newID:          uuid.NewString,
		diffExitCode:   constants.DiffsFoundExitCode,
		cleanupTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs opts.Group as runType.
//
// In silent mode failures are logged and recorded on the returned Run but not
// returned, so a batch can continue. Interrupts are never returned as errors.
// An unknown group fails before anything is started and is returned even in
// silent mode.
//
// When opts.ResetDB is set the database is reset after the run on every exit
// path past group resolution, and a reset failure is joined to the result.
func (e *Executor) Execute(ctx context.Context, runType domain.RunType, opts domain.CommandOptions, silent bool) (run *Run, err error) {
	opts = opts.WithType(runType)
	run = &Run{ID: e.newID(), Group: opts.Group, Key: opts.Group, Type: runType, State: StateIdle}

	logger := zerolog.Ctx(ctx).With().
		Str("component", "executor").
		Str("run_id", run.ID).
		Str("group", opts.Group).
		Str("type", runType.String()).
		Logger()
	ctx = logger.WithContext(ctx)

	def, err := e.deps.Registry.Resolve(opts.Group, opts.A11y)
	if err != nil {
		run.Err = err
		_ = run.transition(ctx, StateFailedFatal, e.clock.Now().UTC(), err.Error())
		return run, err
	}
	run.Key = group.BatchKey(def)
	_ = run.transition(ctx, StateConfigResolved, e.clock.Now().UTC(), def.Config.File)

	if opts.ResetDB {
		defer func() {
			if resetErr := e.resetDatabase(ctx); resetErr != nil {
				err = errors.Join(err, resetErr)
			}
		}()
	}

	err = e.execute(ctx, run, def, opts, silent)
	return run, err
}

func (e *Executor) execute(ctx context.Context, run *Run, def domain.GroupDefinition, opts domain.CommandOptions, silent bool) error {
	logger := zerolog.Ctx(ctx)
	flags := domain.FlagsForGroup(opts.Group)

	identifier, err := e.deps.Resolver.Resolve(ctx, &opts)
	if err != nil {
		return e.fail(ctx, run, fmt.Errorf("failed to resolve branch: %w", err), silent)
	}
	run.Identifier = identifier
	logger.Info().Str("identifier", identifier).Msg("branch resolved")

	if err := e.deps.Store.Update(ctx, run.Key, opts.Type, identifier, git.Description(opts)); err != nil {
		return e.fail(ctx, run, err, silent)
	}

	if err := e.deps.Preparer.Prepare(ctx, opts, flags); err != nil {
		return e.fail(ctx, run, err, silent)
	}
	_ = run.transition(ctx, StateEnvironmentReady, e.clock.Now().UTC(), identifier)

	if opts.Type == domain.RunTypeTest {
		stale := filepath.Join(opts.Directory, def.Config.Paths.BitmapsTest, def.Config.ID)
		if err := os.RemoveAll(stale); err != nil {
			return e.fail(ctx, run, fmt.Errorf("failed to remove stale bitmaps: %w", err), silent)
		}
		logger.Debug().Str("path", stale).Msg("removed stale test bitmaps")
	}

	_ = run.transition(ctx, StateRunning, e.clock.Now().UTC(), serviceFor(def))
	runErr := e.deps.Containers.Run(ctx, docker.RunOptions{
		Service: serviceFor(def),
		Args:    containerArgs(opts, def),
		Env:     flags.Env(),
	})

	run.Outcome = process.Classify(runErr, e.diffExitCode)
	switch run.Outcome.Kind {
	case process.OutcomeSuccess:
		_ = run.transition(ctx, StateSucceeded, e.clock.Now().UTC(), run.Outcome.String())
		e.surfaceReport(ctx, run, def, opts)
		return nil

	case process.OutcomeDiffsFound:
		_ = run.transition(ctx, StateFailedRecoverable, e.clock.Now().UTC(), run.Outcome.String())
		e.surfaceReport(ctx, run, def, opts)
		run.Err = fmt.Errorf("%s: %w", run.Key, pixelerrors.ErrDiffsFound)
		if silent {
			logger.Warn().Msg("visual differences found")
			return nil
		}
		return run.Err

	default:
		return e.fail(ctx, run, fmt.Errorf("regression run failed: %w", runErr), silent)
	}
}

// fail moves the run into its failure state. Interrupts end the run cleanly.
func (e *Executor) fail(ctx context.Context, run *Run, err error, silent bool) error {
	logger := zerolog.Ctx(ctx)

	run.Outcome = process.Classify(err, -1)
	if run.Outcome.Kind == process.OutcomeInterrupted {
		_ = run.transition(ctx, StateFailedRecoverable, e.clock.Now().UTC(), run.Outcome.String())
		logger.Warn().Msg("run interrupted")
		return nil
	}

	run.Err = err
	_ = run.transition(ctx, StateFailedFatal, e.clock.Now().UTC(), err.Error())
	logger.Error().Err(err).Msg("run failed")
	if silent {
		return nil
	}
	return err
}

func (e *Executor) surfaceReport(ctx context.Context, run *Run, def domain.GroupDefinition, opts domain.CommandOptions) {
	if opts.Type != domain.RunTypeTest {
		return
	}
	logger := zerolog.Ctx(ctx)
	run.ReportPath = filepath.Join(opts.Directory, def.Config.ReportFile())

	if err := e.deps.Annotator.Annotate(ctx, report.Request{
		RunType:        opts.Type,
		Group:          run.Key,
		ReportPath:     run.ReportPath,
		RunID:          run.ID,
		NonInteractive: e.nonInteractive,
	}); err != nil {
		logger.Warn().Err(err).Msg("report annotation failed")
	}

	if opts.Output == "" {
		return
	}
	src := constants.ServiceReporter + ":" + constants.ReporterReportPath
	if err := e.deps.Containers.Copy(ctx, src, opts.Output); err != nil {
		logger.Warn().Err(err).Str("output", opts.Output).Msg("failed to copy report")
		return
	}
	logger.Info().Str("output", opts.Output).Msg("report copied")
}

func (e *Executor) resetDatabase(ctx context.Context) error {
	cleanupCtx, cancel := ctxutil.Cleanup(ctx, e.cleanupTimeout)
	defer cancel()

	zerolog.Ctx(ctx).Info().Msg("resetting database")
	if err := e.deps.Preparer.ResetDatabase(cleanupCtx); err != nil {
		return fmt.Errorf("database reset failed: %w", err)
	}
	return nil
}

func serviceFor(def domain.GroupDefinition) string {
	if def.A11y {
		return constants.ServiceA11yRegression
	}
	return constants.ServiceVisualRegression
}

func containerArgs(opts domain.CommandOptions, def domain.GroupDefinition) []string {
	args := []string{opts.Type.String(), "--config", def.Config.File}
	if opts.LogResults || def.LogResults {
		args = append(args, "--logResults")
	}
	return args
}
