package executor_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/pixel/internal/clock"
	"github.com/mrz1836/pixel/internal/docker"
	"github.com/mrz1836/pixel/internal/domain"
	"github.com/mrz1836/pixel/internal/environment"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/executor"
	"github.com/mrz1836/pixel/internal/git"
	"github.com/mrz1836/pixel/internal/group"
	"github.com/mrz1836/pixel/internal/process"
	"github.com/mrz1836/pixel/internal/report"
	"github.com/mrz1836/pixel/internal/runcontext"
	"github.com/mrz1836/pixel/internal/testutil"
)

// eventLog records subprocess lines and annotator calls in one sequence.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// indexOf returns the position of the first event containing substr.
func (l *eventLog) indexOf(substr string) int {
	for i, e := range l.all() {
		if strings.Contains(e, substr) {
			return i
		}
	}
	return -1
}

// orderRunner records every command line and notes whether the stale bitmap
// directory still existed when the regression container started.
type orderRunner struct {
	*testutil.RecordingRunner

	log     *eventLog
	bitmaps string
}

func (r *orderRunner) Run(ctx context.Context, c process.Command) (*process.Result, error) {
	line := testutil.Line(c)
	if strings.Contains(line, "visual-regression") {
		if _, err := os.Stat(r.bitmaps); err == nil {
			r.log.add("bitmaps still present")
		}
	}
	r.log.add(line)
	return r.RecordingRunner.Run(ctx, c)
}

type recordingAnnotator struct {
	log      *eventLog
	requests []report.Request
	err      error
}

func (a *recordingAnnotator) Annotate(_ context.Context, req report.Request) error {
	a.log.add("annotate " + req.Group)
	a.requests = append(a.requests, req)
	return a.err
}

type harness struct {
	dir       string
	log       *eventLog
	runner    *orderRunner
	annotator *recordingAnnotator
	store     *runcontext.FileStore
	exec      *executor.Executor
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	log := &eventLog{}
	runner := &orderRunner{
		RecordingRunner: testutil.NewRecordingRunner(),
		log:             log,
		bitmaps:         filepath.Join(dir, "report", "test-screenshots", "desktop", "MediaWiki"),
	}
	compose := docker.NewCompose(runner, dir)
	preparer := environment.NewPreparer(compose, runner, environment.Scripts{
		BuildBaseImage: "./build-base-regression-image.sh",
		Setup:          "/src/main.js",
		ResetDB:        "/seed.sh",
	})
	registry, err := group.Default()
	require.NoError(t, err)

	annotator := &recordingAnnotator{log: log}
	store := runcontext.NewFileStore(dir)

	exec := executor.New(executor.Deps{
		Registry:   registry,
		Resolver:   git.NewResolver(nil, git.ResolverConfig{DefaultBranch: "master"}),
		Store:      store,
		Preparer:   preparer,
		Containers: compose,
		Annotator:  annotator,
	},
		executor.WithClock(clock.Fixed(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))),
		executor.WithIDGenerator(func() string { return "run-1" }),
		executor.WithNonInteractive(true),
	)

	return &harness{dir: dir, log: log, runner: runner, annotator: annotator, store: store, exec: exec}
}

func (h *harness) options() domain.CommandOptions {
	opts := domain.DefaultCommandOptions()
	opts.Directory = h.dir
	return opts
}

func (h *harness) seedBitmaps(t *testing.T) {
	t.Helper()
	require.NoError(t, os.MkdirAll(h.runner.bitmaps, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(h.runner.bitmaps, "old.png"), []byte("png"), 0o600))
}

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func TestExecute_TestWithResetDB_Order(t *testing.T) {
	h := newHarness(t)
	h.seedBitmaps(t)

	opts := h.options()
	opts.ResetDB = true

	run, err := h.exec.Execute(testContext(), domain.RunTypeTest, opts, false)
	require.NoError(t, err)
	assert.Equal(t, executor.StateSucceeded, run.State)

	_, statErr := os.Stat(h.runner.bitmaps)
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, -1, h.log.indexOf("bitmaps still present"))

	regression := 0
	for _, line := range h.runner.Lines() {
		if strings.Contains(line, "visual-regression") {
			regression++
			assert.Contains(t, line, "run --rm -T visual-regression test --config configDesktop.js")
		}
	}
	assert.Equal(t, 1, regression)

	run1 := h.log.indexOf("visual-regression test")
	annotate := h.log.indexOf("annotate desktop")
	stop := h.log.indexOf("stop database")
	restore := h.log.indexOf("--entrypoint /seed.sh database")
	start := h.log.indexOf("up -d database")

	require.NotEqual(t, -1, run1)
	assert.Less(t, run1, annotate)
	assert.Less(t, annotate, stop)
	assert.Less(t, stop, restore)
	assert.Less(t, restore, start)
}

func TestExecute_ResetRunsWhenRegressionFails(t *testing.T) {
	h := newHarness(t)
	h.runner.FailWith("visual-regression", 3)

	opts := h.options()
	opts.ResetDB = true

	run, err := h.exec.Execute(testContext(), domain.RunTypeTest, opts, false)
	require.Error(t, err)
	require.ErrorIs(t, err, pixelerrors.ErrProcessFailed)
	assert.Equal(t, executor.StateFailedFatal, run.State)
	assert.Equal(t, process.Outcome{Kind: process.OutcomeFailed, ExitCode: 3}, run.Outcome)

	assert.NotEqual(t, -1, h.log.indexOf("stop database"))
	assert.NotEqual(t, -1, h.log.indexOf("up -d database"))
	assert.Empty(t, h.annotator.requests)
}

func TestExecute_ResetFailureJoinsPrimaryError(t *testing.T) {
	h := newHarness(t)
	h.runner.FailWith("visual-regression", 3)
	h.runner.FailWith("stop database", 1)

	opts := h.options()
	opts.ResetDB = true

	_, err := h.exec.Execute(testContext(), domain.RunTypeTest, opts, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regression run failed")
	assert.Contains(t, err.Error(), "database reset failed")
}

func TestExecute_SilentDiffsFoundStillAnnotates(t *testing.T) {
	h := newHarness(t)
	h.runner.FailWith("visual-regression", 1)

	run, err := h.exec.Execute(testContext(), domain.RunTypeTest, h.options(), true)
	require.NoError(t, err)
	assert.Equal(t, executor.StateFailedRecoverable, run.State)
	assert.Equal(t, process.OutcomeDiffsFound, run.Outcome.Kind)
	require.ErrorIs(t, run.Err, pixelerrors.ErrDiffsFound)

	require.Len(t, h.annotator.requests, 1)
	assert.Equal(t, filepath.Join(h.dir, "report", "desktop", "index.html"), h.annotator.requests[0].ReportPath)
	assert.Equal(t, "run-1", h.annotator.requests[0].RunID)
	assert.True(t, h.annotator.requests[0].NonInteractive)
}

func TestExecute_DiffsFoundInteractiveReturnsError(t *testing.T) {
	h := newHarness(t)
	h.runner.FailWith("visual-regression", 1)

	_, err := h.exec.Execute(testContext(), domain.RunTypeTest, h.options(), false)
	require.ErrorIs(t, err, pixelerrors.ErrDiffsFound)
	assert.Len(t, h.annotator.requests, 1)
}

func TestExecute_InterruptIsCleanExit(t *testing.T) {
	for _, silent := range []bool{false, true} {
		h := newHarness(t)
		h.runner.FailWith("visual-regression", 130)

		run, err := h.exec.Execute(testContext(), domain.RunTypeTest, h.options(), silent)
		require.NoError(t, err)
		assert.True(t, run.Interrupted())
		assert.Equal(t, executor.StateFailedRecoverable, run.State)
		assert.Empty(t, h.annotator.requests)
	}
}

func TestExecute_SilentFatalIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.runner.FailWith("visual-regression", 2)

	run, err := h.exec.Execute(testContext(), domain.RunTypeTest, h.options(), true)
	require.NoError(t, err)
	assert.Equal(t, executor.StateFailedFatal, run.State)
	require.ErrorIs(t, run.Err, pixelerrors.ErrProcessFailed)
}

func TestExecute_UnknownGroupMakesNoCalls(t *testing.T) {
	h := newHarness(t)

	opts := h.options()
	opts.Group = "no-such-group"
	opts.ResetDB = true

	run, err := h.exec.Execute(testContext(), domain.RunTypeTest, opts, true)
	require.ErrorIs(t, err, pixelerrors.ErrUnknownGroup)
	assert.Equal(t, executor.StateFailedFatal, run.State)
	assert.Empty(t, h.runner.Calls())
	assert.Empty(t, h.log.all())
}

func TestExecute_ReferenceSkipsAnnotationAndBitmaps(t *testing.T) {
	h := newHarness(t)
	h.seedBitmaps(t)

	run, err := h.exec.Execute(testContext(), domain.RunTypeReference, h.options(), false)
	require.NoError(t, err)
	assert.Equal(t, executor.StateSucceeded, run.State)
	assert.Empty(t, h.annotator.requests)
	assert.DirExists(t, h.runner.bitmaps)
	assert.NotEqual(t, -1, h.log.indexOf("visual-regression reference --config configDesktop.js"))
}

func TestExecute_A11yUsesAuditService(t *testing.T) {
	h := newHarness(t)

	opts := h.options()
	opts.A11y = true

	run, err := h.exec.Execute(testContext(), domain.RunTypeTest, opts, false)
	require.NoError(t, err)
	assert.Equal(t, "desktop-a11y", run.Key)
	assert.NotEqual(t, -1, h.log.indexOf("a11y-regression test --config a11y/configDesktop.js --logResults"))
	assert.Equal(t, -1, h.log.indexOf("visual-regression"))

	entry, ok, err := h.store.Get(testContext(), "desktop-a11y")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "master", entry.Test)
}

func TestExecute_RecordsRunContext(t *testing.T) {
	h := newHarness(t)

	opts := h.options()
	opts.ChangeIDs = []string{"I0123abcd"}

	_, err := h.exec.Execute(testContext(), domain.RunTypeReference, opts, false)
	require.NoError(t, err)

	entry, ok, err := h.store.Get(testContext(), "desktop")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "I0123abcd", entry.Reference)
	assert.Equal(t, " (Includes I0123abcd)", entry.Description)
}

func TestExecute_WikiLambdaFlagReachesChildren(t *testing.T) {
	h := newHarness(t)

	opts := h.options()
	opts.Group = "wikilambda"

	_, err := h.exec.Execute(testContext(), domain.RunTypeReference, opts, false)
	require.NoError(t, err)

	for _, c := range h.runner.Calls() {
		line := testutil.Line(c)
		if strings.Contains(line, "visual-regression") || strings.Contains(line, "exec") || strings.HasSuffix(line, " up -d") {
			assert.Contains(t, c.Env, "ENABLE_WIKILAMBDA=true", line)
		}
		if strings.Contains(line, " exec ") {
			assert.Contains(t, line, "-e ENABLE_WIKILAMBDA=true")
		}
	}
	assert.NotEqual(t, "true", os.Getenv("ENABLE_WIKILAMBDA"))
}

func TestExecute_PrepareFailureSkipsRun(t *testing.T) {
	h := newHarness(t)
	h.runner.FailWith("/src/main.js", 1)

	run, err := h.exec.Execute(testContext(), domain.RunTypeTest, h.options(), false)
	require.Error(t, err)
	assert.Equal(t, executor.StateFailedFatal, run.State)
	assert.Equal(t, -1, h.log.indexOf("visual-regression"))
}

func TestExecute_OutputCopiesReport(t *testing.T) {
	h := newHarness(t)

	opts := h.options()
	opts.Output = "/tmp/pixel-report"

	_, err := h.exec.Execute(testContext(), domain.RunTypeTest, opts, false)
	require.NoError(t, err)
	assert.NotEqual(t, -1, h.log.indexOf("cp visual-regression-reporter:/pixel/report /tmp/pixel-report"))
}

func TestExecute_AnnotationFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.annotator.err = pixelerrors.ErrReportAnnotation

	run, err := h.exec.Execute(testContext(), domain.RunTypeTest, h.options(), false)
	require.NoError(t, err)
	assert.Equal(t, executor.StateSucceeded, run.State)
}

func TestExecute_TransitionsAreRecorded(t *testing.T) {
	h := newHarness(t)

	run, err := h.exec.Execute(testContext(), domain.RunTypeTest, h.options(), false)
	require.NoError(t, err)

	var states []executor.State
	for _, tr := range run.Transitions {
		states = append(states, tr.To)
	}
	assert.Equal(t, []executor.State{
		executor.StateConfigResolved,
		executor.StateEnvironmentReady,
		executor.StateRunning,
		executor.StateSucceeded,
	}, states)
	assert.Equal(t, "run-1", run.ID)
}
