package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/pixel/internal/batch"
	"github.com/mrz1836/pixel/internal/domain"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/executor"
	"github.com/mrz1836/pixel/internal/group"
	"github.com/mrz1836/pixel/internal/process"
	"github.com/mrz1836/pixel/internal/report"
	"github.com/mrz1836/pixel/internal/runcontext"
)

type call struct {
	runType domain.RunType
	group   string
	a11y    bool
	silent  bool
}

// scriptedRunner returns canned runs per group key.
type scriptedRunner struct {
	calls  []call
	panics map[string]bool
	errs   map[string]error
	fatal  map[string]bool
	diffs  map[string]bool
	cancel context.CancelFunc
}

func (r *scriptedRunner) Execute(_ context.Context, runType domain.RunType, opts domain.CommandOptions, silent bool) (*executor.Run, error) {
	r.calls = append(r.calls, call{runType: runType, group: opts.Group, a11y: opts.A11y, silent: silent})
	if r.panics[opts.Group] {
		panic("boom")
	}
	if err := r.errs[opts.Group]; err != nil {
		return &executor.Run{State: executor.StateFailedFatal}, err
	}
	if r.cancel != nil {
		r.cancel()
	}

	run := &executor.Run{Group: opts.Group, Type: runType, State: executor.StateSucceeded}
	switch {
	case r.fatal[opts.Group]:
		run.State = executor.StateFailedFatal
		run.Outcome = process.Outcome{Kind: process.OutcomeFailed, ExitCode: 2}
		run.Err = pixelerrors.ErrProcessFailed
	case r.diffs[opts.Group] && runType == domain.RunTypeTest:
		run.State = executor.StateFailedRecoverable
		run.Outcome = process.Outcome{Kind: process.OutcomeDiffsFound}
	}
	return run, nil
}

type staticGroups []domain.GroupDefinition

func (g staticGroups) Select(maxPriority int) []domain.GroupDefinition {
	var out []domain.GroupDefinition
	for _, d := range g {
		if d.Priority <= maxPriority {
			out = append(out, d)
		}
	}
	return out
}

func definition(key string, priority int) domain.GroupDefinition {
	return domain.GroupDefinition{
		Key:      key,
		Priority: priority,
		Config: domain.ScenarioConfig{
			ID:    "MediaWiki",
			File:  "config" + key + ".js",
			Paths: domain.ScenarioPaths{BitmapsTest: "report/test-screenshots/" + key, HTMLReport: "report/" + key},
		},
	}
}

type fixture struct {
	dir    string
	runner *scriptedRunner
	opener *recordingOpener
	driver *batch.Driver
}

type recordingOpener struct {
	opened []string
}

func (o *recordingOpener) Open(_ context.Context, target string) error {
	o.opened = append(o.opened, target)
	return nil
}

func newFixture(t *testing.T, groups staticGroups, nonInteractive bool) *fixture {
	t.Helper()
	dir := t.TempDir()
	runner := &scriptedRunner{
		panics: map[string]bool{},
		errs:   map[string]error{},
		fatal:  map[string]bool{},
		diffs:  map[string]bool{},
	}
	opener := &recordingOpener{}
	annotator := report.NewAnnotator(runcontext.NewFileStore(dir), opener, nil, report.Config{
		Marker: `<div id="root">`,
		Dir:    filepath.Join(dir, "report"),
	})
	return &fixture{
		dir:    dir,
		runner: runner,
		opener: opener,
		driver: batch.NewDriver(groups, runner, annotator, nonInteractive),
	}
}

func (f *fixture) options(priority int) domain.CommandOptions {
	opts := domain.DefaultCommandOptions()
	opts.Directory = f.dir
	opts.Priority = priority
	return opts
}

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func TestRunAll_PanickingGroupDoesNotStopBatch(t *testing.T) {
	f := newFixture(t, staticGroups{definition("alpha", 1), definition("beta", 1)}, true)
	f.runner.panics["alpha"] = true

	summary, err := f.driver.RunAll(testContext(), f.options(1))
	require.NoError(t, err)

	assert.Equal(t, []string{"beta"}, summary.Succeeded())
	assert.Equal(t, []string{"alpha"}, summary.Failed())
	require.ErrorIs(t, summary.Results[0].Err, pixelerrors.ErrGroupPanicked)

	data, err := os.ReadFile(summary.IndexPath) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Contains(t, string(data), "beta")
	assert.Contains(t, string(data), "alpha")
	assert.Contains(t, string(data), `class="status-failed"`)
}

func TestRunAll_ReferenceThenTestSilently(t *testing.T) {
	f := newFixture(t, staticGroups{definition("alpha", 1), definition("beta", 2)}, true)

	_, err := f.driver.RunAll(testContext(), f.options(2))
	require.NoError(t, err)

	assert.Equal(t, []call{
		{runType: domain.RunTypeReference, group: "alpha", silent: true},
		{runType: domain.RunTypeTest, group: "alpha", silent: true},
		{runType: domain.RunTypeReference, group: "beta", silent: true},
		{runType: domain.RunTypeTest, group: "beta", silent: true},
	}, f.runner.calls)
}

func TestRunAll_PriorityFilter(t *testing.T) {
	f := newFixture(t, staticGroups{definition("alpha", 1), definition("beta", 3)}, true)

	summary, err := f.driver.RunAll(testContext(), f.options(1))
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "alpha", summary.Results[0].Key)
}

func TestRunAll_A11yGroupsUseSuffixedKey(t *testing.T) {
	a11y := definition("desktop", 1)
	a11y.A11y = true
	f := newFixture(t, staticGroups{definition("desktop", 1), a11y}, true)

	summary, err := f.driver.RunAll(testContext(), f.options(1))
	require.NoError(t, err)

	assert.Equal(t, []string{"desktop", "desktop-a11y"}, summary.Succeeded())
	assert.True(t, f.runner.calls[2].a11y)
	assert.Equal(t, "desktop", f.runner.calls[2].group)
}

func TestRunAll_FatalReferenceSkipsTest(t *testing.T) {
	f := newFixture(t, staticGroups{definition("alpha", 1)}, true)
	f.runner.fatal["alpha"] = true

	summary, err := f.driver.RunAll(testContext(), f.options(1))
	require.NoError(t, err)
	assert.Len(t, f.runner.calls, 1)
	assert.Equal(t, []string{"alpha"}, summary.Failed())
}

func TestRunAll_ExecuteErrorIsRecorded(t *testing.T) {
	f := newFixture(t, staticGroups{definition("alpha", 1), definition("beta", 1)}, true)
	f.runner.errs["alpha"] = pixelerrors.ErrUnknownGroup

	summary, err := f.driver.RunAll(testContext(), f.options(1))
	require.NoError(t, err)
	require.ErrorIs(t, summary.Results[0].Err, pixelerrors.ErrUnknownGroup)
	assert.Equal(t, []string{"beta"}, summary.Succeeded())
}

func TestRunAll_DiffsAreNotFailures(t *testing.T) {
	f := newFixture(t, staticGroups{definition("alpha", 1)}, true)
	f.runner.diffs["alpha"] = true

	summary, err := f.driver.RunAll(testContext(), f.options(1))
	require.NoError(t, err)
	assert.Equal(t, report.StatusDiffs, summary.Results[0].Status)
	assert.Empty(t, summary.Failed())
}

func TestRunAll_OpensIndexWhenInteractive(t *testing.T) {
	f := newFixture(t, staticGroups{definition("alpha", 1)}, false)

	summary, err := f.driver.RunAll(testContext(), f.options(1))
	require.NoError(t, err)
	assert.Equal(t, []string{summary.IndexPath}, f.opener.opened)
}

func TestRunAll_StopsWhenCanceled(t *testing.T) {
	f := newFixture(t, staticGroups{definition("alpha", 1), definition("beta", 1)}, true)
	ctx, cancel := context.WithCancel(testContext())
	defer cancel()
	f.runner.cancel = cancel

	summary, err := f.driver.RunAll(ctx, f.options(1))
	require.NoError(t, err)
	assert.True(t, summary.Interrupted)
	assert.Len(t, summary.Results, 1)
}

func TestRunAll_IndexWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "report")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o600))

	annotator := report.NewAnnotator(runcontext.NewFileStore(dir), nil, nil, report.Config{Dir: blocker})
	runner := &scriptedRunner{}
	driver := batch.NewDriver(staticGroups{definition("alpha", 1)}, runner, annotator, true)

	opts := domain.DefaultCommandOptions()
	opts.Directory = dir
	summary, err := driver.RunAll(testContext(), opts)
	require.Error(t, err)
	require.NotNil(t, summary)
	assert.Len(t, summary.Results, 1)
}

func TestRunAll_WithRegistry(t *testing.T) {
	registry, err := group.Default()
	require.NoError(t, err)
	f := newFixture(t, nil, true)
	driver := batch.NewDriver(registry, f.runner, report.NewAnnotator(runcontext.NewFileStore(f.dir), nil, nil, report.Config{Dir: filepath.Join(f.dir, "report")}), true)

	summary, err := driver.RunAll(testContext(), f.options(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"desktop", "mobile"}, summary.Succeeded())
}
