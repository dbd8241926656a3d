// Package batch runs every registered group whose priority is within range,
// reference pass first then test pass, and links the results from one index
// page. A failing or panicking group is recorded and the batch moves on.
package batch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/pixel/internal/domain"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/executor"
	"github.com/mrz1836/pixel/internal/group"
	"github.com/mrz1836/pixel/internal/process"
	"github.com/mrz1836/pixel/internal/report"
)

// GroupRunner executes one group run.
type GroupRunner interface {
	Execute(ctx context.Context, runType domain.RunType, opts domain.CommandOptions, silent bool) (*executor.Run, error)
}

// GroupSelector picks the groups of a batch.
type GroupSelector interface {
	Select(maxPriority int) []domain.GroupDefinition
}

// IndexWriter writes the batch index page.
type IndexWriter interface {
	WriteIndex(ctx context.Context, entries []report.IndexEntry, nonInteractive bool) (string, error)
}

// GroupResult is the outcome of one group in a batch.
type GroupResult struct {
	Key        string
	Name       string
	Status     string
	Err        error
	ReportPath string
}

// Summary is the result of RunAll.
type Summary struct {
	Results     []GroupResult
	IndexPath   string
	Interrupted bool
}

// Succeeded lists the keys of groups that finished without failure.
// Groups with visual differences count as succeeded.
func (s *Summary) Succeeded() []string {
	var keys []string
	for _, r := range s.Results {
		if r.Status != report.StatusFailed {
			keys = append(keys, r.Key)
		}
	}
	return keys
}

// Failed lists the keys of groups that failed.
func (s *Summary) Failed() []string {
	var keys []string
	for _, r := range s.Results {
		if r.Status == report.StatusFailed {
			keys = append(keys, r.Key)
		}
	}
	return keys
}

// Driver runs batches.
type Driver struct {
	groups         GroupSelector
	runner         GroupRunner
	index          IndexWriter
	nonInteractive bool
}

// NewDriver creates a Driver.
func NewDriver(groups GroupSelector, runner GroupRunner, index IndexWriter, nonInteractive bool) *Driver {
	return &Driver{groups: groups, runner: runner, index: index, nonInteractive: nonInteractive}
}

// RunAll runs every group with priority at most opts.Priority. The only
// error returned is a failure to write the index page.
func (d *Driver) RunAll(ctx context.Context, opts domain.CommandOptions) (*Summary, error) {
	logger := zerolog.Ctx(ctx).With().Str("component", "batch").Logger()
	ctx = logger.WithContext(ctx)

	defs := d.groups.Select(opts.Priority)
	logger.Info().Int("groups", len(defs)).Int("priority", opts.Priority).Msg("starting batch")

	summary := &Summary{}
	for _, def := range defs {
		if ctx.Err() != nil {
			summary.Interrupted = true
			logger.Warn().Msg("batch stopped")
			break
		}

		result := d.runGroup(ctx, def, opts)
		summary.Results = append(summary.Results, result)
		if result.Status == report.StatusFailed {
			logger.Error().Err(result.Err).Str("group", result.Key).Msg("group failed")
		}
	}

	entries := make([]report.IndexEntry, 0, len(summary.Results))
	for _, r := range summary.Results {
		entry := report.IndexEntry{Group: r.Key, Name: r.Name, Status: r.Status, ReportPath: r.ReportPath}
		if r.Err != nil {
			entry.Error = pixelerrors.UserMessage(r.Err)
		}
		entries = append(entries, entry)
	}

	path, err := d.index.WriteIndex(ctx, entries, d.nonInteractive)
	if err != nil {
		return summary, err
	}
	summary.IndexPath = path

	logger.Info().
		Int("succeeded", len(summary.Succeeded())).
		Int("failed", len(summary.Failed())).
		Str("index", path).
		Msg("batch complete")
	return summary, nil
}

// runGroup runs the reference pass then the test pass of def in silent mode.
// The test pass is skipped when the reference pass failed.
func (d *Driver) runGroup(ctx context.Context, def domain.GroupDefinition, opts domain.CommandOptions) (result GroupResult) {
	result = GroupResult{
		Key:        group.BatchKey(def),
		Name:       def.DisplayName(),
		Status:     report.StatusOK,
		ReportPath: filepath.Join(opts.Directory, def.Config.ReportFile()),
	}

	defer func() {
		if r := recover(); r != nil {
			result.Status = report.StatusFailed
			result.Err = fmt.Errorf("%s: %w: %v", result.Key, pixelerrors.ErrGroupPanicked, r)
		}
	}()

	opts.Group = def.Key
	opts.A11y = def.A11y

	for _, runType := range []domain.RunType{domain.RunTypeReference, domain.RunTypeTest} {
		run, err := d.runner.Execute(ctx, runType, opts, true)
		switch {
		case err != nil:
			result.Status = report.StatusFailed
			result.Err = err
			return result
		case run.Interrupted():
			result.Status = report.StatusFailed
			result.Err = pixelerrors.ErrInterrupted
			return result
		case run.State == executor.StateFailedFatal:
			result.Status = report.StatusFailed
			result.Err = run.Err
			return result
		case run.Outcome.Kind == process.OutcomeDiffsFound:
			result.Status = report.StatusDiffs
		}
	}
	return result
}
