package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/pixel/internal/batch"
	"github.com/mrz1836/pixel/internal/constants"
	"github.com/mrz1836/pixel/internal/domain"
	"github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/executor"
	"github.com/mrz1836/pixel/internal/git"
	"github.com/mrz1836/pixel/internal/group"
	"github.com/mrz1836/pixel/internal/tui"
)

// runFlags holds the flags shared by reference, test and runAll.
type runFlags struct {
	branch       string
	changeIDs    []string
	repoBranches []string
	group        string
	a11y         bool
	logResults   bool
	resetDB      bool
	priority     int
	directory    string
	output       string
}

// AddRunCommands adds reference, test and runAll to the root command.
func AddRunCommands(root *cobra.Command, flags *GlobalFlags, env *Env) {
	root.AddCommand(newRunCmd(domain.RunTypeReference, flags, env))
	root.AddCommand(newRunCmd(domain.RunTypeTest, flags, env))
	root.AddCommand(newRunAllCmd(flags, env))
}

func addRunFlags(cmd *cobra.Command, rf *runFlags) {
	cmd.Flags().StringVarP(&rf.branch, "branch", "b", constants.MainBranch,
		"branch of core and every extension and skin to check out; latest-release picks the newest wmf branch")
	cmd.Flags().StringArrayVarP(&rf.changeIDs, "change-id", "c", nil,
		"Gerrit change ID to cherry-pick (repeatable)")
	cmd.Flags().StringArrayVar(&rf.repoBranches, "repo-branch", nil,
		"check out a branch for one repository as repo:branch (repeatable)")
	cmd.Flags().BoolVar(&rf.resetDB, "reset-db", false,
		"restore the database backup after the run")
	cmd.Flags().BoolVarP(&rf.logResults, "logResults", "l", false,
		"log accessibility results to the console")
	cmd.Flags().StringVarP(&rf.directory, "directory", "d", ".",
		"project directory containing docker-compose.yml")
}

func addGroupFlags(cmd *cobra.Command, rf *runFlags) {
	cmd.Flags().StringVarP(&rf.group, "group", "g", constants.DefaultGroup, "test group to run")
	cmd.Flags().BoolVarP(&rf.a11y, "a11y", "a", false, "run the accessibility regression suite")

	_ = cmd.RegisterFlagCompletionFunc("group", func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		registry, err := group.Default()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		a11y, _ := cmd.Flags().GetBool("a11y")
		return registry.Names(a11y), cobra.ShellCompDirectiveNoFileComp
	})
}

// options builds the command options for runType, rejecting malformed input
// before anything is executed.
func (rf *runFlags) options(runType domain.RunType, dir string) (domain.CommandOptions, error) {
	for _, rb := range rf.repoBranches {
		if _, err := git.ParseRepoBranch(rb); err != nil {
			return domain.CommandOptions{}, err
		}
	}
	if rf.priority < 0 {
		return domain.CommandOptions{}, fmt.Errorf("%w: priority must not be negative", errors.ErrInvalidArgument)
	}

	opts := domain.DefaultCommandOptions()
	opts.Type = runType
	opts.Branch = rf.branch
	opts.ChangeIDs = append([]string(nil), rf.changeIDs...)
	opts.RepoBranches = append([]string(nil), rf.repoBranches...)
	opts.ResetDB = rf.resetDB
	opts.LogResults = rf.logResults
	opts.Directory = dir
	if rf.output != "" {
		output, err := filepath.Abs(rf.output)
		if err != nil {
			return domain.CommandOptions{}, fmt.Errorf("failed to resolve output path: %w", err)
		}
		opts.Output = output
	}
	if rf.group != "" {
		opts.Group = rf.group
	}
	opts.A11y = rf.a11y
	if rf.priority > 0 {
		opts.Priority = rf.priority
	}
	return opts, nil
}

func newRunCmd(runType domain.RunType, flags *GlobalFlags, env *Env) *cobra.Command {
	rf := &runFlags{}

	cmd := &cobra.Command{
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSingle(cmd.Context(), env, flags, rf, runType)
		},
	}

	switch runType {
	case domain.RunTypeReference:
		cmd.Use = "reference"
		cmd.Short = "Capture reference screenshots"
		cmd.Long = `Capture reference screenshots for a group.

Examples:
  pixel reference                       # master, desktop group
  pixel reference -b latest-release     # newest wmf branch
  pixel reference -g mobile --reset-db  # mobile group, restore database afterwards`
	case domain.RunTypeTest:
		cmd.Use = "test"
		cmd.Short = "Capture test screenshots and compare them with the reference"
		cmd.Long = `Capture test screenshots for a group and compare them with the reference.

The annotated HTML report is opened when the run finishes unless NONINTERACTIVE
is set. Visual differences exit with code 1.

Examples:
  pixel test -c I0123abcd               # test a Gerrit change
  pixel test -a -g desktop              # accessibility suite
  pixel test --output ./artifacts       # copy the report somewhere else
  pixel test --output ""                # keep the report in the container only`
		cmd.Flags().StringVarP(&rf.output, "output", "o", constants.DefaultReportOutput, "copy the report directory to this path")
	}

	addRunFlags(cmd, rf)
	addGroupFlags(cmd, rf)
	return cmd
}

func runSingle(ctx context.Context, env *Env, flags *GlobalFlags, rf *runFlags, runType domain.RunType) error {
	a, err := newApp(ctx, env, rf.directory, flags.ConfigFile)
	if err != nil {
		return err
	}
	if err := a.requireProject(); err != nil {
		return err
	}

	opts, err := rf.options(runType, a.dir)
	if err != nil {
		return err
	}

	run, err := a.executor.Execute(ctx, runType, opts, false)
	if err != nil {
		return err
	}

	printRun(tui.NewOutput(env.Stdout, flags.Format), run)
	return nil
}

func printRun(out tui.Output, run *executor.Run) {
	switch {
	case run.Interrupted():
		out.Warning(fmt.Sprintf("%s run for %s was interrupted", run.Type, run.Key))
	case run.State == executor.StateSucceeded:
		out.Success(fmt.Sprintf("%s run for %s finished (%s) in %s", run.Type, run.Key, run.Identifier, tui.FormatDuration(run.Duration())))
		if run.ReportPath != "" {
			out.Info("Report: " + run.ReportPath)
		}
	default:
		out.Warning(fmt.Sprintf("%s run for %s ended in state %s", run.Type, run.Key, run.State))
	}
}

func newRunAllCmd(flags *GlobalFlags, env *Env) *cobra.Command {
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "runAll",
		Short: "Run reference and test for every group up to a priority",
		Long: `Run the reference pass then the test pass for every group, including the
accessibility groups, whose priority is at most --priority.

A failing group is recorded and the batch moves on. An index page linking
every report is written to the report directory.

Examples:
  pixel runAll                          # priority 1 groups
  pixel runAll -p 2 -c I0123abcd        # priority 1 and 2 groups against a change`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd.Context(), env, flags, rf)
		},
	}

	addRunFlags(cmd, rf)
	cmd.Flags().IntVarP(&rf.priority, "priority", "p", constants.DefaultPriority,
		"run every group whose priority is at most this value")
	return cmd
}

func runBatch(ctx context.Context, env *Env, flags *GlobalFlags, rf *runFlags) error {
	a, err := newApp(ctx, env, rf.directory, flags.ConfigFile)
	if err != nil {
		return err
	}
	if err := a.requireProject(); err != nil {
		return err
	}

	opts, err := rf.options(domain.RunTypeTest, a.dir)
	if err != nil {
		return err
	}

	summary, err := a.driver.RunAll(ctx, opts)
	if summary != nil {
		printSummary(env.Stdout, flags.Format, summary)
	}
	return err
}

func printSummary(w io.Writer, format string, summary *batch.Summary) {
	out := tui.NewOutput(w, format)

	rows := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		status := r.Status
		if format != OutputJSON {
			status = tui.RenderStatus(r.Status)
		}
		detail := ""
		if r.Err != nil {
			detail = errors.UserMessage(r.Err)
		}
		rows = append(rows, []string{r.Key, status, detail})
	}
	out.Table([]string{"GROUP", "STATUS", "DETAIL"}, rows)

	if summary.Interrupted {
		out.Warning("Batch interrupted before every group ran")
	}
	if summary.IndexPath != "" {
		out.Info("Index: " + summary.IndexPath)
	}
	if failed := summary.Failed(); len(failed) > 0 {
		out.Warning(fmt.Sprintf("%d of %d groups failed", len(failed), len(summary.Results)))
		return
	}
	out.Success(fmt.Sprintf("%d groups finished", len(summary.Results)))
}
