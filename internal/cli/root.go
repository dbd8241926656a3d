package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/pixel/internal/clock"
	"github.com/mrz1836/pixel/internal/config"
	"github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/process"
	"github.com/mrz1836/pixel/internal/signal"
	"github.com/mrz1836/pixel/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// IMPORTANT: This function MUST only be called after the root command's
// PersistentPreRunE has executed. Calling it before initialization will
// return a zero-value logger that discards all log output.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// Env holds the process-level collaborators of the CLI. Tests replace them to
// run commands without docker, git or a terminal.
type Env struct {
	// Runner executes external commands. Nil builds an ExecRunner from config.
	Runner process.Runner
	// Stdout receives command output.
	Stdout io.Writer
	// Stderr receives error output.
	Stderr io.Writer
	// LogWriter, when set, receives all log output instead of the console and log file.
	LogWriter io.Writer
	// Confirm asks a yes/no question.
	Confirm func(title, description string) (bool, error)
	// Interactive reports whether prompts, TTYs and report opening are allowed.
	Interactive func() bool
	// Clock stamps reports. Nil uses the system clock.
	Clock clock.Clock
	// Tools runs the prerequisite checks of `pixel doctor`. Nil uses os/exec.
	Tools config.CommandExecutor
}

// DefaultEnv returns the Env used by the pixel binary.
func DefaultEnv() *Env {
	return &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Confirm: func(title, description string) (bool, error) {
			return tui.Confirm(title, description, false)
		},
		Interactive: tui.IsInteractive,
	}
}

// newRootCmd creates and returns the root command for the pixel CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo, env *Env) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "pixel",
		Short: "Visual regression testing for MediaWiki",
		Long: `pixel captures screenshots of wiki pages in Docker containers and compares
them against reference screenshots.

Typical workflow:
  pixel reference                 # capture the baseline from master
  pixel test -c I0123abcd         # capture a change and compare
  pixel runAll -p 2               # reference and test every group up to priority 2`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			applyBoundFlags(v, flags)

			if !IsValidOutputFormat(flags.Format) {
				return fmt.Errorf("%w: format %q must be one of %v", errors.ErrInvalidArgument, flags.Format, ValidOutputFormats())
			}

			tui.CheckNoColor()

			var logger zerolog.Logger
			if env.LogWriter != nil {
				logger = InitLoggerWithWriter(flags.Verbose, flags.Quiet, env.LogWriter)
			} else {
				logger = InitLogger(flags.Verbose, flags.Quiet)
			}

			globalLoggerMu.Lock()
			globalLogger = logger
			globalLoggerMu.Unlock()

			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)

	AddGlobalFlags(cmd, flags)

	AddRunCommands(cmd, flags, env)
	AddMaintenanceCommands(cmd, flags, env)
	AddContextCommand(cmd, flags, env)
	AddDoctorCommand(cmd, flags, env)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// SIGINT and SIGTERM cancel the command context with ErrInterrupted as cause.
// Errors are printed to stderr before being returned.
func Execute(ctx context.Context, info BuildInfo) error {
	return ExecuteWithEnv(ctx, info, DefaultEnv(), os.Args[1:])
}

// ExecuteWithEnv runs the root command with args against env.
func ExecuteWithEnv(ctx context.Context, info BuildInfo, env *Env, args []string) error {
	handler := signal.NewHandler(ctx)
	defer handler.Stop()
	defer CloseLogFile()

	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info, env)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(handler.Context())
	if err != nil {
		tui.NewOutput(env.Stderr, errorFormat(flags)).Error(err)
	}
	return err
}

// errorFormat picks the output format for the final error message.
func errorFormat(flags *GlobalFlags) string {
	if flags.Format == OutputJSON {
		return tui.FormatJSON
	}
	return tui.FormatText
}
