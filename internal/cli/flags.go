// Package cli provides the command-line interface for pixel.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/pixel/internal/constants"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates any unrecovered failure, including invalid input.
	ExitError = 1
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = "text"
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = "json"
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Format specifies the output format (text or json).
	Format string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// ConfigFile is an explicit configuration file merged over the others.
	ConfigFile string
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVar(&flags.Format, "format", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "configuration file merged over ~/.pixel/config.yaml and .pixel.yaml")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to Viper so they can also be set with
// PIXEL_ environment variables (e.g., PIXEL_VERBOSE).
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	rootFlags := cmd.Root().PersistentFlags()

	for _, name := range []string{"format", "verbose", "quiet", "config"} {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	return nil
}

// applyBoundFlags copies values that were only set through the environment
// back into flags.
func applyBoundFlags(v *viper.Viper, flags *GlobalFlags) {
	flags.Format = v.GetString("format")
	flags.Verbose = v.GetBool("verbose")
	flags.Quiet = v.GetBool("quiet") && !flags.Verbose
	flags.ConfigFile = v.GetString("config")
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	for _, valid := range ValidOutputFormats() {
		if format == valid {
			return true
		}
	}
	return false
}

// ExitCodeForError returns the exit code for the given error: ExitSuccess (0)
// for nil and ExitError (1) for everything else. Invalid input, unknown groups
// and visual differences all exit 1.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitError
}
