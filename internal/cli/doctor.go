package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/pixel/internal/config"
	"github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/tui"
)

// AddDoctorCommand adds the doctor command to the root command.
func AddDoctorCommand(root *cobra.Command, flags *GlobalFlags, env *Env) {
	var directory string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that docker, docker compose and git are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), env, flags, directory)
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", ".", "project directory whose configuration is used")
	root.AddCommand(cmd)
}

func runDoctor(ctx context.Context, env *Env, flags *GlobalFlags, directory string) error {
	a, err := newApp(ctx, env, directory, flags.ConfigFile)
	if err != nil {
		return err
	}

	result, err := config.NewToolDetector(a.cfg, env.Tools).Detect(ctx)
	if err != nil {
		return err
	}

	out := tui.NewOutput(env.Stdout, flags.Format)
	if flags.Format == OutputJSON {
		if err := out.JSON(result); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(result.Tools))
		for _, tool := range result.Tools {
			rows = append(rows, []string{tool.Name, tool.CurrentVersion, tool.MinVersion, tool.Status.String()})
		}
		out.Table([]string{"TOOL", "VERSION", "REQUIRED", "STATUS"}, rows)
	}

	if !result.HasMissing {
		if flags.Format != OutputJSON {
			out.Success("All tools installed")
		}
		return nil
	}

	if flags.Format != OutputJSON {
		_, _ = io.WriteString(env.Stdout, "\n"+config.FormatMissingToolsError(result.MissingTools()))
	}
	return fmt.Errorf("%w: %d", errors.ErrMissingTools, len(result.MissingTools()))
}
