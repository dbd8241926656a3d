package cli

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/tui"
)

// AddMaintenanceCommands adds reset-db, stop, update and clean to the root command.
func AddMaintenanceCommands(root *cobra.Command, flags *GlobalFlags, env *Env) {
	root.AddCommand(newResetDBCmd(flags, env))
	root.AddCommand(newStopCmd(flags, env))
	root.AddCommand(newUpdateCmd(flags, env))
	root.AddCommand(newCleanCmd(flags, env))
}

// projectCommand runs fn against the app for the --directory project.
func projectCommand(ctx context.Context, env *Env, flags *GlobalFlags, directory string, fn func(*app, tui.Output) error) error {
	a, err := newApp(ctx, env, directory, flags.ConfigFile)
	if err != nil {
		return err
	}
	if err := a.requireProject(); err != nil {
		return err
	}
	return fn(a, tui.NewOutput(env.Stdout, flags.Format))
}

// confirm asks before a destructive action. It reports false when the user
// declines. Forced and non-interactive runs are never prompted.
func confirm(env *Env, force bool, title, description string) (bool, error) {
	if force || env.Interactive == nil || !env.Interactive() || env.Confirm == nil {
		return true, nil
	}
	ok, err := env.Confirm(title, description)
	if stderrors.Is(err, errors.ErrMenuCanceled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

func newResetDBCmd(flags *GlobalFlags, env *Env) *cobra.Command {
	var directory string
	var force bool

	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Destroy all data in the database and restore the backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := confirm(env, force, "Reset the database?", "All data currently in the database is destroyed.")
			if err != nil {
				return err
			}
			if !ok {
				tui.NewOutput(env.Stdout, flags.Format).Info("Database reset canceled")
				return nil
			}
			return projectCommand(cmd.Context(), env, flags, directory, func(a *app, out tui.Output) error {
				if err := a.preparer.ResetDatabase(cmd.Context()); err != nil {
					return err
				}
				out.Success("Database restored")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", ".", "project directory containing docker-compose.yml")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

func newStopCmd(flags *GlobalFlags, env *Env) *cobra.Command {
	var directory string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop all pixel containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return projectCommand(cmd.Context(), env, flags, directory, func(a *app, out tui.Output) error {
				if err := a.compose.Stop(cmd.Context()); err != nil {
					return err
				}
				out.Success("Containers stopped")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", ".", "project directory containing docker-compose.yml")
	return cmd
}

func newUpdateCmd(flags *GlobalFlags, env *Env) *cobra.Command {
	var directory string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Pull the latest project changes and rebuild the images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return projectCommand(cmd.Context(), env, flags, directory, func(a *app, out tui.Output) error {
				if err := a.preparer.Update(cmd.Context(), a.cfg.Git.Binary); err != nil {
					return err
				}
				out.Success("Images rebuilt")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", ".", "project directory containing docker-compose.yml")
	return cmd
}

func newCleanCmd(flags *GlobalFlags, env *Env) *cobra.Command {
	var directory string
	var force bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove all pixel containers, images, networks and volumes",
		Long: `Remove all containers, images, networks and volumes of the project so the next
run starts from a clean slate, and forget the recorded run context.

If pixel keeps failing, try running this command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := confirm(env, force, "Remove all pixel containers, images and volumes?",
				"The next run rebuilds every image and restores the database.")
			if err != nil {
				return err
			}
			if !ok {
				tui.NewOutput(env.Stdout, flags.Format).Info("Clean canceled")
				return nil
			}
			return projectCommand(cmd.Context(), env, flags, directory, func(a *app, out tui.Output) error {
				if err := a.compose.Down(cmd.Context()); err != nil {
					return err
				}
				if err := a.store.Reset(cmd.Context()); err != nil {
					return err
				}
				out.Success("Project cleaned")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", ".", "project directory containing docker-compose.yml")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}
