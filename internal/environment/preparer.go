// Package environment brings the Docker stack into the state a regression
// run needs: base image built, containers up, and the wiki checked out at the
// requested branch.
package environment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/pixel/internal/constants"
	"github.com/mrz1836/pixel/internal/docker"
	"github.com/mrz1836/pixel/internal/domain"
	"github.com/mrz1836/pixel/internal/process"
)

// Scripts names the scripts the Preparer runs.
type Scripts struct {
	// BuildBaseImage is a host shell command; empty skips the step.
	BuildBaseImage string
	// Setup runs inside the mediawiki container with the options JSON.
	Setup string
	// ResetDB is the database container entrypoint that restores the backup.
	ResetDB string
	// PurgeParserCache runs inside the mediawiki container; empty skips it.
	PurgeParserCache string
}

// Preparer drives the environment setup sequence.
type Preparer struct {
	compose *docker.Compose
	runner  process.Runner
	scripts Scripts
}

// NewPreparer creates a Preparer.
func NewPreparer(compose *docker.Compose, runner process.Runner, scripts Scripts) *Preparer {
	return &Preparer{compose: compose, runner: runner, scripts: scripts}
}

// Prepare builds the base image, starts the stack and runs the setup script.
// Steps run in order and the first failure stops the sequence.
func (p *Preparer) Prepare(ctx context.Context, opts domain.CommandOptions, flags domain.FeatureFlags) error {
	logger := zerolog.Ctx(ctx).With().Str("component", "environment").Logger()

	if err := p.BuildBaseImage(ctx); err != nil {
		return err
	}

	logger.Info().Msg("starting containers")
	if err := p.compose.UpWithEnv(ctx, flags.Env()); err != nil {
		return fmt.Errorf("failed to start containers: %w", err)
	}

	payload, err := opts.JSON()
	if err != nil {
		return err
	}

	logger.Info().
		Str("branch", opts.Branch).
		Strs("change_ids", opts.ChangeIDs).
		Bool("enable_wikilambda", flags.EnableWikiLambda).
		Msg("preparing wiki")
	if err := p.compose.Exec(ctx, flags.Env(), constants.ServiceMediaWiki, p.scripts.Setup, payload); err != nil {
		return fmt.Errorf("setup script failed: %w", err)
	}

	if p.scripts.PurgeParserCache != "" {
		logger.Debug().Msg("purging parser cache")
		cmd := strings.Fields(p.scripts.PurgeParserCache)
		if err := p.compose.Exec(ctx, flags.Env(), constants.ServiceMediaWiki, cmd...); err != nil {
			return fmt.Errorf("failed to purge parser cache: %w", err)
		}
	}

	return nil
}

// BuildBaseImage runs the base image build script from the project directory.
func (p *Preparer) BuildBaseImage(ctx context.Context) error {
	if p.scripts.BuildBaseImage == "" {
		return nil
	}
	zerolog.Ctx(ctx).Info().Str("component", "environment").Msg("building base regression image")

	cmd := process.ShellCommand(p.compose.Dir(), p.scripts.BuildBaseImage)
	cmd.Quiet = false
	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("failed to build base image: %w", err)
	}
	return nil
}

// ResetDatabase restores the database from the backup baked into its image.
// The server is stopped first because the backup is a physical copy. Once the
// stop succeeded, the database is started again even if the restore failed;
// both errors are returned.
func (p *Preparer) ResetDatabase(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("component", "environment").Logger()
	logger.Info().Msg("resetting database")

	if err := p.compose.Stop(ctx, constants.ServiceDatabase); err != nil {
		return fmt.Errorf("failed to stop database: %w", err)
	}

	restoreErr := p.compose.Run(ctx, docker.RunOptions{
		Service:    constants.ServiceDatabase,
		Entrypoint: p.scripts.ResetDB,
	})
	if restoreErr != nil {
		restoreErr = fmt.Errorf("failed to restore database: %w", restoreErr)
	}

	var startErr error
	if err := p.compose.Up(ctx, constants.ServiceDatabase); err != nil {
		startErr = fmt.Errorf("failed to start database: %w", err)
	}

	return errors.Join(restoreErr, startErr)
}

// Update rebuilds the project images after pulling the latest project code.
func (p *Preparer) Update(ctx context.Context, gitBinary string) error {
	logger := zerolog.Ctx(ctx).With().Str("component", "environment").Logger()

	logger.Info().Msg("pulling latest changes")
	if _, err := p.runner.Run(ctx, process.Command{
		Name: gitBinary,
		Args: []string{"pull"},
		Dir:  p.compose.Dir(),
	}); err != nil {
		return fmt.Errorf("git pull failed: %w", err)
	}

	logger.Info().Msg("rebuilding images")
	if err := p.compose.Build(ctx); err != nil {
		return fmt.Errorf("failed to rebuild images: %w", err)
	}

	return p.BuildBaseImage(ctx)
}
