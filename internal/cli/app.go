package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/pixel/internal/batch"
	"github.com/mrz1836/pixel/internal/config"
	"github.com/mrz1836/pixel/internal/docker"
	"github.com/mrz1836/pixel/internal/environment"
	"github.com/mrz1836/pixel/internal/executor"
	"github.com/mrz1836/pixel/internal/git"
	"github.com/mrz1836/pixel/internal/group"
	"github.com/mrz1836/pixel/internal/process"
	"github.com/mrz1836/pixel/internal/report"
	"github.com/mrz1836/pixel/internal/runcontext"
)

// app is the object graph behind a single command invocation.
type app struct {
	dir      string
	cfg      *config.Config
	compose  *docker.Compose
	store    *runcontext.FileStore
	preparer *environment.Preparer
	executor *executor.Executor
	driver   *batch.Driver
}

// newApp loads configuration for the project in directory and wires every
// collaborator against it.
func newApp(ctx context.Context, env *Env, directory, configFile string) (*app, error) {
	logger := zerolog.Ctx(ctx)

	dir, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	loaded, err := config.LoadEnvFile(dir)
	if err != nil {
		return nil, err
	}
	if loaded {
		logger.Debug().Str("path", config.EnvFilePath(dir)).Msg("loaded env file")
	}

	cfg, err := config.Load(ctx, dir, configFile)
	if err != nil {
		return nil, err
	}

	interactive := env.Interactive != nil && env.Interactive()

	runner := env.Runner
	if runner == nil {
		runner = process.NewExecRunner(int64(cfg.Runner.Concurrency),
			process.WithOutput(env.Stdout, env.Stderr),
			process.WithLogger(*logger),
		)
	}

	compose := docker.NewCompose(runner, dir,
		docker.WithBinary(cfg.Docker.Binary),
		docker.WithComposeFile(cfg.Docker.ComposeFile),
		docker.WithInteractive(interactive),
	)

	registry, err := group.Default()
	if err != nil {
		return nil, err
	}
	if extra := cfg.Registry.ExtraFile; extra != "" {
		if !filepath.IsAbs(extra) {
			extra = filepath.Join(dir, extra)
		}
		if err := registry.ExtendFile(extra); err != nil {
			return nil, err
		}
	}

	retry := git.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Git.Attempts
	resolver := git.NewResolver(
		git.NewRemoteSource(runner, cfg.Git.Binary, cfg.Git.Timeout, git.WithRetry(retry)),
		git.ResolverConfig{
			DefaultBranch:  cfg.Git.DefaultBranch,
			CoreRemote:     cfg.Git.CoreRemote,
			ReleasePattern: cfg.Git.ReleasePattern,
			CodexRemote:    cfg.Git.CodexRemote,
			CodexRepo:      cfg.Git.CodexRepo,
		},
	)

	store := runcontext.NewFileStore(dir)

	preparer := environment.NewPreparer(compose, runner, environment.Scripts{
		BuildBaseImage:   cfg.Scripts.BuildBaseImage,
		Setup:            cfg.Scripts.Setup,
		ResetDB:          cfg.Scripts.ResetDB,
		PurgeParserCache: cfg.Scripts.PurgeParserCache,
	})

	reportDir := cfg.Report.Dir
	if !filepath.IsAbs(reportDir) {
		reportDir = filepath.Join(dir, reportDir)
	}
	annotator := report.NewAnnotator(store, report.NewCommandOpener(runner, cfg.Report.Opener), env.Clock, report.Config{
		Marker:     cfg.Report.Marker,
		StaleAfter: cfg.Report.StaleAfter,
		Dir:        reportDir,
	})

	execOpts := []executor.Option{
		executor.WithDiffExitCode(cfg.Runner.DiffExitCode),
		executor.WithCleanupTimeout(cfg.Runner.CleanupTimeout),
		executor.WithNonInteractive(!interactive),
	}
	if env.Clock != nil {
		execOpts = append(execOpts, executor.WithClock(env.Clock))
	}
	exec := executor.New(executor.Deps{
		Registry:   registry,
		Resolver:   resolver,
		Store:      store,
		Preparer:   preparer,
		Containers: compose,
		Annotator:  annotator,
	}, execOpts...)

	return &app{
		dir:      dir,
		cfg:      cfg,
		compose:  compose,
		store:    store,
		preparer: preparer,
		executor: exec,
		driver:   batch.NewDriver(registry, exec, annotator, !interactive),
	}, nil
}

// requireProject fails unless the project directory holds a compose file.
func (a *app) requireProject() error {
	return a.compose.CheckProject()
}
