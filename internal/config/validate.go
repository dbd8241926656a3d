package config

import (
	"github.com/mrz1836/pixel/internal/errors"
)

// maxConcurrency caps the process queue size.
const maxConcurrency = 16

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - docker.binary and docker.compose_file must not be empty
//   - git.binary, git.default_branch and git.core_remote must not be empty
//   - git.timeout must be positive
//   - runner.concurrency must be between 1 and 16
//   - runner.diff_exit_code must be between 1 and 255
//   - runner.cleanup_timeout must be positive
//   - report.marker must not be empty and report.stale_after must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateDockerConfig(&cfg.Docker); err != nil {
		return err
	}

	if err := validateGitConfig(&cfg.Git); err != nil {
		return err
	}

	if err := validateRunnerConfig(&cfg.Runner); err != nil {
		return err
	}

	return validateReportConfig(&cfg.Report)
}

func validateDockerConfig(cfg *DockerConfig) error {
	if cfg.Binary == "" {
		return errors.Wrap(errors.ErrConfigInvalidDocker, "docker.binary must not be empty")
	}
	if cfg.ComposeFile == "" {
		return errors.Wrap(errors.ErrConfigInvalidDocker, "docker.compose_file must not be empty")
	}
	return nil
}

func validateGitConfig(cfg *GitConfig) error {
	if cfg.Binary == "" {
		return errors.Wrap(errors.ErrConfigInvalidGit, "git.binary must not be empty")
	}
	if cfg.DefaultBranch == "" {
		return errors.Wrap(errors.ErrConfigInvalidGit, "git.default_branch must not be empty")
	}
	if cfg.CoreRemote == "" {
		return errors.Wrap(errors.ErrConfigInvalidGit, "git.core_remote must not be empty")
	}
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidGit, "git.timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.Attempts < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidGit, "git.attempts must be at least 1, got %d", cfg.Attempts)
	}
	return nil
}

func validateRunnerConfig(cfg *RunnerConfig) error {
	if cfg.Concurrency < 1 || cfg.Concurrency > maxConcurrency {
		return errors.Wrapf(errors.ErrConfigInvalidRunner,
			"runner.concurrency must be between 1 and %d, got %d", maxConcurrency, cfg.Concurrency)
	}
	if cfg.DiffExitCode < 1 || cfg.DiffExitCode > 255 {
		return errors.Wrapf(errors.ErrConfigInvalidRunner,
			"runner.diff_exit_code must be between 1 and 255, got %d", cfg.DiffExitCode)
	}
	if cfg.CleanupTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidRunner,
			"runner.cleanup_timeout must be positive, got %s", cfg.CleanupTimeout)
	}
	return nil
}

func validateReportConfig(cfg *ReportConfig) error {
	if cfg.Marker == "" {
		return errors.Wrap(errors.ErrConfigInvalidReport, "report.marker must not be empty")
	}
	if cfg.StaleAfter <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidReport,
			"report.stale_after must be positive, got %s", cfg.StaleAfter)
	}
	if cfg.Dir == "" {
		return errors.Wrap(errors.ErrConfigInvalidReport, "report.dir must not be empty")
	}
	return nil
}
