// Package config provides configuration management for pixel with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (applied by the cli package)
//  2. Environment variables (PIXEL_* prefix, including values from the project .env file)
//  3. Explicit config file (--config)
//  4. Project config (<project>/.pixel.yaml)
//  5. Global config (~/.pixel/config.yaml)
//  6. Built-in defaults
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for pixel.
type Config struct {
	// Docker contains settings for the Docker Compose project.
	Docker DockerConfig `yaml:"docker" mapstructure:"docker"`

	// Git contains settings for branch resolution against remote repositories.
	Git GitConfig `yaml:"git" mapstructure:"git"`

	// Runner contains settings for external process execution.
	Runner RunnerConfig `yaml:"runner" mapstructure:"runner"`

	// Scripts names the scripts pixel runs on the host and inside containers.
	Scripts ScriptsConfig `yaml:"scripts" mapstructure:"scripts"`

	// Report contains settings for HTML report annotation and opening.
	Report ReportConfig `yaml:"report" mapstructure:"report"`

	// Registry contains settings for the test group registry.
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
}

// DockerConfig contains settings for the Docker Compose project.
type DockerConfig struct {
	// Binary is the docker executable.
	// Default: "docker"
	Binary string `yaml:"binary" mapstructure:"binary"`

	// ComposeFile is the compose file name inside the project directory.
	// Default: "docker-compose.yml"
	ComposeFile string `yaml:"compose_file" mapstructure:"compose_file"`
}

// GitConfig contains settings for branch resolution.
type GitConfig struct {
	// Binary is the git executable.
	// Default: "git"
	Binary string `yaml:"binary" mapstructure:"binary"`

	// DefaultBranch is tested when no branch or change is requested.
	// Default: "master"
	DefaultBranch string `yaml:"default_branch" mapstructure:"default_branch"`

	// CoreRemote is the wiki core repository listed for latest-release.
	CoreRemote string `yaml:"core_remote" mapstructure:"core_remote"`

	// ReleasePattern selects the release branches on CoreRemote.
	// Default: "refs/heads/wmf/[0-9]*"
	ReleasePattern string `yaml:"release_pattern" mapstructure:"release_pattern"`

	// CodexRemote is the design-system repository whose newest tag is pinned
	// for latest-release runs. Empty disables pinning.
	CodexRemote string `yaml:"codex_remote" mapstructure:"codex_remote"`

	// CodexRepo is the repo name used in the design-system override.
	// Default: "design/codex"
	CodexRepo string `yaml:"codex_repo" mapstructure:"codex_repo"`

	// Timeout bounds each remote listing attempt.
	// Default: 60 seconds
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Attempts is how often a failed remote listing is tried in total.
	// Default: 3
	Attempts int `yaml:"attempts" mapstructure:"attempts"`
}

// RunnerConfig contains settings for external process execution.
type RunnerConfig struct {
	// Concurrency is the number of external commands allowed to run at once.
	// Default: 1 (docker commands never overlap)
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`

	// DiffExitCode is the exit code the regression container uses to report
	// visual differences.
	// Default: 1
	DiffExitCode int `yaml:"diff_exit_code" mapstructure:"diff_exit_code"`

	// CleanupTimeout bounds the database reset that runs after a test run,
	// including after an interrupt.
	// Default: 5 minutes
	CleanupTimeout time.Duration `yaml:"cleanup_timeout" mapstructure:"cleanup_timeout"`
}

// ScriptsConfig names the scripts pixel invokes.
type ScriptsConfig struct {
	// BuildBaseImage is a shell command run on the host, in the project
	// directory, to build the base regression image. Empty skips the step.
	BuildBaseImage string `yaml:"build_base_image" mapstructure:"build_base_image"`

	// Setup is executed in the mediawiki container with the run options as JSON.
	// Default: "/src/main.js"
	Setup string `yaml:"setup" mapstructure:"setup"`

	// ResetDB is the database container entrypoint that restores the backup.
	ResetDB string `yaml:"reset_db" mapstructure:"reset_db"`

	// PurgeParserCache is executed in the mediawiki container after setup.
	// Empty skips the step.
	PurgeParserCache string `yaml:"purge_parser_cache" mapstructure:"purge_parser_cache"`
}

// ReportConfig contains settings for report annotation.
type ReportConfig struct {
	// Marker is the HTML element the banner is inserted after.
	// Default: `<div id="root">`
	Marker string `yaml:"marker" mapstructure:"marker"`

	// StaleAfter is the age after which the banner marks the report as outdated.
	// Default: 24 hours
	StaleAfter time.Duration `yaml:"stale_after" mapstructure:"stale_after"`

	// Opener is the command used to open reports. Empty picks the platform
	// default ("open" on macOS, "xdg-open" elsewhere).
	Opener string `yaml:"opener" mapstructure:"opener"`

	// Dir is the report directory, relative to the project, that holds the
	// batch index page.
	// Default: "report"
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// RegistryConfig contains settings for the group registry.
type RegistryConfig struct {
	// ExtraFile is a YAML file with additional groups. Relative paths are
	// resolved against the project directory.
	ExtraFile string `yaml:"extra_file" mapstructure:"extra_file"`
}
