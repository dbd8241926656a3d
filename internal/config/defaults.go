package config

import (
	"time"

	"github.com/mrz1836/pixel/internal/constants"
)

// Default remote repositories.
const (
	DefaultCoreRemote     = "https://gerrit.wikimedia.org/r/mediawiki/core"
	DefaultCodexRemote    = "https://gerrit.wikimedia.org/r/design/codex"
	DefaultReleasePattern = "refs/heads/wmf/[0-9]*"
	DefaultReportMarker   = `<div id="root">`
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		Docker: DockerConfig{
			Binary:      "docker",
			ComposeFile: constants.ComposeFileName,
		},
		Git: GitConfig{
			Binary:         "git",
			DefaultBranch:  constants.MainBranch,
			CoreRemote:     DefaultCoreRemote,
			ReleasePattern: DefaultReleasePattern,
			CodexRemote:    DefaultCodexRemote,
			CodexRepo:      "design/codex",
			Timeout:        constants.DefaultRemoteTimeout,
			Attempts:       3,
		},
		Runner: RunnerConfig{
			// Concurrency: 1 keeps docker commands strictly sequential.
			Concurrency:    1,
			DiffExitCode:   constants.DiffsFoundExitCode,
			CleanupTimeout: 5 * time.Minute,
		},
		Scripts: ScriptsConfig{
			BuildBaseImage:   "./build-base-regression-image.sh",
			Setup:            "/src/main.js",
			ResetDB:          `bash -c "/docker-entrypoint-initdb.d/seedDb.sh"`,
			PurgeParserCache: "",
		},
		Report: ReportConfig{
			Marker:     DefaultReportMarker,
			StaleAfter: constants.ReportStaleAfter,
			Opener:     "",
			Dir:        constants.ReportDir,
		},
	}
}
