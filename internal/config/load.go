package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/pixel/internal/constants"
	"github.com/mrz1836/pixel/internal/errors"
)

// newViperInstance creates a new Viper instance with standard pixel configuration.
// This includes environment variable prefix (PIXEL_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// projectDir locates the project config; explicitFile, when non-empty, is
// merged last and must exist.
//
// Missing global and project config files are not errors.
func Load(ctx context.Context, projectDir, explicitFile string) (*Config, error) {
	v := newViperInstance()

	// Global config provides user-wide defaults that can be overridden per-project
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	if err := mergeOptional(v, ProjectConfigPath(projectDir), "failed to read project config file"); err != nil {
		return nil, err
	}

	if explicitFile != "" {
		v.SetConfigFile(explicitFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", explicitFile)
		}
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Int("runner.concurrency", cfg.Runner.Concurrency).
		Str("git.default_branch", cfg.Git.DefaultBranch).
		Dur("report.stale_after", cfg.Report.StaleAfter).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// loadGlobalConfig attempts to load the global config file (~/.pixel/config.yaml).
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil || !fileExists(path) {
		return nil //nolint:nilerr // a missing home directory just means no global config
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// mergeOptional merges the config file at path when it exists.
func mergeOptional(v *viper.Viper, path, msg string) error {
	if !fileExists(path) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, msg)
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setDefaults configures all default values on the Viper instance.
// IMPORTANT: Keys must match the mapstructure tag names exactly, and every
// key must have a default so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("docker.binary", d.Docker.Binary)
	v.SetDefault("docker.compose_file", d.Docker.ComposeFile)

	v.SetDefault("git.binary", d.Git.Binary)
	v.SetDefault("git.default_branch", d.Git.DefaultBranch)
	v.SetDefault("git.core_remote", d.Git.CoreRemote)
	v.SetDefault("git.release_pattern", d.Git.ReleasePattern)
	v.SetDefault("git.codex_remote", d.Git.CodexRemote)
	v.SetDefault("git.codex_repo", d.Git.CodexRepo)
	v.SetDefault("git.timeout", d.Git.Timeout.String())
	v.SetDefault("git.attempts", d.Git.Attempts)

	v.SetDefault("runner.concurrency", d.Runner.Concurrency)
	v.SetDefault("runner.diff_exit_code", d.Runner.DiffExitCode)
	v.SetDefault("runner.cleanup_timeout", d.Runner.CleanupTimeout.String())

	v.SetDefault("scripts.build_base_image", d.Scripts.BuildBaseImage)
	v.SetDefault("scripts.setup", d.Scripts.Setup)
	v.SetDefault("scripts.reset_db", d.Scripts.ResetDB)
	v.SetDefault("scripts.purge_parser_cache", d.Scripts.PurgeParserCache)

	v.SetDefault("report.marker", d.Report.Marker)
	v.SetDefault("report.stale_after", d.Report.StaleAfter.String())
	v.SetDefault("report.opener", d.Report.Opener)
	v.SetDefault("report.dir", d.Report.Dir)

	v.SetDefault("registry.extra_file", "")
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
