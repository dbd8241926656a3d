package config

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/pixel/internal/constants"
	"github.com/mrz1836/pixel/internal/errors"
)

// GlobalConfigDir returns the path to the global pixel directory.
// This is ~/.pixel unless PIXEL_HOME is set.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	if dir := os.Getenv(constants.EnvPixelHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.PixelHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "get global config path")
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// LogDir returns the directory holding the CLI log file.
func LogDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}

// ProjectConfigPath returns the project configuration file inside projectDir.
func ProjectConfigPath(projectDir string) string {
	return filepath.Join(projectDir, constants.ProjectConfigName)
}

// EnvFilePath returns the dotenv file inside projectDir.
func EnvFilePath(projectDir string) string {
	return filepath.Join(projectDir, constants.EnvFileName)
}
