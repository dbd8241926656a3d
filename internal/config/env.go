package config

import (
	"github.com/joho/godotenv"

	"github.com/mrz1836/pixel/internal/errors"
)

// LoadEnvFile loads the project's .env file into the process environment so
// PIXEL_* overrides and compose interpolation variables placed there take
// effect. Variables already set in the environment win. A missing file is not
// an error. It reports whether a file was loaded.
func LoadEnvFile(projectDir string) (bool, error) {
	path := EnvFilePath(projectDir)
	if !fileExists(path) {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, errors.Wrapf(err, "failed to load %s", path)
	}
	return true, nil
}
