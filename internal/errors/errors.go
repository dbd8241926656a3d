// Package errors provides centralized error handling for pixel.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrProcessFailed indicates that an external command (docker, git, a setup
	// script) exited with a non-zero code.
	ErrProcessFailed = errors.New("process failed")

	// ErrDiffsFound indicates that the regression container finished and
	// reported visual differences against the reference screenshots.
	ErrDiffsFound = errors.New("visual differences found")

	// ErrInterrupted indicates that a child process was terminated by an
	// interrupt signal (Ctrl+C).
	ErrInterrupted = errors.New("interrupted")

	// ErrUnknownGroup indicates that the requested test group is not registered.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrReportAnnotation indicates that the HTML report could not be read,
	// annotated, or written back. This error is never fatal.
	ErrReportAnnotation = errors.New("report annotation failed")

	// ErrContextPersistence indicates that the run context file could not be written.
	ErrContextPersistence = errors.New("run context persistence failed")

	// ErrNoRefsFound indicates that a remote repository returned no matching refs.
	ErrNoRefsFound = errors.New("no matching refs found")

	// ErrInvalidRepoBranch indicates a --repo-branch value that is not in repo:branch form.
	ErrInvalidRepoBranch = errors.New("invalid repo branch")

	// ErrInvalidRunType indicates a run type other than reference or test.
	ErrInvalidRunType = errors.New("invalid run type")

	// ErrInvalidScenarioConfig indicates a group's scenario configuration failed validation.
	ErrInvalidScenarioConfig = errors.New("invalid scenario configuration")

	// ErrDuplicateGroup indicates a group key is registered twice in the same table.
	ErrDuplicateGroup = errors.New("group already registered")

	// ErrInvalidTransition indicates a run state change that the executor does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGroupPanicked indicates that a group run in a batch panicked and was recovered.
	ErrGroupPanicked = errors.New("group run panicked")

	// ErrMissingTools indicates that docker, docker compose or git is missing or too old.
	ErrMissingTools = errors.New("required tools missing")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidDocker indicates an invalid Docker configuration value.
	ErrConfigInvalidDocker = errors.New("invalid Docker configuration")

	// ErrConfigInvalidGit indicates an invalid Git configuration value.
	ErrConfigInvalidGit = errors.New("invalid Git configuration")

	// ErrConfigInvalidRunner indicates an invalid process runner configuration value.
	ErrConfigInvalidRunner = errors.New("invalid runner configuration")

	// ErrConfigInvalidReport indicates an invalid report configuration value.
	ErrConfigInvalidReport = errors.New("invalid report configuration")

	// ErrCommandNotConfigured indicates that a mock command was not configured in tests.
	ErrCommandNotConfigured = errors.New("command not configured")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrNotProjectDir indicates the project directory has no docker-compose.yml.
	ErrNotProjectDir = errors.New("not a pixel project directory")

	// ErrOperationCanceled indicates the user canceled an operation.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrMenuCanceled indicates that the user canceled a prompt.
	ErrMenuCanceled = errors.New("menu canceled by user")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
)
