// Package testutil provides testing utilities for pixel.
//
// This package contains mock errors and test doubles used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockNetwork indicates a mock network error occurred (used in tests).
	ErrMockNetwork = errors.New("network error")

	// ErrMockDockerUnavailable indicates the docker daemon could not be reached (used in tests).
	ErrMockDockerUnavailable = errors.New("cannot connect to the docker daemon")

	// ErrMockOpenerFailed indicates the report opener failed (used in tests).
	ErrMockOpenerFailed = errors.New("opener failed")
)
