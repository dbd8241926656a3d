package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pixelerrors "github.com/mrz1836/pixel/internal/errors"
)

// testError is a custom error type used to test default branches
// in UserMessage and Actionable without matching any sentinel.
type testError struct {
	msg string
}

func (e testError) Error() string {
	return e.msg
}

func TestSentinelErrors_Messages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrProcessFailed", pixelerrors.ErrProcessFailed, "process failed"},
		{"ErrDiffsFound", pixelerrors.ErrDiffsFound, "visual differences found"},
		{"ErrInterrupted", pixelerrors.ErrInterrupted, "interrupted"},
		{"ErrUnknownGroup", pixelerrors.ErrUnknownGroup, "unknown group"},
		{"ErrReportAnnotation", pixelerrors.ErrReportAnnotation, "report annotation failed"},
		{"ErrContextPersistence", pixelerrors.ErrContextPersistence, "run context persistence failed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		pixelerrors.ErrProcessFailed,
		pixelerrors.ErrDiffsFound,
		pixelerrors.ErrInterrupted,
		pixelerrors.ErrUnknownGroup,
		pixelerrors.ErrReportAnnotation,
		pixelerrors.ErrContextPersistence,
		pixelerrors.ErrNoRefsFound,
		pixelerrors.ErrInvalidRepoBranch,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b, "%v should not match %v", a, b)
		}
	}
}

func TestWrap_PreservesErrorChain(t *testing.T) {
	wrapped := pixelerrors.Wrap(pixelerrors.ErrUnknownGroup, "resolving group")

	require.Error(t, wrapped)
	require.ErrorIs(t, wrapped, pixelerrors.ErrUnknownGroup)
	assert.Equal(t, "resolving group: unknown group", wrapped.Error())
}

func TestWrap_NilError(t *testing.T) {
	assert.NoError(t, pixelerrors.Wrap(nil, "context"))
	assert.NoError(t, pixelerrors.Wrapf(nil, "context %d", 1))
}

func TestWrapf_MessageFormat(t *testing.T) {
	wrapped := pixelerrors.Wrapf(pixelerrors.ErrProcessFailed, "group %s", "desktop")

	require.ErrorIs(t, wrapped, pixelerrors.ErrProcessFailed)
	assert.Equal(t, "group desktop: process failed", wrapped.Error())
}

func TestUserMessage(t *testing.T) {
	t.Run("wrapped sentinel", func(t *testing.T) {
		err := fmt.Errorf("test run: %w", pixelerrors.ErrDiffsFound)
		assert.Contains(t, pixelerrors.UserMessage(err), "Visual differences")
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, pixelerrors.UserMessage(nil))
	})

	t.Run("unknown error", func(t *testing.T) {
		assert.Equal(t, "something odd", pixelerrors.UserMessage(testError{msg: "something odd"}))
	})
}

func TestActionable(t *testing.T) {
	msg, action := pixelerrors.Actionable(pixelerrors.ErrUnknownGroup)
	assert.NotEmpty(t, msg)
	assert.Contains(t, action, "--help")

	msg, action = pixelerrors.Actionable(pixelerrors.ErrInterrupted)
	assert.NotEmpty(t, msg)
	assert.Empty(t, action)

	msg, action = pixelerrors.Actionable(nil)
	assert.Empty(t, msg)
	assert.Empty(t, action)
}
