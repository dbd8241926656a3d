package config

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/pixel/internal/errors"
)

// MockCommandExecutor is a test double for CommandExecutor.
type MockCommandExecutor struct {
	paths   map[string]error
	outputs map[string]string
	runErrs map[string]error
}

func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		paths:   make(map[string]error),
		outputs: make(map[string]string),
		runErrs: make(map[string]error),
	}
}

func (m *MockCommandExecutor) LookPath(file string) (string, error) {
	if err, ok := m.paths[file]; ok {
		return "/usr/bin/" + file, err
	}
	return "", exec.ErrNotFound
}

func (m *MockCommandExecutor) Run(_ context.Context, name string, args ...string) (string, error) {
	key := name + " " + strings.Join(args, " ")
	if err := m.runErrs[key]; err != nil {
		return "", err
	}
	if out, ok := m.outputs[key]; ok {
		return out, nil
	}
	return "", errors.ErrCommandNotConfigured
}

func findToolByName(result *ToolDetectionResult, name string) *Tool {
	for i := range result.Tools {
		if result.Tools[i].Name == name {
			return &result.Tools[i]
		}
	}
	return nil
}

func TestToolStatus_String(t *testing.T) {
	assert.Equal(t, "installed", ToolStatusInstalled.String())
	assert.Equal(t, "missing", ToolStatusMissing.String())
	assert.Equal(t, "outdated", ToolStatusOutdated.String())
	assert.Equal(t, "unknown", ToolStatus(99).String())

	data, err := ToolStatusOutdated.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"outdated"`, string(data))
}

func TestToolDetector_Detect_AllInstalled(t *testing.T) {
	mock := NewMockCommandExecutor()
	mock.paths["docker"] = nil
	mock.paths["git"] = nil
	mock.outputs["docker --version"] = "Docker version 24.0.7, build afdd53b"
	mock.outputs["docker compose version"] = "Docker Compose version v2.23.3-desktop.2"
	mock.outputs["git --version"] = "git version 2.43.0"

	result, err := NewToolDetector(DefaultConfig(), mock).Detect(context.Background())

	require.NoError(t, err)
	assert.False(t, result.HasMissing)
	require.Len(t, result.Tools, 3)
	assert.Equal(t, "docker", result.Tools[0].Name, "order is stable")
	assert.Equal(t, "24.0.7", findToolByName(result, "docker").CurrentVersion)
	assert.Equal(t, "2.23.3", findToolByName(result, "docker compose").CurrentVersion)
	assert.Equal(t, "2.43.0", findToolByName(result, "git").CurrentVersion)
}

func TestToolDetector_Detect_MissingAndOutdated(t *testing.T) {
	mock := NewMockCommandExecutor()
	mock.paths["docker"] = nil
	mock.outputs["docker --version"] = "Docker version 19.03.1, build 74b1e89"
	mock.runErrs["docker compose version"] = exec.ErrNotFound

	result, err := NewToolDetector(DefaultConfig(), mock).Detect(context.Background())

	require.NoError(t, err)
	assert.True(t, result.HasMissing)
	assert.Equal(t, ToolStatusOutdated, findToolByName(result, "docker").Status)
	assert.Equal(t, ToolStatusMissing, findToolByName(result, "docker compose").Status)
	assert.Equal(t, ToolStatusMissing, findToolByName(result, "git").Status)
	assert.Len(t, result.MissingTools(), 3)

	msg := FormatMissingToolsError(result.MissingTools())
	assert.Contains(t, msg, "outdated (have 19.03.1, need 20.10)")
	assert.Contains(t, msg, "git: missing")
}

func TestToolDetector_Detect_UnparseableVersion(t *testing.T) {
	mock := NewMockCommandExecutor()
	mock.paths["git"] = nil
	mock.outputs["git --version"] = "something unexpected"

	result, err := NewToolDetector(DefaultConfig(), mock).Detect(context.Background())

	require.NoError(t, err)
	git := findToolByName(result, "git")
	assert.Equal(t, ToolStatusInstalled, git.Status)
	assert.Equal(t, "unknown", git.CurrentVersion)
}

func TestToolDetector_Detect_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewToolDetector(DefaultConfig(), NewMockCommandExecutor()).Detect(ctx)

	require.ErrorIs(t, err, context.Canceled)
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, -1, CompareVersions("19.03.1", "20.10"))
	assert.Equal(t, 0, CompareVersions("2.20.0", "2.20"))
	assert.Equal(t, 1, CompareVersions("2.43.0", "2.20"))
	assert.Equal(t, 0, CompareVersions("garbage", "2.20"))
}

func TestFormatMissingToolsError_Empty(t *testing.T) {
	assert.Empty(t, FormatMissingToolsError(nil))
}
