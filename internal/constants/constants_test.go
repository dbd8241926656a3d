package constants

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeConventions(t *testing.T) {
	assert.Equal(t, 1, DiffsFoundExitCode)
	assert.Equal(t, 130, InterruptedExitCode)
	assert.NotEqual(t, DiffsFoundExitCode, InterruptedExitCode)
}

func TestReportStaleAfter(t *testing.T) {
	assert.Equal(t, 24*time.Hour, ReportStaleAfter)
}

func TestBranchDefaults(t *testing.T) {
	assert.Equal(t, "master", MainBranch)
	assert.Equal(t, "latest-release", LatestReleaseBranch)
	assert.NotEqual(t, MainBranch, LatestReleaseBranch)
}
