package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/pixel/internal/clock"
	"github.com/mrz1836/pixel/internal/testutil"
)

// cliHarness runs pixel commands against a temporary project with a
// recording runner in place of docker and git.
type cliHarness struct {
	dir    string
	runner *testutil.RecordingRunner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	env    *Env
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()

	t.Setenv("PIXEL_HOME", t.TempDir())
	t.Setenv("NONINTERACTIVE", "1")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docker-compose.yml"), []byte("services: {}\n"), 0o600))

	h := &cliHarness{
		dir:    dir,
		runner: testutil.NewRecordingRunner(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.env = &Env{
		Runner:      h.runner,
		Stdout:      h.stdout,
		Stderr:      h.stderr,
		LogWriter:   io.Discard,
		Interactive: func() bool { return false },
		Clock:       clock.Fixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	return h
}

func (h *cliHarness) run(args ...string) error {
	return ExecuteWithEnv(context.Background(), BuildInfo{Version: "1.2.3"}, h.env, args)
}

// lines returns every recorded command line joined by newlines.
func (h *cliHarness) lines() string {
	return strings.Join(h.runner.Lines(), "\n")
}
