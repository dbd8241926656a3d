package cli

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/pixel/internal/errors"
)

// fakeTools answers version checks from a fixed table.
type fakeTools struct {
	output map[string]string
}

func (f *fakeTools) LookPath(file string) (string, error) {
	if file == "missing-git" {
		return "", exec.ErrNotFound
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeTools) Run(_ context.Context, name string, args ...string) (string, error) {
	key := name
	if len(args) > 0 {
		key += " " + args[0]
	}
	return f.output[key], nil
}

func TestDoctor_AllInstalled(t *testing.T) {
	h := newCLIHarness(t)
	h.env.Tools = &fakeTools{output: map[string]string{
		"docker --version": "Docker version 27.1.1, build 6312585",
		"docker compose":   "Docker Compose version v2.29.1",
		"git --version":    "git version 2.45.2",
	}}

	require.NoError(t, h.run("doctor", "-d", h.dir))

	out := h.stdout.String()
	assert.Contains(t, out, "27.1.1")
	assert.Contains(t, out, "2.29.1")
	assert.Contains(t, out, "All tools installed")
}

func TestDoctor_MissingTool(t *testing.T) {
	h := newCLIHarness(t)
	t.Setenv("PIXEL_GIT_BINARY", "missing-git")
	h.env.Tools = &fakeTools{output: map[string]string{
		"docker --version": "Docker version 27.1.1, build 6312585",
		"docker compose":   "Docker Compose version v2.29.1",
	}}

	err := h.run("doctor", "-d", h.dir)

	require.ErrorIs(t, err, errors.ErrMissingTools)
	assert.Contains(t, h.stdout.String(), "Install Git")
}
