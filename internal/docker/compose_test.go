package docker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/pixel/internal/docker"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/process"
	"github.com/mrz1836/pixel/internal/testutil"
)

const projectDir = "/srv/pixel"

const composePrefix = "docker compose --project-directory /srv/pixel -f /srv/pixel/docker-compose.yml"

func TestCompose_Args(t *testing.T) {
	compose := docker.NewCompose(testutil.NewRecordingRunner(), projectDir)

	assert.Equal(t,
		[]string{"compose", "--project-directory", projectDir, "-f", projectDir + "/docker-compose.yml", "up", "-d"},
		compose.Args("up", "-d"),
	)
}

func TestCompose_Lifecycle(t *testing.T) {
	ctx := context.Background()
	runner := testutil.NewRecordingRunner()
	compose := docker.NewCompose(runner, projectDir)

	require.NoError(t, compose.Up(ctx))
	require.NoError(t, compose.Up(ctx, "database"))
	require.NoError(t, compose.Stop(ctx, "database"))
	require.NoError(t, compose.Build(ctx))
	require.NoError(t, compose.Down(ctx))
	require.NoError(t, compose.Copy(ctx, "visual-regression-reporter:/pixel/report", "/tmp/out"))

	assert.Equal(t, []string{
		composePrefix + " up -d",
		composePrefix + " up -d database",
		composePrefix + " stop database",
		composePrefix + " build",
		composePrefix + " down --rmi all --volumes --remove-orphans",
		composePrefix + " cp visual-regression-reporter:/pixel/report /tmp/out",
	}, runner.Lines())

	for _, c := range runner.Calls() {
		assert.Equal(t, projectDir, c.Dir)
		assert.False(t, c.Quiet, "compose output is streamed")
	}
}

func TestCompose_Exec(t *testing.T) {
	t.Run("non-interactive passes -T", func(t *testing.T) {
		runner := testutil.NewRecordingRunner()
		compose := docker.NewCompose(runner, projectDir)

		err := compose.Exec(context.Background(), []string{"ENABLE_WIKILAMBDA=true"}, "mediawiki", "/src/main.js", `{"type":"test"}`)

		require.NoError(t, err)
		calls := runner.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, composePrefix+` exec -T -e ENABLE_WIKILAMBDA=true mediawiki /src/main.js {"type":"test"}`, testutil.Line(calls[0]))
		assert.False(t, calls[0].Stdin)
	})

	t.Run("interactive attaches stdin", func(t *testing.T) {
		runner := testutil.NewRecordingRunner()
		compose := docker.NewCompose(runner, projectDir, docker.WithInteractive(true))

		require.NoError(t, compose.Exec(context.Background(), nil, "mediawiki", "php", "maintenance/run.php"))

		calls := runner.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, composePrefix+" exec mediawiki php maintenance/run.php", testutil.Line(calls[0]))
		assert.True(t, calls[0].Stdin)
	})
}

func TestCompose_Run(t *testing.T) {
	runner := testutil.NewRecordingRunner()
	compose := docker.NewCompose(runner, projectDir)

	require.NoError(t, compose.Run(context.Background(), docker.RunOptions{
		Service: "visual-regression",
		Args:    []string{"test", "--config", "config.js"},
	}))
	require.NoError(t, compose.Run(context.Background(), docker.RunOptions{
		Service:    "database",
		Entrypoint: "bash -c /docker-entrypoint-initdb.d/seedDb.sh",
	}))

	assert.Equal(t, []string{
		composePrefix + " run --rm -T visual-regression test --config config.js",
		composePrefix + " run --rm -T --entrypoint bash -c /docker-entrypoint-initdb.d/seedDb.sh database",
	}, runner.Lines())
}

func TestCompose_Run_ReturnsRunnerError(t *testing.T) {
	runner := testutil.NewRecordingRunner().FailWith("visual-regression", 1)
	compose := docker.NewCompose(runner, projectDir)

	err := compose.Run(context.Background(), docker.RunOptions{Service: "visual-regression"})

	require.ErrorIs(t, err, pixelerrors.ErrProcessFailed)
	assert.Equal(t, process.OutcomeDiffsFound, process.Classify(err, 1).Kind)
}

func TestCompose_Options(t *testing.T) {
	runner := testutil.NewRecordingRunner()
	compose := docker.NewCompose(runner, projectDir,
		docker.WithBinary("podman"),
		docker.WithComposeFile("compose.override.yml"),
	)

	require.NoError(t, compose.Stop(context.Background()))

	assert.Equal(t, []string{
		"podman compose --project-directory /srv/pixel -f /srv/pixel/compose.override.yml stop",
	}, runner.Lines())
	assert.Equal(t, projectDir, compose.Dir())
	assert.False(t, compose.Interactive())
}

func TestCompose_CheckProject(t *testing.T) {
	dir := t.TempDir()
	compose := docker.NewCompose(testutil.NewRecordingRunner(), dir)

	require.ErrorIs(t, compose.CheckProject(), pixelerrors.ErrNotProjectDir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "docker-compose.yml"), []byte("services: {}\n"), 0o600))
	assert.NoError(t, compose.CheckProject())
}
