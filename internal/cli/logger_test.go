package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, selectLevel(true, false))
	assert.Equal(t, zerolog.WarnLevel, selectLevel(false, true))
	assert.Equal(t, zerolog.InfoLevel, selectLevel(false, false))
}

func TestInitLoggerWithWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, true, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestInitLoggerWithWriter_FlagsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, false, &buf)

	logger.Info().Msg("cloning with password=hunter2")

	assert.Contains(t, buf.String(), `"contains_filtered_data":true`)
}

func TestLogFilePath_UsesPixelHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PIXEL_HOME", home)

	path, err := LogFilePath()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "pixel.log"), path)
}

func TestCreateLogFileWriter(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PIXEL_HOME", home)

	w, err := createLogFileWriter()
	require.NoError(t, err)

	_, err = w.Write([]byte(`{"message":"token=abc123"}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.DirExists(t, filepath.Join(home, "logs"))
}
