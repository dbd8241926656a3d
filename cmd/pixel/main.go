// Package main provides the entry point for the pixel CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/pixel/internal/cli"
)

// Set at build time via -ldflags.
//
//nolint:gochecknoglobals // build metadata
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	err := cli.Execute(context.Background(), cli.BuildInfo{Version: version, Commit: commit, Date: date})
	os.Exit(cli.ExitCodeForError(err))
}
