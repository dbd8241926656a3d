// Package docker drives the pixel Docker Compose project.
package docker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/pixel/internal/constants"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
	"github.com/mrz1836/pixel/internal/process"
)

// DefaultBinary is the docker CLI executable.
const DefaultBinary = "docker"

// Compose runs docker compose subcommands against a single project directory.
// Every invocation goes through the process.Runner so calls are queued and logged.
type Compose struct {
	runner      process.Runner
	binary      string
	dir         string
	file        string
	interactive bool
}

// ComposeOption is a functional option for configuring Compose.
type ComposeOption func(*Compose)

// WithBinary overrides the docker executable.
func WithBinary(binary string) ComposeOption {
	return func(c *Compose) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithComposeFile overrides the compose file name inside the project directory.
func WithComposeFile(name string) ComposeOption {
	return func(c *Compose) {
		if name != "" {
			c.file = filepath.Join(c.dir, name)
		}
	}
}

// WithInteractive controls TTY allocation. When false, -T is passed to exec
// and run so compose never asks for a terminal.
func WithInteractive(interactive bool) ComposeOption {
	return func(c *Compose) {
		c.interactive = interactive
	}
}

// NewCompose creates a Compose client for the project in dir.
func NewCompose(runner process.Runner, dir string, opts ...ComposeOption) *Compose {
	c := &Compose{
		runner: runner,
		binary: DefaultBinary,
		dir:    dir,
		file:   filepath.Join(dir, constants.ComposeFileName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the project directory.
func (c *Compose) Dir() string {
	return c.dir
}

// Interactive reports whether commands may allocate a TTY.
func (c *Compose) Interactive() bool {
	return c.interactive
}

// CheckProject verifies the compose file exists.
func (c *Compose) CheckProject() error {
	if _, err := os.Stat(c.file); err != nil {
		return fmt.Errorf("%s: %w", c.file, pixelerrors.ErrNotProjectDir)
	}
	return nil
}

// Args returns the full argument list for a compose subcommand.
func (c *Compose) Args(args ...string) []string {
	out := make([]string, 0, len(args)+5)
	out = append(out, "compose", "--project-directory", c.dir, "-f", c.file)
	return append(out, args...)
}

// Up starts services in the background. No services means the whole project.
func (c *Compose) Up(ctx context.Context, services ...string) error {
	return c.UpWithEnv(ctx, nil, services...)
}

// UpWithEnv is Up with env added to the compose process environment.
// Compose interpolates it into the service definitions and recreates
// containers whose resolved environment changed.
func (c *Compose) UpWithEnv(ctx context.Context, env []string, services ...string) error {
	return c.run(ctx, env, append([]string{"up", "-d"}, services...)...)
}

// Stop stops services. No services means the whole project.
func (c *Compose) Stop(ctx context.Context, services ...string) error {
	return c.run(ctx, nil, append([]string{"stop"}, services...)...)
}

// Build rebuilds service images. No services means the whole project.
func (c *Compose) Build(ctx context.Context, services ...string) error {
	return c.run(ctx, nil, append([]string{"build"}, services...)...)
}

// Down removes all containers, images, networks and volumes of the project.
func (c *Compose) Down(ctx context.Context) error {
	return c.run(ctx, nil, "down", "--rmi", "all", "--volumes", "--remove-orphans")
}

// Copy copies files between a service container and the host.
// Container paths use the service:path form.
func (c *Compose) Copy(ctx context.Context, src, dst string) error {
	return c.run(ctx, nil, "cp", src, dst)
}

// Exec runs command inside the running service container.
// Each env entry is passed to the command with -e.
func (c *Compose) Exec(ctx context.Context, env []string, service string, command ...string) error {
	args := []string{"exec"}
	if !c.interactive {
		args = append(args, "-T")
	}
	for _, kv := range env {
		args = append(args, "-e", kv)
	}
	args = append(args, service)
	return c.run(ctx, env, append(args, command...)...)
}

// RunOptions describes a one-off container run.
type RunOptions struct {
	Service    string
	Entrypoint string
	Args       []string
	Env        []string
}

// Run starts a one-off container for opts.Service and removes it afterwards.
// The returned error is the raw runner error so callers can classify it.
func (c *Compose) Run(ctx context.Context, opts RunOptions) error {
	args := []string{"run", "--rm"}
	if !c.interactive {
		args = append(args, "-T")
	}
	if opts.Entrypoint != "" {
		args = append(args, "--entrypoint", opts.Entrypoint)
	}
	args = append(args, opts.Service)
	return c.run(ctx, opts.Env, append(args, opts.Args...)...)
}

func (c *Compose) run(ctx context.Context, env []string, args ...string) error {
	_, err := c.runner.Run(ctx, process.Command{
		Name:  c.binary,
		Args:  c.Args(args...),
		Dir:   c.dir,
		Env:   env,
		Stdin: c.interactive,
	})
	return err
}
