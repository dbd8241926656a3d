// Package runcontext persists, per test group, which branches were last used
// for the reference and test runs. The record lives in context.json in the
// project directory and feeds the report banner.
//
// Writes replace the whole file atomically. There is no locking: pixel is a
// single-operator tool and concurrent invocations against one project
// directory are not supported.
package runcontext

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/pixel/internal/constants"
	"github.com/mrz1836/pixel/internal/ctxutil"
	"github.com/mrz1836/pixel/internal/domain"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
)

const filePerm = 0o644

// Store defines the interface for run context persistence operations.
type Store interface {
	// Load returns the whole run context. A missing or unreadable file yields
	// an empty context.
	Load(ctx context.Context) (domain.RunContext, error)

	// Update records identifier for runType in group's entry and persists the
	// whole context. Reference runs also replace the entry's description.
	Update(ctx context.Context, group string, runType domain.RunType, identifier, description string) error

	// Get returns a copy of group's entry and whether it exists.
	Get(ctx context.Context, group string) (domain.ContextEntry, bool, error)

	// Reset removes the context file.
	Reset(ctx context.Context) error

	// Path returns the location of the context file.
	Path() string
}

// FileStore implements Store using a JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore for the project directory dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, constants.ContextFileName)}
}

// Path returns the location of the context file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the context file.
// A corrupted file is logged at warn level and treated as empty so a bad
// write never blocks the next run; the next Update overwrites it.
func (s *FileStore) Load(ctx context.Context) (domain.RunContext, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path) //#nosec G304 -- path is constructed from the project directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.RunContext{}, nil
		}
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", s.path).Msg("could not read run context, starting empty")
		return domain.RunContext{}, nil
	}

	rc := domain.RunContext{}
	if err := json.Unmarshal(data, &rc); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", s.path).Msg("run context is corrupted, starting empty")
		return domain.RunContext{}, nil
	}
	if rc == nil {
		rc = domain.RunContext{}
	}
	return rc, nil
}

// Update records a run in the context file.
func (s *FileStore) Update(ctx context.Context, group string, runType domain.RunType, identifier, description string) error {
	rc, err := s.Load(ctx)
	if err != nil {
		return err
	}

	entry, ok := rc[group]
	if !ok || runType == domain.RunTypeReference {
		entry.Description = description
	}
	entry.Set(runType, identifier)
	rc[group] = entry

	data, err := json.MarshalIndent(rc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run context: %w", err)
	}

	if err := atomicWrite(s.path, data, filePerm); err != nil {
		return fmt.Errorf("failed to save %s: %w: %w", s.path, pixelerrors.ErrContextPersistence, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("group", group).
		Str("type", runType.String()).
		Str("identifier", identifier).
		Msg("run context updated")
	return nil
}

// Get returns a copy of group's entry.
func (s *FileStore) Get(ctx context.Context, group string) (domain.ContextEntry, bool, error) {
	rc, err := s.Load(ctx)
	if err != nil {
		return domain.ContextEntry{}, false, err
	}
	entry, ok := rc[group]
	return entry, ok, nil
}

// Reset removes the context file. A missing file is not an error.
func (s *FileStore) Reset(ctx context.Context) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", s.path, err)
	}
	return nil
}

// atomicWrite writes data to a file atomically using write-then-rename.
// This ensures readers never see a half-written context file.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Sync to disk (ensure data is persisted before rename)
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
