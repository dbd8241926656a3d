// Package git resolves the branches pixel tests against.
// This file lists and orders the refs of remote repositories.
package git

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	version "github.com/hashicorp/go-version"

	"github.com/mrz1836/pixel/internal/constants"
	"github.com/mrz1836/pixel/internal/process"
)

// RefKind selects which namespace of a remote is listed.
type RefKind string

// Ref kinds.
const (
	RefHeads RefKind = "heads"
	RefTags  RefKind = "tags"
)

// RefSource lists refs of a remote repository, highest version first.
type RefSource interface {
	ListRefs(ctx context.Context, remote string, kind RefKind, patterns ...string) ([]string, error)
}

// RemoteSource implements RefSource with git ls-remote.
type RemoteSource struct {
	runner  process.Runner
	binary  string
	timeout time.Duration
	retry   RetryConfig
}

// RemoteOption configures a RemoteSource.
type RemoteOption func(*RemoteSource)

// WithRetry sets the retry policy for failed listings.
func WithRetry(cfg RetryConfig) RemoteOption {
	return func(s *RemoteSource) {
		s.retry = cfg
	}
}

// NewRemoteSource creates a RemoteSource. A zero timeout uses the default.
// Each attempt gets its own timeout.
func NewRemoteSource(runner process.Runner, binary string, timeout time.Duration, opts ...RemoteOption) *RemoteSource {
	if binary == "" {
		binary = "git"
	}
	if timeout <= 0 {
		timeout = constants.DefaultRemoteTimeout
	}
	s := &RemoteSource{runner: runner, binary: binary, timeout: timeout, retry: DefaultRetryConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListRefs runs git ls-remote and returns full ref names ordered by version,
// highest first. Peeled tag entries (^{}) are folded into their tag.
// Transient failures are retried.
func (s *RemoteSource) ListRefs(ctx context.Context, remote string, kind RefKind, patterns ...string) ([]string, error) {
	args := append([]string{"ls-remote", "--" + string(kind), remote}, patterns...)

	stdout, attempts, err := withRetry(ctx, s.retry, func(ctx context.Context) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		result, err := s.runner.Run(ctx, process.Command{
			Name:  s.binary,
			Args:  args,
			Quiet: true,
		})
		if err != nil {
			return "", err
		}
		return result.Stdout, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s of %s after %d attempts: %w", kind, remote, attempts, err)
	}

	return SortRefs(ParseLsRemote(stdout)), nil
}

// ParseLsRemote extracts the ref names from git ls-remote output.
func ParseLsRemote(output string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		ref := strings.TrimSuffix(fields[1], "^{}")
		if seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	return refs
}

// SortRefs orders refs by the version in their last path segments, highest
// first. Refs without a parseable version sort after all versioned refs, in
// reverse lexical order.
func SortRefs(refs []string) []string {
	out := append([]string(nil), refs...)
	versions := make(map[string]*version.Version, len(out))
	for _, ref := range out {
		if v, err := version.NewVersion(versionPart(ref)); err == nil {
			versions[ref] = v
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		vi, iok := versions[out[i]]
		vj, jok := versions[out[j]]
		switch {
		case iok && jok:
			if vi.Equal(vj) {
				return out[i] > out[j]
			}
			return vi.GreaterThan(vj)
		case iok != jok:
			return iok
		default:
			return out[i] > out[j]
		}
	})
	return out
}

// ShortName strips the refs/heads/ or refs/tags/ prefix.
func ShortName(ref string) string {
	for _, prefix := range []string{"refs/heads/", "refs/tags/"} {
		if name, ok := strings.CutPrefix(ref, prefix); ok {
			return name
		}
	}
	return ref
}

// versionPart returns the segment of a ref that carries its version,
// e.g. "1.42.0-wmf.5" for refs/heads/wmf/1.42.0-wmf.5.
func versionPart(ref string) string {
	name := ShortName(ref)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
