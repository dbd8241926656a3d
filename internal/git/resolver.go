package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/pixel/internal/constants"
	"github.com/mrz1836/pixel/internal/domain"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
)

// ResolverConfig holds the remotes and defaults used to resolve branches.
type ResolverConfig struct {
	// DefaultBranch is the branch tested when nothing else is requested.
	DefaultBranch string

	// CoreRemote is the URL of the wiki core repository.
	CoreRemote string

	// ReleasePattern selects release branches on CoreRemote.
	ReleasePattern string

	// CodexRemote is the URL of the design-system repository. Empty disables
	// pinning the design system for latest-release runs.
	CodexRemote string

	// CodexRepo is the repo name used in the repo:branch override for Codex.
	CodexRepo string
}

// Resolver determines the branch identifier for a run.
type Resolver struct {
	refs RefSource
	cfg  ResolverConfig
}

// NewResolver creates a Resolver backed by refs.
func NewResolver(refs RefSource, cfg ResolverConfig) *Resolver {
	if cfg.DefaultBranch == "" {
		cfg.DefaultBranch = constants.MainBranch
	}
	return &Resolver{refs: refs, cfg: cfg}
}

// Resolve returns the identifier recorded for this run.
//
// latest-release is rewritten in place to origin/<newest release branch>, and
// the newest design-system tag is appended to opts.RepoBranches. An explicit
// non-default branch is returned verbatim. Otherwise the first change ID wins,
// falling back to the default branch.
func (r *Resolver) Resolve(ctx context.Context, opts *domain.CommandOptions) (string, error) {
	logger := zerolog.Ctx(ctx).With().Str("component", "resolver").Logger()

	switch {
	case opts.Branch == constants.LatestReleaseBranch:
		branch, err := r.latestRelease(ctx)
		if err != nil {
			return "", err
		}
		opts.Branch = branch
		logger.Info().Str("branch", branch).Msg("using latest release branch")

		if pin, ok := r.latestCodex(ctx, logger); ok {
			opts.RepoBranches = append(opts.RepoBranches, pin)
			logger.Info().Str("repo_branch", pin).Msg("pinning design system to latest release")
		}
		return opts.Branch, nil

	case opts.Branch != "" && opts.Branch != r.cfg.DefaultBranch:
		return opts.Branch, nil

	case len(opts.ChangeIDs) > 0:
		return opts.ChangeIDs[0], nil

	default:
		return r.cfg.DefaultBranch, nil
	}
}

func (r *Resolver) latestRelease(ctx context.Context) (string, error) {
	refs, err := r.refs.ListRefs(ctx, r.cfg.CoreRemote, RefHeads, r.cfg.ReleasePattern)
	if err != nil {
		return "", err
	}
	if len(refs) == 0 {
		return "", fmt.Errorf("release branches of %s: %w", r.cfg.CoreRemote, pixelerrors.ErrNoRefsFound)
	}
	return "origin/" + ShortName(refs[0]), nil
}

// latestCodex looks up the newest design-system tag. Failures are logged and
// skipped; the run then uses whatever the setup script checks out.
func (r *Resolver) latestCodex(ctx context.Context, logger zerolog.Logger) (string, bool) {
	if r.cfg.CodexRemote == "" || r.cfg.CodexRepo == "" {
		return "", false
	}
	tags, err := r.refs.ListRefs(ctx, r.cfg.CodexRemote, RefTags)
	if err != nil {
		logger.Warn().Err(err).Msg("could not list design system tags")
		return "", false
	}
	if len(tags) == 0 {
		logger.Warn().Str("remote", r.cfg.CodexRemote).Msg("design system has no tags")
		return "", false
	}
	return r.cfg.CodexRepo + ":" + ShortName(tags[0]), true
}

// Description summarizes the changes and branch overrides in a run, for the
// run context and the report banner.
func Description(opts domain.CommandOptions) string {
	var b strings.Builder
	if len(opts.ChangeIDs) > 0 {
		b.WriteString(" (Includes ")
		b.WriteString(strings.Join(opts.ChangeIDs, ", "))
		b.WriteString(")")
	}
	if len(opts.RepoBranches) > 0 {
		b.WriteString(" (with custom branches: ")
		b.WriteString(strings.Join(opts.RepoBranches, ","))
		b.WriteString(")")
	}
	return b.String()
}

// RepoBranch is a parsed --repo-branch override.
type RepoBranch struct {
	Repo   string
	Branch string
}

// String renders the override in repo:branch form.
func (rb RepoBranch) String() string {
	return rb.Repo + ":" + rb.Branch
}

// ParseRepoBranch validates a repo:branch override.
func ParseRepoBranch(s string) (RepoBranch, error) {
	repo, branch, ok := strings.Cut(s, ":")
	repo = strings.TrimSpace(repo)
	branch = strings.TrimSpace(branch)
	if !ok || repo == "" || branch == "" {
		return RepoBranch{}, fmt.Errorf("%q: %w", s, pixelerrors.ErrInvalidRepoBranch)
	}
	return RepoBranch{Repo: repo, Branch: branch}, nil
}
