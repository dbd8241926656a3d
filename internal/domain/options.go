// Package domain holds the data types shared by the pixel orchestration packages.
//
// IMPORTANT: This package may import internal/constants and internal/errors only.
package domain

import (
	"encoding/json"
	"fmt"

	"github.com/mrz1836/pixel/internal/constants"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
)

// RunType distinguishes baseline captures from comparison runs.
type RunType string

const (
	// RunTypeReference captures baseline screenshots.
	RunTypeReference RunType = "reference"
	// RunTypeTest captures current screenshots and diffs them against the reference.
	RunTypeTest RunType = "test"
)

// String implements fmt.Stringer.
func (t RunType) String() string {
	return string(t)
}

// ParseRunType validates a run type string.
func ParseRunType(s string) (RunType, error) {
	switch RunType(s) {
	case RunTypeReference, RunTypeTest:
		return RunType(s), nil
	default:
		return "", fmt.Errorf("%q: %w", s, pixelerrors.ErrInvalidRunType)
	}
}

// CommandOptions is the per-invocation record built from CLI flags.
// It is threaded through branch resolution and execution and serialized as
// JSON for the in-container scripts, which expect the camelCase keys below.
type CommandOptions struct {
	Type         RunType  `json:"type,omitempty"`
	Branch       string   `json:"branch"`
	ChangeIDs    []string `json:"changeId,omitempty"`
	RepoBranches []string `json:"repoBranch,omitempty"`
	Group        string   `json:"group"`
	ResetDB      bool     `json:"resetDb,omitempty"`
	A11y         bool     `json:"a11y,omitempty"`
	LogResults   bool     `json:"logResults,omitempty"`
	Priority     int      `json:"priority,omitempty"`
	Directory    string   `json:"-"`
	Output       string   `json:"-"`
}

// DefaultCommandOptions returns options matching the CLI flag defaults.
func DefaultCommandOptions() CommandOptions {
	return CommandOptions{
		Branch:    constants.MainBranch,
		Group:     constants.DefaultGroup,
		Priority:  constants.DefaultPriority,
		Directory: ".",
	}
}

// WithType returns a copy of the options for the given run type.
// Slices are copied so the resolver can mutate them independently.
func (o CommandOptions) WithType(t RunType) CommandOptions {
	o.Type = t
	o.ChangeIDs = append([]string(nil), o.ChangeIDs...)
	o.RepoBranches = append([]string(nil), o.RepoBranches...)
	return o
}

// JSON serializes the options for the setup script and the regression container.
func (o CommandOptions) JSON() (string, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("failed to encode command options: %w", err)
	}
	return string(data), nil
}

// FeatureFlags toggles optional wiki subsystems for a run. The values are
// handed to child processes through their environment only.
type FeatureFlags struct {
	EnableWikiLambda bool
}

// FlagsForGroup derives the feature flags a group needs.
func FlagsForGroup(group string) FeatureFlags {
	return FeatureFlags{EnableWikiLambda: group == "wikilambda"}
}

// Env renders the flags as KEY=value pairs.
func (f FeatureFlags) Env() []string {
	return []string{fmt.Sprintf("%s=%t", constants.EnvEnableWikiLambda, f.EnableWikiLambda)}
}
