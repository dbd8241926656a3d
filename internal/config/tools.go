// This file implements the prerequisite check behind `pixel doctor`.
package config

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	version "github.com/hashicorp/go-version"
	"golang.org/x/sync/errgroup"
)

// Pre-compiled regexes for version parsing.
//
//nolint:gochecknoglobals // Package-level compiled regexes
var (
	dockerVersionRe  = regexp.MustCompile(`Docker version (\d+\.\d+(?:\.\d+)?)`)
	composeVersionRe = regexp.MustCompile(`version v?(\d+\.\d+(?:\.\d+)?)`)
	gitVersionRe     = regexp.MustCompile(`git version (\d+\.\d+(?:\.\d+)?)`)
)

// toolDetectionTimeout bounds the whole detection run.
const toolDetectionTimeout = 10 * time.Second

// ToolStatus represents the installation status of an external tool.
type ToolStatus int

const (
	// ToolStatusMissing indicates the tool is not installed.
	ToolStatusMissing ToolStatus = iota

	// ToolStatusInstalled indicates the tool is installed and meets version requirements.
	ToolStatusInstalled

	// ToolStatusOutdated indicates the tool is installed but below the minimum version.
	ToolStatusOutdated
)

// String returns a human-readable representation of the tool status.
func (s ToolStatus) String() string {
	switch s {
	case ToolStatusInstalled:
		return "installed"
	case ToolStatusMissing:
		return "missing"
	case ToolStatusOutdated:
		return "outdated"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for human-readable JSON output.
func (s ToolStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Tool represents an external tool that pixel depends on.
type Tool struct {
	Name           string     `json:"name"`
	MinVersion     string     `json:"min_version"`
	CurrentVersion string     `json:"current_version"`
	Status         ToolStatus `json:"status"`
	InstallHint    string     `json:"install_hint"`
}

// ToolDetectionResult holds the results of detecting all tools.
type ToolDetectionResult struct {
	Tools      []Tool `json:"tools"`
	HasMissing bool   `json:"has_missing"`
}

// MissingTools returns the tools that are missing or outdated.
func (r *ToolDetectionResult) MissingTools() []Tool {
	var missing []Tool
	for _, tool := range r.Tools {
		if tool.Status != ToolStatusInstalled {
			missing = append(missing, tool)
		}
	}
	return missing
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// LookPath searches for an executable named file in the PATH.
	LookPath(file string) (string, error)

	// Run executes a command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// DefaultCommandExecutor implements CommandExecutor using os/exec.
type DefaultCommandExecutor struct{}

// LookPath searches for an executable in the PATH.
func (e *DefaultCommandExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes a command and returns its output.
func (e *DefaultCommandExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput() //#nosec G204 -- tool names come from config
	return string(output), err
}

// ToolDetector checks the external tools pixel shells out to.
type ToolDetector struct {
	executor CommandExecutor
	docker   string
	git      string
}

// NewToolDetector creates a ToolDetector for the configured docker and git binaries.
// If executor is nil, a DefaultCommandExecutor is used.
func NewToolDetector(cfg *Config, executor CommandExecutor) *ToolDetector {
	if executor == nil {
		executor = &DefaultCommandExecutor{}
	}
	return &ToolDetector{executor: executor, docker: cfg.Docker.Binary, git: cfg.Git.Binary}
}

// toolConfig holds the configuration for detecting a specific tool.
type toolConfig struct {
	name        string
	command     string
	args        []string
	minVersion  string
	installHint string
	pattern     *regexp.Regexp
}

func (d *ToolDetector) toolConfigs() []toolConfig {
	return []toolConfig{
		{
			name:        "docker",
			command:     d.docker,
			args:        []string{"--version"},
			minVersion:  "20.10",
			installHint: "Install Docker from https://docs.docker.com/get-docker/",
			pattern:     dockerVersionRe,
		},
		{
			name:        "docker compose",
			command:     d.docker,
			args:        []string{"compose", "version"},
			minVersion:  "2.0",
			installHint: "Install the Docker Compose v2 plugin",
			pattern:     composeVersionRe,
		},
		{
			name:        "git",
			command:     d.git,
			args:        []string{"--version"},
			minVersion:  "2.20",
			installHint: "Install Git from https://git-scm.com/downloads",
			pattern:     gitVersionRe,
		},
	}
}

// Detect checks all tools concurrently and returns their status in a stable order.
func (d *ToolDetector) Detect(ctx context.Context) (*ToolDetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detectCtx, cancel := context.WithTimeout(ctx, toolDetectionTimeout)
	defer cancel()

	configs := d.toolConfigs()
	result := &ToolDetectionResult{Tools: make([]Tool, len(configs))}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(detectCtx)
	for i, cfg := range configs {
		g.Go(func() error {
			tool := d.detectTool(gCtx, cfg)
			mu.Lock()
			result.Tools[i] = tool
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to detect tools: %w", err)
	}

	result.HasMissing = len(result.MissingTools()) > 0
	return result, nil
}

func (d *ToolDetector) detectTool(ctx context.Context, cfg toolConfig) Tool {
	tool := Tool{
		Name:        cfg.name,
		MinVersion:  cfg.minVersion,
		InstallHint: cfg.installHint,
		Status:      ToolStatusMissing,
	}

	if _, err := d.executor.LookPath(cfg.command); err != nil {
		return tool
	}

	output, err := d.executor.Run(ctx, cfg.command, cfg.args...)
	if err != nil {
		// A missing compose plugin makes "docker compose version" fail.
		return tool
	}

	tool.CurrentVersion = ParseToolVersion(cfg.pattern, output)
	if tool.CurrentVersion == "" {
		tool.CurrentVersion = "unknown"
		tool.Status = ToolStatusInstalled
		return tool
	}

	if CompareVersions(tool.CurrentVersion, cfg.minVersion) < 0 {
		tool.Status = ToolStatusOutdated
	} else {
		tool.Status = ToolStatusInstalled
	}
	return tool
}

// ParseToolVersion extracts the first capture group of pattern from output.
func ParseToolVersion(pattern *regexp.Regexp, output string) string {
	if matches := pattern.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// CompareVersions compares two versions.
// Returns -1 if current < required, 0 if equal, 1 if current > required.
// Unparseable versions compare as equal so they never block a run.
func CompareVersions(current, required string) int {
	cv, err := version.NewVersion(current)
	if err != nil {
		return 0
	}
	rv, err := version.NewVersion(required)
	if err != nil {
		return 0
	}
	return cv.Compare(rv)
}

// FormatMissingToolsError creates a formatted error message for missing tools.
func FormatMissingToolsError(missing []Tool) string {
	if len(missing) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Missing required tools:\n\n")

	for _, tool := range missing {
		status := "missing"
		if tool.Status == ToolStatusOutdated {
			status = fmt.Sprintf("outdated (have %s, need %s)", tool.CurrentVersion, tool.MinVersion)
		}
		fmt.Fprintf(&sb, "  • %s: %s\n", tool.Name, status)
		fmt.Fprintf(&sb, "    Install: %s\n\n", tool.InstallHint)
	}

	return sb.String()
}
