package domain

import (
	"fmt"

	pixelerrors "github.com/mrz1836/pixel/internal/errors"
)

// ScenarioPaths mirrors the paths block of a BackstopJS configuration.
// All paths are relative to the project directory.
type ScenarioPaths struct {
	BitmapsReference string `yaml:"bitmaps_reference" json:"bitmaps_reference"`
	BitmapsTest      string `yaml:"bitmaps_test" json:"bitmaps_test"`
	EngineScripts    string `yaml:"engine_scripts" json:"engine_scripts"`
	HTMLReport       string `yaml:"html_report" json:"html_report"`
	CIReport         string `yaml:"ci_report" json:"ci_report"`
}

// ScenarioConfig describes where a group's scenario configuration lives inside
// the regression container and where its artifacts land on the host.
type ScenarioConfig struct {
	ID    string        `yaml:"id" json:"id"`
	File  string        `yaml:"file" json:"file"`
	Paths ScenarioPaths `yaml:"paths" json:"paths"`
}

// Validate checks the fields the executor and annotator depend on.
func (c ScenarioConfig) Validate() error {
	switch {
	case c.ID == "":
		return fmt.Errorf("id is required: %w", pixelerrors.ErrInvalidScenarioConfig)
	case c.File == "":
		return fmt.Errorf("%s: file is required: %w", c.ID, pixelerrors.ErrInvalidScenarioConfig)
	case c.Paths.BitmapsTest == "":
		return fmt.Errorf("%s: paths.bitmaps_test is required: %w", c.ID, pixelerrors.ErrInvalidScenarioConfig)
	case c.Paths.HTMLReport == "":
		return fmt.Errorf("%s: paths.html_report is required: %w", c.ID, pixelerrors.ErrInvalidScenarioConfig)
	}
	return nil
}

// ReportFile is the report page relative to the project directory.
func (c ScenarioConfig) ReportFile() string {
	return c.Paths.HTMLReport + "/index.html"
}

// GroupDefinition is an immutable registry entry.
type GroupDefinition struct {
	Key        string         `yaml:"-" json:"key"`
	Name       string         `yaml:"name" json:"name,omitempty"`
	Priority   int            `yaml:"priority" json:"priority"`
	Config     ScenarioConfig `yaml:"config" json:"config"`
	A11y       bool           `yaml:"a11y" json:"a11y,omitempty"`
	LogResults bool           `yaml:"log_results" json:"log_results,omitempty"`
}

// DisplayName returns Name, falling back to the key.
func (g GroupDefinition) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return g.Key
}
