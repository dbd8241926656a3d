// Package group holds the registry of test groups pixel knows how to run.
//
// Groups come in two tables: the standard visual-regression groups and the
// accessibility groups. The built-in definitions are embedded from
// groups.yaml; a project may add more from its own YAML file.
package group

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/pixel/internal/constants"
	"github.com/mrz1836/pixel/internal/domain"
	pixelerrors "github.com/mrz1836/pixel/internal/errors"
)

//go:embed groups.yaml
var builtinGroups []byte

// document is the on-disk layout of a registry file.
type document struct {
	Groups map[string]domain.GroupDefinition `yaml:"groups"`
	A11y   map[string]domain.GroupDefinition `yaml:"a11y"`
}

// UnknownGroupError is returned when a group name is not registered.
type UnknownGroupError struct {
	Name  string
	A11y  bool
	Known []string
}

// Error implements the error interface.
func (e *UnknownGroupError) Error() string {
	kind := "group"
	if e.A11y {
		kind = "a11y group"
	}
	return fmt.Sprintf("unknown %s %q (available: %s)", kind, e.Name, strings.Join(e.Known, ", "))
}

// Unwrap returns ErrUnknownGroup.
func (e *UnknownGroupError) Unwrap() error {
	return pixelerrors.ErrUnknownGroup
}

// Registry maps group keys to their definitions.
// It is safe for concurrent reads once built.
type Registry struct {
	standard map[string]domain.GroupDefinition
	a11y     map[string]domain.GroupDefinition
}

// Default returns the registry of built-in groups.
func Default() (*Registry, error) {
	return Parse(builtinGroups)
}

// Parse builds a registry from a YAML document.
func Parse(data []byte) (*Registry, error) {
	r := &Registry{
		standard: make(map[string]domain.GroupDefinition),
		a11y:     make(map[string]domain.GroupDefinition),
	}
	if err := r.merge(data); err != nil {
		return nil, err
	}
	return r, nil
}

// ExtendFile adds the groups declared in the YAML file at path.
// Keys that are already registered are rejected.
func (r *Registry) ExtendFile(path string) error {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from trusted configuration
	if err != nil {
		return fmt.Errorf("failed to read group registry %s: %w", path, err)
	}
	if err := r.merge(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (r *Registry) merge(data []byte) error {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse group registry: %w", err)
	}

	// Validate everything first so a bad file leaves the registry unchanged.
	if err := validateTable(doc.Groups, r.standard, false); err != nil {
		return err
	}
	if err := validateTable(doc.A11y, r.a11y, true); err != nil {
		return err
	}

	addTable(r.standard, doc.Groups, false)
	addTable(r.a11y, doc.A11y, true)
	return nil
}

func validateTable(incoming, existing map[string]domain.GroupDefinition, a11y bool) error {
	for key, def := range incoming {
		if key == "" {
			return fmt.Errorf("group key is empty: %w", pixelerrors.ErrInvalidScenarioConfig)
		}
		if _, ok := existing[key]; ok {
			return fmt.Errorf("%s (a11y=%t): %w", key, a11y, pixelerrors.ErrDuplicateGroup)
		}
		if def.Priority < 1 {
			return fmt.Errorf("group %s: priority must be at least 1: %w", key, pixelerrors.ErrValueOutOfRange)
		}
		if err := def.Config.Validate(); err != nil {
			return fmt.Errorf("group %s: %w", key, err)
		}
	}
	return nil
}

func addTable(dst, src map[string]domain.GroupDefinition, a11y bool) {
	for key, def := range src {
		def.Key = key
		def.A11y = a11y
		dst[key] = def
	}
}

// Resolve returns the definition for name from the a11y or standard table.
func (r *Registry) Resolve(name string, a11y bool) (domain.GroupDefinition, error) {
	table := r.table(a11y)
	def, ok := table[name]
	if !ok {
		return domain.GroupDefinition{}, &UnknownGroupError{Name: name, A11y: a11y, Known: r.Names(a11y)}
	}
	return def, nil
}

// Names returns the sorted keys of the a11y or standard table.
func (r *Registry) Names(a11y bool) []string {
	table := r.table(a11y)
	names := make([]string, 0, len(table))
	for key := range table {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// Select returns every group from both tables whose priority is at most
// maxPriority, ordered by priority and then by BatchKey.
func (r *Registry) Select(maxPriority int) []domain.GroupDefinition {
	var out []domain.GroupDefinition
	for _, table := range []map[string]domain.GroupDefinition{r.standard, r.a11y} {
		for _, def := range table {
			if def.Priority <= maxPriority {
				out = append(out, def)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return BatchKey(out[i]) < BatchKey(out[j])
	})
	return out
}

func (r *Registry) table(a11y bool) map[string]domain.GroupDefinition {
	if a11y {
		return r.a11y
	}
	return r.standard
}

// BatchKey identifies a group across both tables: accessibility groups get
// the -a11y suffix so they never collide with their standard counterpart.
func BatchKey(def domain.GroupDefinition) string {
	if def.A11y {
		return def.Key + constants.A11yGroupSuffix
	}
	return def.Key
}
