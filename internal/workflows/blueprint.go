package workflows

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the current blueprint file schema version.
const SchemaVersion = 1

// Resource kinds with creation workflows.
const (
	KindCollection      = "collection"
	KindCollectionGroup = "collection-group"
	KindIndex           = "index"
)

// Blueprint lists the steps shown while creating one kind of resource.
type Blueprint struct {
	Kind    string          `yaml:"kind"`
	Variant string          `yaml:"variant,omitempty"`
	Title   string          `yaml:"title,omitempty"`
	Steps   []BlueprintStep `yaml:"steps"`
}

// BlueprintStep is a step label, optionally shown only when a condition holds.
type BlueprintStep struct {
	Label string `yaml:"label"`
	// When names a condition (e.g. "new-group") that must be set for the
	// step to appear. Empty means always.
	When string `yaml:"when,omitempty"`
}

// File is the on-disk blueprint document.
type File struct {
	SchemaVersion int         `yaml:"schema_version"`
	Blueprints    []Blueprint `yaml:"blueprints"`
}

//go:embed blueprints.yaml
var defaultBlueprints []byte

// Validate validates the blueprint structure.
func (b *Blueprint) Validate() error {
	if b.Kind == "" {
		return errors.New("blueprint kind is required")
	}
	if len(b.Steps) == 0 {
		return errors.New("blueprint must have at least one step")
	}
	for i, s := range b.Steps {
		if s.Label == "" {
			return fmt.Errorf("step %d: label is required", i)
		}
	}
	return nil
}

// Expand returns the labels whose conditions are satisfied by conds.
func (b *Blueprint) Expand(conds map[string]bool) []string {
	var out []string
	for _, s := range b.Steps {
		if s.When == "" || conds[s.When] {
			out = append(out, s.Label)
		}
	}
	return out
}

// Set is a collection of blueprints addressed by kind and variant.
type Set struct {
	blueprints []Blueprint
}

// Default returns the built-in blueprints.
func Default() *Set {
	set, err := UnmarshalSet(defaultBlueprints)
	if err != nil {
		panic(fmt.Sprintf("embedded blueprints: %v", err))
	}
	return set
}

// Lookup finds the blueprint for kind and variant. An empty variant matches
// a blueprint without one.
func (s *Set) Lookup(kind, variant string) (Blueprint, bool) {
	i := slices.IndexFunc(s.blueprints, func(b Blueprint) bool {
		return b.Kind == kind && b.Variant == variant
	})
	if i < 0 {
		return Blueprint{}, false
	}
	return s.blueprints[i], true
}

// Steps expands the blueprint for kind and variant.
func (s *Set) Steps(kind, variant string, conds map[string]bool) ([]string, error) {
	b, ok := s.Lookup(kind, variant)
	if !ok {
		return nil, fmt.Errorf("no blueprint for %s %q", kind, variant)
	}
	return b.Expand(conds), nil
}

// Merge overlays other on s: blueprints with the same kind and variant are
// replaced, new ones are added.
func (s *Set) Merge(other *Set) {
	for _, b := range other.blueprints {
		i := slices.IndexFunc(s.blueprints, func(x Blueprint) bool {
			return x.Kind == b.Kind && x.Variant == b.Variant
		})
		if i >= 0 {
			s.blueprints[i] = b
			continue
		}
		s.blueprints = append(s.blueprints, b)
	}
}

// All returns every blueprint in the set.
func (s *Set) All() []Blueprint {
	return slices.Clone(s.blueprints)
}

// UnmarshalSet unmarshals and validates a blueprint document.
func UnmarshalSet(data []byte) (*Set, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal blueprints: %w", err)
	}
	if f.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported blueprint schema_version %d", f.SchemaVersion)
	}
	for i := range f.Blueprints {
		if err := f.Blueprints[i].Validate(); err != nil {
			return nil, fmt.Errorf("blueprint %d (%s): %w", i, f.Blueprints[i].Kind, err)
		}
	}
	return &Set{blueprints: f.Blueprints}, nil
}

// MarshalSet marshals a blueprint set to YAML bytes.
func MarshalSet(s *Set) ([]byte, error) {
	data, err := yaml.Marshal(File{SchemaVersion: SchemaVersion, Blueprints: s.blueprints})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal blueprints: %w", err)
	}
	return data, nil
}
