package workflows

import (
	"io"
	"os"
)

// LoadYAML reads blueprint overrides from a YAML file.
//
// LoadYAML combines file reading with validation - it returns an error
// if the file cannot be read or if the content is invalid.
func LoadYAML(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalSet(data)
}

// LoadYAMLReader unmarshals blueprints from an io.Reader.
func LoadYAMLReader(r io.Reader) (*Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return UnmarshalSet(data)
}

// LoadWithOverrides returns the built-in blueprints with those in path laid
// over them. A missing file is not an error.
func LoadWithOverrides(path string) (*Set, error) {
	set := Default()
	if path == "" {
		return set, nil
	}
	overrides, err := LoadYAML(path)
	if os.IsNotExist(err) {
		return set, nil
	}
	if err != nil {
		return nil, err
	}
	set.Merge(overrides)
	return set, nil
}
