package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"hypeos/internal/hypeos"
)

// LoadRules returns the default tables, overlaid with the YAML file at path
// when one is given. Keys absent from the file keep their defaults; a table
// present in the file (list or map) replaces the default table whole.
func LoadRules(path string) (hypeos.Rules, error) {
	rules := hypeos.DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return hypeos.Rules{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(data, rules)
}

// ParseRules overlays YAML onto base and validates the result.
func ParseRules(data []byte, base hypeos.Rules) (hypeos.Rules, error) {
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil {
		return hypeos.Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	// yaml.v3 merges into non-nil maps.
	if _, ok := top["base_points"]; ok {
		base.BasePoints = nil
	}
	if _, ok := top["category_multipliers"]; ok {
		base.CategoryMultipliers = nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&base); err != nil && !errors.Is(err, io.EOF) {
		return hypeos.Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	if err := base.Validate(); err != nil {
		return hypeos.Rules{}, err
	}
	return base, nil
}
