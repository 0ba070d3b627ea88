// File: gen/schema.go
// Package gen implements option schema parsing and fingerprinting.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package gen

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// Schema is the root of an option schema document.
type Schema struct {
	Package string  `yaml:"package"`
	Groups  []Group `yaml:"groups"`

	// Fingerprint is the xxhash of the raw schema bytes, filled by ParseSchema.
	Fingerprint uint64 `yaml:"-"`
}

// Group declares one named set of options, rendered as one source file.
type Group struct {
	Name    string       `yaml:"name"`
	Options []OptionSpec `yaml:"options"`
}

// OptionSpec declares a single typed option.
type OptionSpec struct {
	Name    string       `yaml:"name"`
	Kind    string       `yaml:"kind"` // string | list | set
	Default DefaultValue `yaml:"default"`
	Doc     string       `yaml:"doc"`
}

// DefaultValue accepts either a YAML scalar (string kinds) or a YAML
// sequence (list and set kinds).
type DefaultValue struct {
	Str   string
	Items []string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *DefaultValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&d.Str)
	case yaml.SequenceNode:
		return node.Decode(&d.Items)
	default:
		return fmt.Errorf("gen: default must be a scalar or a sequence, got %v", node.Kind)
	}
}

// ParseSchema decodes and validates a YAML schema document.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("gen: decode schema: %w", err)
	}
	if s.Package == "" {
		return nil, fmt.Errorf("gen: schema missing package name")
	}
	if len(s.Groups) == 0 {
		return nil, fmt.Errorf("gen: schema declares no option groups")
	}
	seen := make(map[string]struct{})
	for _, g := range s.Groups {
		if g.Name == "" {
			return nil, fmt.Errorf("gen: group with empty name")
		}
		for _, o := range g.Options {
			if o.Name == "" {
				return nil, fmt.Errorf("gen: group %q: option with empty name", g.Name)
			}
			switch o.Kind {
			case "string", "list", "set":
			default:
				return nil, fmt.Errorf("gen: group %q: option %q has unknown kind %q", g.Name, o.Name, o.Kind)
			}
			full := g.Name + "." + o.Name
			if _, dup := seen[full]; dup {
				return nil, fmt.Errorf("gen: duplicate option %q", full)
			}
			seen[full] = struct{}{}
		}
	}
	s.Fingerprint = xxhash.Sum64(data)
	return &s, nil
}
