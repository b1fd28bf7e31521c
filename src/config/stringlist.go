package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StringList is a list of strings that also accepts a single scalar:
//
//	minified_prepend_url: https://cdn.example.com/
//	minified_prepend_url:
//	  - https://cdn1.example.com/
//	  - https://cdn2.example.com/
type StringList []string

// UnmarshalYAML implements the scalar-or-sequence form.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return fmt.Errorf("expected list of strings: %w", err)
		}
		*l = items
		return nil
	}
	return fmt.Errorf("expected string or list, got YAML kind %d", value.Kind)
}
