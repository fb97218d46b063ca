package classmap

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// classList accepts either a single class name, a list of names, or null.
type classList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *classList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*c = nil
			return nil
		}
		*c = classList{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return fmt.Errorf("line %d: expected a list of class names: %w", value.Line, err)
		}
		*c = list
		return nil
	default:
		return fmt.Errorf("line %d: expected class name or list of class names", value.Line)
	}
}

type mapperFile struct {
	Mappings map[string]classList `yaml:"mappings"`
	Healthy  []string             `yaml:"healthy"`
	Positive []string             `yaml:"positive"`
}

// LoadFile reads and parses a class mapper YAML file.
func LoadFile(path string) (*Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read class mapper %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("class mapper %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a class mapper document. Two shapes are accepted: the
// structured form with mappings/healthy/positive sections, and a flat
// token-to-classes map.
func Parse(data []byte) (*Dict, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse mapper YAML: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, errors.New("mapper document is empty")
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: mapper document must be a mapping", doc.Line)
	}

	if hasKey(doc, "mappings") {
		var mf mapperFile
		if err := doc.Decode(&mf); err != nil {
			return nil, fmt.Errorf("decode mapper: %w", err)
		}
		return NewDict(flatten(mf.Mappings), mf.Healthy, mf.Positive), nil
	}

	var flat map[string]classList
	if err := doc.Decode(&flat); err != nil {
		return nil, fmt.Errorf("decode flat mapper: %w", err)
	}
	return NewDict(flatten(flat), nil, nil), nil
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

func flatten(in map[string]classList) map[string][]string {
	out := make(map[string][]string, len(in))
	for token, classes := range in {
		out[token] = []string(classes)
	}
	return out
}
