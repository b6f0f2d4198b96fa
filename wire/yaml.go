package wire

import (
	"gopkg.in/yaml.v3"
)

type yamlFormat struct{}

// YAML returns the YAML format.
func YAML() Format { return yamlFormat{} }

func (yamlFormat) Name() string { return "yaml" }

func (yamlFormat) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }

func (yamlFormat) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// EncodeTagged puts the tag pair first in the payload mapping.
func (yamlFormat) EncodeTagged(key, tag string, payload any) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(payload); err != nil {
		return nil, err
	}

	m := &doc
	if m.Kind == yaml.DocumentNode && len(m.Content) == 1 {
		m = m.Content[0]
	}

	if m.Kind != yaml.MappingNode {
		return nil, ErrNotObject
	}

	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return nil, ErrTagConflict
		}
	}

	pair := []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: tag, Style: yaml.DoubleQuotedStyle},
	}
	m.Content = append(pair, m.Content...)

	return yaml.Marshal(m)
}

func (yamlFormat) DecodeTag(data []byte, key string) (string, error) {
	var fields map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return "", err
	}

	if fields == nil {
		return "", ErrNotObject
	}

	v, ok := fields[key]
	if !ok {
		return "", ErrMissingTag
	}

	return tagString(v)
}
