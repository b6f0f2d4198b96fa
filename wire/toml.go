package wire

import (
	"github.com/BurntSushi/toml"
)

type tomlFormat struct{}

// TOML returns the TOML format. TOML has no null, so nil pointers and nil
// maps in a payload are left out.
func TOML() Format { return tomlFormat{} }

func (tomlFormat) Name() string { return "toml" }

func (tomlFormat) Marshal(v any) ([]byte, error) { return toml.Marshal(v) }

func (tomlFormat) Unmarshal(data []byte, v any) error { return toml.Unmarshal(data, v) }

func (f tomlFormat) EncodeTagged(key, tag string, payload any) ([]byte, error) {
	raw, err := toml.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := toml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	if fields == nil {
		fields = map[string]any{}
	}

	if _, ok := fields[key]; ok {
		return nil, ErrTagConflict
	}

	fields[key] = tag

	return toml.Marshal(fields)
}

func (tomlFormat) DecodeTag(data []byte, key string) (string, error) {
	var fields map[string]any
	if err := toml.Unmarshal(data, &fields); err != nil {
		return "", err
	}

	v, ok := fields[key]
	if !ok {
		return "", ErrMissingTag
	}

	return tagString(v)
}
