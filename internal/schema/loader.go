package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"evolve-generator/versioned"
)

// LoadFile loads and parses a definition file from the given path. Files
// with a ".toml" extension are parsed as TOML, everything else as YAML.
func LoadFile(path string) (*DefinitionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file %s: %w", path, err)
	}

	if isTOML(path) {
		return ParseTOML(data)
	}

	return Parse(data)
}

// Parse parses YAML data into a DefinitionFile. Unknown keys are rejected.
func Parse(data []byte) (*DefinitionFile, error) {
	var df DefinitionFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&df); err != nil {
		return nil, fmt.Errorf("failed to parse definition YAML: %w", err)
	}

	applyDefaults(&df)

	return &df, nil
}

// ParseTOML parses TOML data into a DefinitionFile. Unknown keys are
// rejected.
func ParseTOML(data []byte) (*DefinitionFile, error) {
	var df DefinitionFile

	md, err := toml.Decode(string(data), &df)
	if err != nil {
		return nil, fmt.Errorf("failed to parse definition TOML: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}

		return nil, fmt.Errorf("failed to parse definition TOML: unknown keys %s", strings.Join(keys, ", "))
	}

	applyDefaults(&df)

	return &df, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(df *DefinitionFile) {
	if df.Version == "" {
		df.Version = CurrentVersion
	}

	if df.Output == "" {
		df.Output = DefaultOutput
	}

	if df.Format == "" {
		df.Format = DefaultFormat
	}

	for i := range df.Types {
		t := &df.Types[i]
		if t.Domain == "" {
			continue
		}

		if t.Rep == "" {
			t.Rep = DefaultRepName(t.Domain)
		}

		if t.Mode == "" {
			t.Mode = versioned.DefaultMode
		}

		if t.Tag == "" {
			t.Tag = versioned.DefaultTag
		}

		if len(t.Chain) == 0 {
			continue
		}

		if t.Steps == nil {
			t.Steps = make(map[string]string, len(t.Chain))
		}

		for k, from := range t.Chain {
			if t.Steps[from] == "" {
				t.Steps[from] = DefaultStepName(from, t.Next(k+1))
			}
		}

		if t.Project == "" {
			t.Project = DefaultProjectName(t.Domain, t.Latest())
		}
	}
}

// Marshal serializes a DefinitionFile to YAML.
func Marshal(df *DefinitionFile) ([]byte, error) {
	return yaml.Marshal(df)
}

// MarshalTOML serializes a DefinitionFile to TOML.
func MarshalTOML(df *DefinitionFile) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(df); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteFile writes a DefinitionFile to the given path, as TOML when the
// path ends in ".toml" and as YAML otherwise.
func WriteFile(df *DefinitionFile, path string) error {
	marshal := Marshal
	if isTOML(path) {
		marshal = MarshalTOML
	}

	data, err := marshal(df)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write definition file %s: %w", path, err)
	}

	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
