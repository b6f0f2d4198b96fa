package schema

import (
	"evolve-generator/internal/common"
	"evolve-generator/versioned"
)

// CurrentVersion is the only supported definition schema version.
const CurrentVersion = "1"

// Defaults for optional file level fields.
const (
	DefaultOutput = "versions_gen.go"
	DefaultFormat = "json"
)

// ErrorBuiltin is the error attribute selecting the predeclared error type.
const ErrorBuiltin = "error"

// DefinitionFile represents the root of a definition file.
type DefinitionFile struct {
	// Version of the definition schema (for future compatibility).
	Version string `yaml:"version,omitempty" toml:"version,omitempty"`

	// Package is the Go package pattern holding the version shapes, step
	// functions and domain types. Generated code is written into it.
	Package string `yaml:"package" toml:"package"`

	// Output is the generated file name inside the package directory.
	Output string `yaml:"output,omitempty" toml:"output,omitempty"`

	// Format names the wire format used by the generated code.
	Format string `yaml:"format,omitempty" toml:"format,omitempty"`

	// Types lists the versioned domain types.
	Types []TypeDef `yaml:"types" toml:"types"`
}

// TypeDef defines one versioned domain type.
type TypeDef struct {
	// Domain is the name of the domain type every version migrates into.
	Domain string `yaml:"domain" toml:"domain"`

	// Rep names the generated envelope. Defaults to <Domain>Versions.
	Rep string `yaml:"rep,omitempty" toml:"rep,omitempty"`

	// Mode is "infallible" or "fallible". Defaults to fallible.
	Mode string `yaml:"mode,omitempty" toml:"mode,omitempty"`

	// Error is the error type of fallible steps: "error", or a type of the
	// package, optionally prefixed with "*". Required in fallible mode.
	Error string `yaml:"error,omitempty" toml:"error,omitempty"`

	// Tag is the wire key of the version discriminant.
	Tag string `yaml:"tag,omitempty" toml:"tag,omitempty"`

	// Transparent generates MarshalJSON and UnmarshalJSON on the domain type.
	Transparent bool `yaml:"transparent,omitempty" toml:"transparent,omitempty"`

	// Chain lists the version shapes, oldest first.
	Chain []string `yaml:"chain" toml:"chain"`

	// Steps maps every chain entry to the function leaving it.
	Steps map[string]string `yaml:"steps,omitempty" toml:"steps,omitempty"`

	// Project names the function converting the domain type into the
	// latest version.
	Project string `yaml:"project,omitempty" toml:"project,omitempty"`
}

// Fallible reports whether the type is declared in fallible mode.
func (t *TypeDef) Fallible() bool {
	return t.Mode == versioned.KeywordFallible
}

// Latest returns the name of the latest version shape.
func (t *TypeDef) Latest() string {
	last, _ := common.Last(t.Chain)

	return last
}

// Next returns the type produced by the step leaving version i (1-based):
// the following chain entry, or the domain type for the latest version.
func (t *TypeDef) Next(i int) string {
	if i >= len(t.Chain) {
		return t.Domain
	}

	return t.Chain[i]
}

// StepName returns the step function leaving version i (1-based).
func (t *TypeDef) StepName(i int) string {
	from := t.Chain[i-1]
	if name, ok := t.Steps[from]; ok && name != "" {
		return name
	}

	return DefaultStepName(from, t.Next(i))
}

// DefaultStepName returns the conventional name of the step from -> to.
func DefaultStepName(from, to string) string {
	return from + "To" + to
}

// DefaultProjectName returns the conventional projection name.
func DefaultProjectName(domain, latest string) string {
	return domain + "To" + latest
}

// DefaultRepName returns the conventional envelope name.
func DefaultRepName(domain string) string {
	return domain + versioned.RepSuffix
}
