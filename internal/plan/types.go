package plan

import (
	"evolve-generator/internal/analyze"
	"evolve-generator/internal/diagnostic"
	"evolve-generator/versioned"
)

// ResolvedPlan is the final output of the resolution pipeline. It contains
// everything needed for code generation.
type ResolvedPlan struct {
	// Package is the package the definitions live in and code is written to.
	Package *analyze.PackageInfo
	// Output is the generated file name.
	Output string
	// Format names the wire format of the generated code.
	Format string
	// Definitions lists the resolved versioned types in file order.
	Definitions []Definition
	// Diagnostics contains all warnings and errors from resolution.
	Diagnostics diagnostic.Diagnostics
}

// Definition is one fully resolved versioned type.
type Definition struct {
	// Domain is the domain type name.
	Domain string
	// Rep is the generated envelope name.
	Rep string
	// Tag is the wire key of the version discriminant.
	Tag string
	// Mode is the failure mode.
	Mode versioned.Mode
	// ErrorType is the Go spelling of the declared error type, empty in
	// infallible mode.
	ErrorType string
	// Transparent enables MarshalJSON and UnmarshalJSON on the domain type.
	Transparent bool
	// Versions lists the chain, oldest first.
	Versions []Version
	// Project converts the domain type into the latest version.
	Project Projection
}

// Fallible reports whether the definition is in fallible mode.
func (d *Definition) Fallible() bool {
	return d.Mode == versioned.ModeFallible
}

// Current returns the latest version number.
func (d *Definition) Current() int {
	return len(d.Versions)
}

// Latest returns the latest version.
func (d *Definition) Latest() *Version {
	return &d.Versions[len(d.Versions)-1]
}

// HasFallibleSteps reports whether any step may fail.
func (d *Definition) HasFallibleSteps() bool {
	for _, v := range d.Versions {
		if v.Step.Fallible {
			return true
		}
	}

	return false
}

// Version is one entry of the chain.
type Version struct {
	// Index is the 1-based position.
	Index int
	// Shape is the shape type name.
	Shape string
	// Step leaves this version towards the next one.
	Step Step
}

// Step is a resolved step function.
type Step struct {
	Func     string
	From, To string
	Fallible bool
}

// Projection is the resolved projection function.
type Projection struct {
	Func string
	// Pointer is set when the function takes *Domain.
	Pointer bool
}
