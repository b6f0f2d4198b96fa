package schema

import (
	"fmt"
	"go/token"
	"maps"
	"slices"
	"strings"

	"evolve-generator/internal/diagnostic"
	"evolve-generator/versioned"
	"evolve-generator/wire"
)

// Validate checks the structure of a definition file. It does not look at
// Go code; resolving names against packages is the job of the planner.
func Validate(df *DefinitionFile) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if df == nil {
		res.AddError(diagnostic.CodeFileIsNil, "definition file is nil", "", "")
		return res
	}

	if df.Version != CurrentVersion {
		res.AddError(diagnostic.CodeUnsupportedVersion,
			fmt.Sprintf("unsupported definition version %q, expected %q", df.Version, CurrentVersion), "", "version")
	}

	if df.Package == "" {
		res.AddError(diagnostic.CodeMissingPackage, "package must be set", "", "package")
	}

	if _, err := wire.ByName(df.Format); err != nil {
		res.AddError(diagnostic.CodeUnknownFormat, err.Error(), "", "format")
	}

	domains := map[string]struct{}{}
	reps := map[string]struct{}{}

	for i := range df.Types {
		t := &df.Types[i]
		if t.Domain == "" {
			res.AddError(diagnostic.CodeMissingDomain, "type definition must name its domain type", "", fmt.Sprintf("types[%d]", i))
			continue
		}

		if _, ok := domains[t.Domain]; ok {
			res.AddError(diagnostic.CodeDuplicateDomain, fmt.Sprintf("duplicate domain type %q", t.Domain), t.Domain, "domain")
		}

		domains[t.Domain] = struct{}{}

		if _, ok := reps[t.Rep]; ok {
			res.AddError(diagnostic.CodeDuplicateRep, fmt.Sprintf("duplicate envelope name %q", t.Rep), t.Domain, "rep")
		}

		reps[t.Rep] = struct{}{}

		validateType(res, df, t)
	}

	for i := range df.Types {
		t := &df.Types[i]
		if _, ok := domains[t.Rep]; ok && t.Rep != "" {
			res.AddError(diagnostic.CodeDuplicateRep, fmt.Sprintf("envelope name %q collides with a domain type", t.Rep), t.Domain, "rep")
		}
	}

	return res
}

func validateType(res *diagnostic.Diagnostics, df *DefinitionFile, t *TypeDef) {
	checkIdentifier(res, t.Domain, t.Domain, "domain")
	checkIdentifier(res, t.Domain, t.Rep, "rep")

	if _, err := versioned.ParseMode(t.Mode); err != nil {
		res.AddError(diagnostic.CodeInvalidMode, err.Error(), t.Domain, "mode")
	}

	switch {
	case t.Fallible() && t.Error == "":
		res.AddError(diagnostic.CodeMissingError, versioned.ErrMissingErrorType.Error(), t.Domain, "error")
	case !t.Fallible() && t.Error != "":
		res.AddWarning(diagnostic.CodeUnusedError,
			fmt.Sprintf("error type %q is ignored in %s mode", t.Error, t.Mode), t.Domain, "error")
	case t.Error != "":
		checkIdentifier(res, t.Domain, strings.TrimPrefix(t.Error, "*"), "error")
	}

	if t.Transparent && df.Format != DefaultFormat {
		res.AddError(diagnostic.CodeTransparentFormat,
			fmt.Sprintf("transparent encoding requires format %q, got %q", DefaultFormat, df.Format), t.Domain, "transparent")
	}

	if t.Tag == "" {
		res.AddError(diagnostic.CodeTagConflict, "version tag must not be empty", t.Domain, "tag")
	}

	if len(t.Chain) == 0 {
		res.AddError(diagnostic.CodeEmptyChain, versioned.ErrEmptyChain.Error(), t.Domain, "chain")
		return
	}

	seen := map[string]int{}
	for i, shape := range t.Chain {
		element := fmt.Sprintf("chain[%d]", i)
		checkIdentifier(res, t.Domain, shape, element)

		if shape == t.Domain {
			res.AddError(diagnostic.CodeDuplicateShape,
				fmt.Sprintf("domain type %q cannot be a version", shape), t.Domain, element)
		}

		if prev, ok := seen[shape]; ok {
			res.AddError(diagnostic.CodeDuplicateShape,
				fmt.Sprintf("%q appears at versions %d and %d", shape, prev, i+1), t.Domain, element)
		}

		seen[shape] = i + 1
	}

	for _, from := range slices.Sorted(maps.Keys(t.Steps)) {
		fn := t.Steps[from]
		if !slices.Contains(t.Chain, from) {
			res.AddError(diagnostic.CodeUnknownStepKey,
				fmt.Sprintf("step key %q is not a chain entry", from), t.Domain, "steps."+from)
			continue
		}

		checkIdentifier(res, t.Domain, fn, "steps."+from)
	}

	checkIdentifier(res, t.Domain, t.Project, "project")
}

func checkIdentifier(res *diagnostic.Diagnostics, definition, name, element string) {
	if name == "" || token.IsIdentifier(name) {
		return
	}

	res.AddError(diagnostic.CodeInvalidIdentifier, fmt.Sprintf("%q is not a Go identifier", name), definition, element)
}
