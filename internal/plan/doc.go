// Package plan resolves a definition file against the loaded Go package and
// produces the ResolvedPlan consumed by code generation.
//
// Resolution pipeline:
//  1. Validate the definition file structure
//  2. Look up every version shape, the domain type and the error type
//  3. Check each step function: it takes version i and returns version
//     i+1 (the domain type for the latest version), optionally with an
//     error in fallible mode
//  4. Check the projection from the domain type (or a pointer to it) into
//     the latest version
//  5. Report missing names with "did you mean" suggestions
package plan
