// Package diagnostic provides structured errors and warnings for version
// chain definitions.
//
// Key capabilities:
//   - Structural problems of a definition file (empty chain, bad mode)
//   - Missing types and step functions with "did you mean" suggestions
//   - Signature mismatches between adjacent steps
//   - Aggregation of every error into a single error value
package diagnostic
