// Package schema defines the definition file format for evolve-generator.
//
// A definition file lists the versioned domain types of one Go package:
// the ordered chain of version shapes, the step functions between adjacent
// versions, the projection from the domain type back to the latest version,
// the failure mode and the wire format of the generated envelope code.
//
// Definition files are YAML by default. Files ending in ".toml" are read
// and written as TOML with the same keys.
//
// Example:
//
//	version: "1"
//	package: ./examples/users
//	output: versions_gen.go
//	format: json
//	types:
//	  - domain: User
//	    mode: infallible
//	    transparent: true
//	    chain: [UserV1, UserV2]
//
// Omitted names follow conventions: the envelope is <Domain>Versions, the
// step leaving version X towards Y is XToY, the last step is XTo<Domain>
// and the projection is <Domain>To<Latest>.
package schema
