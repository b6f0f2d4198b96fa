// Package envelope encodes versioned records.
//
// An Envelope holds exactly one version shape and its 1-based version. A
// Codec decodes wire bytes into an Envelope (the tag selects the shape),
// converts any Envelope into the domain type through the composed chain of
// package versioned, and always writes the latest version back:
//
//	wire bytes -> Decode -> Envelope(i) -> ToDomain -> D
//	D -> FromDomain -> Envelope(n) -> Encode -> wire bytes
//
// Transparent wraps both directions so callers see only D and bytes.
package envelope
