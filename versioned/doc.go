// Package versioned resolves version chains.
//
// A chain is the ordered list of historical shapes V1..Vn of a record
// together with one migration step per adjacent pair and a final step from
// Vn into the domain type. Define checks the chain once and precomputes,
// for every starting version i, the composed migration Vi -> ... -> Vn -> D.
//
// Two modes exist:
//   - infallible: every step is a func(A) B and migration cannot fail
//   - fallible: steps may be func(A) (B, E); the first failing step stops
//     the chain and is reported as a *MigrationError
//
// The projection D -> Vn is always total: the current state must be
// representable in the current shape.
package versioned
