// Package gen renders the envelope code of a resolved plan.
//
// Generation uses text/template + go/format. For every definition the
// output holds:
//   - a sealed interface with one variant struct per version
//   - constructors wrapping a version shape into its variant
//   - Marshal and Unmarshal functions over the configured wire format
//   - one composed migration per version, running the steps in order and
//     stopping at the first failure
//   - the projection of the domain type onto the latest variant
//   - MarshalJSON and UnmarshalJSON on the domain type when transparent
package gen
