package match

import "go/types"

// SignatureFit grades how well a function fits a wanted step signature.
type SignatureFit int

const (
	// FitNone means neither the parameter nor the result match.
	FitNone SignatureFit = iota
	// FitResult means only the first result matches.
	FitResult
	// FitParam means only the single parameter matches.
	FitParam
	// FitExact means parameter and first result both match.
	FitExact
)

// String returns a human-readable name for the fit.
func (f SignatureFit) String() string {
	switch f {
	case FitNone:
		return "none"
	case FitResult:
		return "result"
	case FitParam:
		return "param"
	case FitExact:
		return "exact"
	default:
		return "unknown"
	}
}

// ScoreSignature grades sig against a step from param to result. A
// parameter of type *param matches too, as projections may take a pointer.
// A nil result only checks the parameter.
func ScoreSignature(sig *types.Signature, param, result types.Type) SignatureFit {
	paramOK := sig.Params().Len() == 1 && matchesParam(sig.Params().At(0).Type(), param)
	resultOK := result != nil && sig.Results().Len() > 0 && types.Identical(sig.Results().At(0).Type(), result)

	switch {
	case paramOK && (resultOK || result == nil):
		return FitExact
	case paramOK:
		return FitParam
	case resultOK:
		return FitResult
	default:
		return FitNone
	}
}

func matchesParam(got, want types.Type) bool {
	if want == nil {
		return false
	}

	if types.Identical(got, want) {
		return true
	}

	ptr, ok := got.(*types.Pointer)

	return ok && types.Identical(ptr.Elem(), want)
}
