package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_Aggregation(t *testing.T) {
	var d Diagnostics
	assert.True(t, d.IsValid())
	require.NoError(t, d.Error())

	d.AddWarning(CodeUnusedError, "error type is ignored in infallible mode", "User", "error")
	assert.True(t, d.IsValid())

	d.AddError(CodeEmptyChain, "chain must contain at least one version type", "User", "chain")
	d.AddError(CodeStepNotFound, `function "V1ToV3" not found`, "User", "steps.V1", "V1ToV2")

	assert.True(t, d.HasErrors())
	assert.Equal(t, []string{CodeEmptyChain, CodeStepNotFound}, d.Codes())
	assert.EqualError(t, d.Error(),
		"[User] chain: [empty_chain] chain must contain at least one version type; "+
			`[User] steps.V1: [step_not_found] function "V1ToV3" not found (did you mean V1ToV2?)`)
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics
	a.AddInfo("note", "first", "", "")
	b.AddError(CodeUnknownFormat, "unknown format", "", "format")
	b.AddWarning("w", "second", "", "")

	a.Merge(b)
	assert.Len(t, a.Infos, 1)
	assert.Len(t, a.Warnings, 1)
	assert.Len(t, a.Errors, 1)
	assert.Equal(t, "format: [unknown_format] unknown format", a.Errors[0].String())
}

func TestDiagnosticSeverity_String(t *testing.T) {
	assert.Equal(t, "info", DiagnosticInfo.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(42).String())
}
