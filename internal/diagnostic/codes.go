package diagnostic

// Codes reported while validating a definition file.
const (
	CodeFileIsNil           = "definition_is_nil"
	CodeUnsupportedVersion  = "unsupported_version"
	CodeMissingPackage      = "missing_package"
	CodeUnknownFormat       = "unknown_format"
	CodeMissingDomain       = "missing_domain"
	CodeDuplicateDomain     = "duplicate_domain"
	CodeDuplicateRep        = "duplicate_rep"
	CodeEmptyChain          = "empty_chain"
	CodeDuplicateShape      = "duplicate_shape"
	CodeInvalidMode         = "invalid_mode"
	CodeMissingError        = "missing_error"
	CodeUnusedError         = "unused_error"
	CodeTransparentFormat   = "transparent_format"
	CodeUnknownStepKey      = "unknown_step_key"
	CodeInvalidIdentifier   = "invalid_identifier"
	CodeTagConflict         = "tag_conflict"
	CodeMissingTypeGraph    = "graph_is_nil"
	CodeTypeNotFound        = "type_not_found"
	CodeNotAStruct          = "not_a_struct"
	CodeStepNotFound        = "step_not_found"
	CodeStepSignature       = "step_signature"
	CodeBrokenChain         = "broken_chain"
	CodeFallibleStep        = "fallible_step"
	CodeErrorType           = "error_type"
	CodeProjectionNotFound  = "projection_not_found"
	CodeProjectionSignature = "projection_signature"
	CodeGeneratedName       = "generated_name_conflict"
)
