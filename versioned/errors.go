package versioned

import (
	"errors"
	"fmt"
)

// Definition errors. Define wraps them in a *DefinitionError.
var (
	ErrEmptyChain       = errors.New("chain must contain at least one version type")
	ErrInvalidMode      = errors.New("invalid mode")
	ErrMissingErrorType = errors.New("fallible mode requires 'error' attribute")
	ErrErrorType        = errors.New("step error does not match the declared error type")
	ErrFallibleStep     = errors.New("infallible mode does not accept fallible steps")
	ErrBrokenChain      = errors.New("chain steps are not adjacent")
	ErrBadProjection    = errors.New("projection must convert the domain type into the latest version")
)

// Step parsing errors.
var (
	ErrNotAStep         = errors.New("provided function is not a recognizable migration step")
	ErrStepNotAFunction = errors.New("provided step is not a function")
	ErrDoublePointer    = errors.New("migration step does not support double pointers")
)

// Conversion errors.
var (
	ErrVersionOutOfRange = errors.New("version out of range")
	ErrShapeMismatch     = errors.New("payload does not match the version shape")
)

// DefinitionError reports a versioned type that cannot be defined.
type DefinitionError struct {
	Domain string
	Err    error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("define %s: %v", e.Domain, e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// MigrationError reports the first step of a chain that failed. Step is the
// 1-based position of the source version; the edge into the domain type has
// the position of the latest version.
type MigrationError struct {
	Domain   string
	Step     int
	From, To string
	Err      error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migrate %s: step %d (%s -> %s): %v", e.Domain, e.Step, e.From, e.To, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// StepFailed builds the error returned when the step at position step fails.
// Generated conversions call it so that both definition routes report the
// same error type.
func StepFailed(domain string, step int, from, to string, err error) error {
	return &MigrationError{Domain: domain, Step: step, From: from, To: to, Err: err}
}
