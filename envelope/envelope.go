package envelope

import "fmt"

// Envelope is one version shape tagged with its version. The zero value
// holds no version.
type Envelope struct {
	version int
	current int
	payload any
}

// Version returns the 1-based version of the payload.
func (e Envelope) Version() int { return e.version }

// Current returns the latest version of the chain the envelope belongs to.
func (e Envelope) Current() int { return e.current }

// IsCurrent reports whether the payload has the latest shape.
func (e Envelope) IsCurrent() bool { return e.version != 0 && e.version == e.current }

// Payload returns the version shape value.
func (e Envelope) Payload() any { return e.payload }

func (e Envelope) String() string {
	return fmt.Sprintf("v%d/%d %T", e.version, e.current, e.payload)
}
